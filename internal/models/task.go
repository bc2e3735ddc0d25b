package models

import (
	"encoding/json"
	"time"
)

// Task is the only persisted entity.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// MarshalJSON keeps tags an array even for records built without them.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	p := plain(t)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return json.Marshal(p)
}

// CreateTaskRequest is the POST /tasks payload. Only Title is required.
type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Completed   *bool        `json:"completed,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	DueDate     OptionalDate `json:"dueDate,omitzero"`
}

// UpdateTaskRequest is the PUT /tasks/{id} payload. Nil pointers and an
// unset Description or DueDate leave the stored value unchanged; a null
// one clears it.
type UpdateTaskRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description OptionalString `json:"description,omitzero"`
	Completed   *bool          `json:"completed,omitempty"`
	Tags        *[]string      `json:"tags,omitempty"`
	DueDate     OptionalDate   `json:"dueDate,omitzero"`
}

// Empty reports whether the request changes nothing.
func (r UpdateTaskRequest) Empty() bool {
	return r.Title == nil && !r.Description.Set && r.Completed == nil &&
		r.Tags == nil && !r.DueDate.Set
}

// NewTask is a validated create request with defaults filled in.
type NewTask struct {
	Title       string
	Description *string
	Completed   bool
	Tags        []string
	DueDate     *time.Time
}

// TaskPatch is a validated update request handed to storage.
type TaskPatch struct {
	Title       *string
	Description OptionalString
	Completed   *bool
	Tags        *[]string
	DueDate     OptionalDate
}

// Apply copies the supplied fields onto t and stamps UpdatedAt. The new
// stamp is always later than the previous one, at millisecond precision.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if floor := t.UpdatedAt.Truncate(time.Millisecond).Add(time.Millisecond); now.Before(floor) {
		now = floor
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description.Set {
		t.Description = nil
		if p.Description.Value != nil {
			d := *p.Description.Value
			t.Description = &d
		}
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	t.UpdatedAt = now
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return c
}
