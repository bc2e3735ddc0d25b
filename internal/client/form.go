package client

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskboard/internal/models"
)

const (
	MaxFormTitle       = 100
	MaxFormDescription = 500
)

// TaskForm holds raw create/edit input. Tags is the comma-separated text
// the user typed.
type TaskForm struct {
	Title       string
	Description string
	Completed   bool
	DueDate     string
	Tags        string
}

// FormFromTask prefills a form for editing t.
func FormFromTask(t models.Task) TaskForm {
	f := TaskForm{
		Title:     t.Title,
		Completed: t.Completed,
		Tags:      strings.Join(t.Tags, ", "),
	}
	if t.Description != nil {
		f.Description = *t.Description
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.Local().Format(time.DateOnly)
	}
	return f
}

// FormErrors maps a field name (title, description, dueDate) to its message.
type FormErrors map[string]string

func (e FormErrors) OK() bool {
	return len(e) == 0
}

// Validate checks f against the client rules. now decides what "past" means
// for the due date; any time today is allowed.
func (f TaskForm) Validate(now time.Time) FormErrors {
	errs := FormErrors{}

	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		errs["title"] = "Title is required"
	case utf8.RuneCountInString(title) > MaxFormTitle:
		errs["title"] = "Title cannot exceed 100 characters"
	}

	if utf8.RuneCountInString(f.Description) > MaxFormDescription {
		errs["description"] = "Description cannot exceed 500 characters"
	}

	if due := strings.TrimSpace(f.DueDate); due != "" {
		d, err := models.ParseDate(due)
		switch {
		case err != nil:
			errs["dueDate"] = "Due date must be a date (YYYY-MM-DD)"
		case d.Before(models.StartOfDay(now.In(d.Location()))):
			errs["dueDate"] = "Due date cannot be in the past"
		}
	}

	return errs
}

// SplitTags turns "a, b,,c " into [a b c].
func SplitTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ToCreate builds the POST payload. Call Validate first.
func (f TaskForm) ToCreate() models.CreateTaskRequest {
	req := models.CreateTaskRequest{
		Title:     strings.TrimSpace(f.Title),
		Completed: &f.Completed,
		Tags:      SplitTags(f.Tags),
	}
	if f.Description != "" {
		d := f.Description
		req.Description = &d
	}
	if d, err := models.ParseDate(f.DueDate); err == nil {
		req.DueDate = models.DateOf(d)
	}
	return req
}

// ToPatch builds a PUT payload carrying every form field, so an emptied
// description or due date clears the stored one.
func (f TaskForm) ToPatch() models.UpdateTaskRequest {
	title := strings.TrimSpace(f.Title)
	completed := f.Completed
	tags := SplitTags(f.Tags)

	req := models.UpdateTaskRequest{
		Title:       &title,
		Description: models.OptionalDescription(f.Description),
		Completed:   &completed,
		Tags:        &tags,
		DueDate:     models.ClearedDate(),
	}
	if d, err := models.ParseDate(f.DueDate); err == nil {
		req.DueDate = models.DateOf(d)
	}
	return req
}
