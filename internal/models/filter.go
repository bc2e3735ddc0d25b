package models

import (
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

type SortField string

const (
	SortByID        SortField = "id"
	SortByTitle     SortField = "title"
	SortByDueDate   SortField = "dueDate"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

var SortFields = []SortField{SortByID, SortByTitle, SortByDueDate, SortByCreatedAt, SortByUpdatedAt}

func (f SortField) Valid() bool {
	return slices.Contains(SortFields, f)
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// TaskFilter is a filter plus sort specification for listing tasks.
// Nil and empty fields do not constrain the result.
type TaskFilter struct {
	Completed    *bool
	DueDateStart *time.Time
	DueDateEnd   *time.Time
	Tags         []string
	SortField    SortField
	SortOrder    SortOrder
}

// Normalized fills sort defaults and stretches DueDateEnd to the end of its day.
func (f TaskFilter) Normalized() TaskFilter {
	if f.SortField == "" {
		f.SortField = SortByID
	}
	if f.SortOrder == "" {
		f.SortOrder = SortAsc
	}
	if f.DueDateEnd != nil {
		end := EndOfDay(*f.DueDateEnd)
		f.DueDateEnd = &end
	}
	return f
}

// ParseTaskFilter validates list query parameters. Any malformed value
// rejects the whole request, and so does a repeated scalar parameter.
func ParseTaskFilter(q url.Values) (TaskFilter, error) {
	var f TaskFilter
	verr := &ValidationError{}

	if v := single(q, "completed", verr); v != "" {
		switch v {
		case "true":
			b := true
			f.Completed = &b
		case "false":
			b := false
			f.Completed = &b
		default:
			verr.Add("completed", "must be a boolean value")
		}
	}

	if v := single(q, "dueDateStart", verr); v != "" {
		if t, err := ParseDate(v); err == nil {
			f.DueDateStart = &t
		} else {
			verr.Add("dueDateStart", "must be a valid ISO 8601 date string")
		}
	}

	if v := single(q, "dueDateEnd", verr); v != "" {
		if t, err := ParseDate(v); err == nil {
			f.DueDateEnd = &t
		} else {
			verr.Add("dueDateEnd", "must be a valid ISO 8601 date string")
		}
	}

	// Tags are matched exactly as stored; repeat the parameter for several.
	for _, tag := range q["tags"] {
		if tag != "" {
			f.Tags = append(f.Tags, tag)
		}
	}

	if v := single(q, "sortField", verr); v != "" {
		if sf := SortField(v); sf.Valid() {
			f.SortField = sf
		} else {
			verr.Add("sortField", "must be one of the following values: id, title, dueDate, createdAt, updatedAt")
		}
	}

	if v := single(q, "sortOrder", verr); v != "" {
		if so := SortOrder(v); so.Valid() {
			f.SortOrder = so
		} else {
			verr.Add("sortOrder", "must be one of the following values: asc, desc")
		}
	}

	if err := verr.OrNil(); err != nil {
		return TaskFilter{}, err
	}
	return f.Normalized(), nil
}

// single returns the only value of key, or "" after recording an error when
// the parameter is repeated.
func single(q url.Values, key string, verr *ValidationError) string {
	vs := q[key]
	switch len(vs) {
	case 0:
		return ""
	case 1:
		return vs[0]
	}
	verr.Add(key, "must be a single value")
	return ""
}

// Values encodes f back into query parameters; the inverse of ParseTaskFilter.
func (f TaskFilter) Values() url.Values {
	q := url.Values{}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	if f.DueDateStart != nil {
		q.Set("dueDateStart", f.DueDateStart.Format(time.DateOnly))
	}
	if f.DueDateEnd != nil {
		q.Set("dueDateEnd", f.DueDateEnd.Format(time.DateOnly))
	}
	for _, tag := range f.Tags {
		q.Add("tags", tag)
	}
	if f.SortField != "" {
		q.Set("sortField", string(f.SortField))
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", string(f.SortOrder))
	}
	return q
}

// Matches reports whether t satisfies the filter part of f. f must be normalized.
func (f TaskFilter) Matches(t Task) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.DueDateStart != nil || f.DueDateEnd != nil {
		if t.DueDate == nil {
			return false
		}
		if f.DueDateStart != nil && t.DueDate.Before(*f.DueDateStart) {
			return false
		}
		if f.DueDateEnd != nil && t.DueDate.After(*f.DueDateEnd) {
			return false
		}
	}
	if len(f.Tags) > 0 && !overlaps(t.Tags, f.Tags) {
		return false
	}
	return true
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

// SortTasks orders tasks in place by f's sort specification, breaking
// ties by id. Absent due dates sort before present ones ascending.
func SortTasks(tasks []Task, f TaskFilter) {
	f = f.Normalized()
	desc := f.SortOrder == SortDesc

	sort.SliceStable(tasks, func(i, j int) bool {
		c := compareBy(f.SortField, tasks[i], tasks[j])
		if c == 0 {
			return tasks[i].ID < tasks[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareBy(field SortField, a, b Task) int {
	switch field {
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return -1
		case b.DueDate == nil:
			return 1
		}
		return a.DueDate.Compare(*b.DueDate)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	}
}
