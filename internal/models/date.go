package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate accepts a calendar date, a local date-time or RFC 3339.
// Values without an offset are read in the local zone.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", s)
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's zone.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// StartOfDay returns midnight of t's calendar day in t's zone.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// OptionalDate distinguishes an omitted JSON field (Set=false) from an
// explicit null or empty string (Set=true, Value=nil).
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

func DateOf(t time.Time) OptionalDate {
	return OptionalDate{Set: true, Value: &t}
}

func ClearedDate() OptionalDate {
	return OptionalDate{Set: true}
}

func (d *OptionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	d.Value = nil
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return NewValidationError("dueDate", "must be a date string")
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}

	t, err := ParseDate(s)
	if err != nil {
		return NewValidationError("dueDate", "must be a valid ISO 8601 date")
	}
	d.Value = &t
	return nil
}

func (d OptionalDate) MarshalJSON() ([]byte, error) {
	if d.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.Value.Format(time.RFC3339))
}

func (d OptionalDate) IsZero() bool {
	return !d.Set
}
