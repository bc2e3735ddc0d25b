package models

import (
	"net/url"
	"slices"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return &d
}

func TestParseTaskFilterDefaults(t *testing.T) {
	f, err := ParseTaskFilter(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.SortField != SortByID || f.SortOrder != SortAsc {
		t.Errorf("expected id/asc defaults, got %s/%s", f.SortField, f.SortOrder)
	}
	if f.Completed != nil || f.DueDateStart != nil || f.DueDateEnd != nil || len(f.Tags) != 0 {
		t.Errorf("expected unconstrained filter, got %+v", f)
	}
}

func TestParseTaskFilterValues(t *testing.T) {
	q := url.Values{
		"completed":    {"true"},
		"dueDateStart": {"2024-01-01"},
		"dueDateEnd":   {"2024-01-10"},
		"tags":         {"work", "home,errands", ""},
		"sortField":    {"title"},
		"sortOrder":    {"desc"},
	}
	f, err := ParseTaskFilter(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Completed == nil || !*f.Completed {
		t.Errorf("completed not parsed: %+v", f.Completed)
	}
	if got := f.DueDateEnd.Format("2006-01-02 15:04:05.000"); got != "2024-01-10 23:59:59.999" {
		t.Errorf("dueDateEnd not stretched to end of day: %s", got)
	}
	if !slices.Equal(f.Tags, []string{"work", "home,errands"}) {
		t.Errorf("tags must be taken verbatim from repeated params: %v", f.Tags)
	}
	if f.SortField != SortByTitle || f.SortOrder != SortDesc {
		t.Errorf("unexpected sort: %s/%s", f.SortField, f.SortOrder)
	}
}

func TestParseTaskFilterRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		values []string
	}{
		{"non-boolean completed", "completed", []string{"yes"}},
		{"bad start date", "dueDateStart", []string{"tomorrow"}},
		{"bad end date", "dueDateEnd", []string{"2024-13-45"}},
		{"unknown sort field", "sortField", []string{"priority"}},
		{"unknown sort order", "sortOrder", []string{"sideways"}},
		{"repeated completed", "completed", []string{"true", "yes"}},
		{"repeated start date", "dueDateStart", []string{"2024-01-01", "2024-01-02"}},
		{"repeated end date", "dueDateEnd", []string{"2024-01-10", "soon"}},
		{"repeated sort field", "sortField", []string{"title", "bogus"}},
		{"repeated sort order", "sortOrder", []string{"asc", "asc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaskFilter(url.Values{tt.key: tt.values})
			if !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			ve := err.(*ValidationError)
			if ve.Fields[0].Field != tt.key {
				t.Errorf("expected field %s, got %s", tt.key, ve.Fields[0].Field)
			}
		})
	}
}

func TestMatchesDueDateEndInclusive(t *testing.T) {
	f := TaskFilter{DueDateEnd: mustDate(t, "2024-01-10")}.Normalized()

	inside := Task{DueDate: mustDate(t, "2024-01-10T23:00:00")}
	outside := Task{DueDate: mustDate(t, "2024-01-11T00:00:01")}
	undated := Task{}

	if !f.Matches(inside) {
		t.Error("task due late on the end date must match")
	}
	if f.Matches(outside) {
		t.Error("task due after the end date must not match")
	}
	if f.Matches(undated) {
		t.Error("task without due date must not match a date range")
	}
}

func TestMatchesTagsOverlap(t *testing.T) {
	x := Task{ID: 1, Tags: []string{"x"}}
	y := Task{ID: 2, Tags: []string{"y", "z"}}
	none := Task{ID: 3, Tags: []string{}}

	one := TaskFilter{Tags: []string{"x"}}
	if !one.Matches(x) || one.Matches(y) || one.Matches(none) {
		t.Error("single tag filter must match only tasks carrying it")
	}

	both := TaskFilter{Tags: []string{"x", "y"}}
	if !both.Matches(x) || !both.Matches(y) || both.Matches(none) {
		t.Error("multi tag filter must match the union")
	}

	if !(TaskFilter{Tags: []string{"X"}}).Matches(Task{Tags: []string{"X"}}) {
		t.Error("tags compare exactly")
	}
	if (TaskFilter{Tags: []string{"x"}}).Matches(Task{Tags: []string{"X"}}) {
		t.Error("tag comparison must be case sensitive")
	}
}

func TestSortTasksTitleDesc(t *testing.T) {
	tasks := []Task{
		{ID: 1, Title: "banana"},
		{ID: 2, Title: "apple"},
		{ID: 3, Title: "cherry"},
	}
	SortTasks(tasks, TaskFilter{SortField: SortByTitle, SortOrder: SortDesc})

	want := []string{"cherry", "banana", "apple"}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Fatalf("position %d: want %s, got %s", i, title, tasks[i].Title)
		}
	}
}

func TestSortTasksDueDateNilFirst(t *testing.T) {
	tasks := []Task{
		{ID: 1, DueDate: mustDate(t, "2024-02-01")},
		{ID: 2},
		{ID: 3, DueDate: mustDate(t, "2024-01-01")},
	}
	SortTasks(tasks, TaskFilter{SortField: SortByDueDate})

	if tasks[0].ID != 2 || tasks[1].ID != 3 || tasks[2].ID != 1 {
		t.Errorf("unexpected order: %d %d %d", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}
}

func TestFilterValuesRoundTrip(t *testing.T) {
	done := false
	f := TaskFilter{
		Completed:    &done,
		DueDateStart: mustDate(t, "2024-03-01"),
		Tags:         []string{"a", "b"},
		SortField:    SortByDueDate,
		SortOrder:    SortDesc,
	}
	got, err := ParseTaskFilter(f.Values())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got.Completed != false || !got.DueDateStart.Equal(*f.DueDateStart) || len(got.Tags) != 2 ||
		got.SortField != SortByDueDate || got.SortOrder != SortDesc {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
