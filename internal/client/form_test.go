package client

import (
	"slices"
	"strings"
	"testing"
	"time"

	"taskboard/internal/models"
)

func TestTaskFormValidate(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		form  TaskForm
		field string
	}{
		{"valid", TaskForm{Title: "Buy milk"}, ""},
		{"blank title", TaskForm{Title: "   "}, "title"},
		{"title at limit", TaskForm{Title: strings.Repeat("a", 100)}, ""},
		{"title too long", TaskForm{Title: strings.Repeat("a", 101)}, "title"},
		{"description too long", TaskForm{Title: "ok title", Description: strings.Repeat("d", 501)}, "description"},
		{"due today", TaskForm{Title: "ok title", DueDate: "2024-05-10"}, ""},
		{"due yesterday", TaskForm{Title: "ok title", DueDate: "2024-05-09"}, "dueDate"},
		{"due garbage", TaskForm{Title: "ok title", DueDate: "next week"}, "dueDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate(now)
			if tt.field == "" {
				if !errs.OK() {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			if _, ok := errs[tt.field]; !ok || len(errs) != 1 {
				t.Errorf("expected only %s to fail, got %v", tt.field, errs)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	if got := SplitTags(" work, ,home,, "); !slices.Equal(got, []string{"work", "home"}) {
		t.Errorf("unexpected tags %v", got)
	}
	if got := SplitTags(""); got == nil || len(got) != 0 {
		t.Errorf("empty input must give an empty slice, got %#v", got)
	}
}

func TestTaskFormPayloads(t *testing.T) {
	form := TaskForm{Title: " Report ", Tags: "a,b"}

	create := form.ToCreate()
	if create.Title != "Report" || create.Description != nil || create.DueDate.Set {
		t.Errorf("unexpected create payload: %+v", create)
	}

	patch := form.ToPatch()
	if *patch.Title != "Report" || !slices.Equal(*patch.Tags, []string{"a", "b"}) {
		t.Errorf("unexpected patch payload: %+v", patch)
	}
	if !patch.DueDate.Set || patch.DueDate.Value != nil {
		t.Error("an empty due date on edit must clear the stored one")
	}
	if !patch.Description.Set || patch.Description.Value != nil {
		t.Error("an empty description on edit must clear the stored one")
	}

	form.DueDate = "2030-01-02"
	if patch := form.ToPatch(); patch.DueDate.Value == nil || patch.DueDate.Value.Day() != 2 {
		t.Errorf("due date not carried: %+v", patch.DueDate)
	}
}

func TestFormFromTask(t *testing.T) {
	desc := "details"
	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.Local)
	form := FormFromTask(models.Task{Title: "t", Description: &desc, Tags: []string{"a", "b"}, DueDate: &due})

	if form.Description != "details" || form.Tags != "a, b" || form.DueDate != "2030-01-02" {
		t.Errorf("unexpected form: %+v", form)
	}
}
