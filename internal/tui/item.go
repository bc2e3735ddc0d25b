package tui

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/models"
)

// taskItem adapts models.Task to list.DefaultItem.
type taskItem struct {
	task models.Task
}

func (i taskItem) Title() string {
	check := "[ ]"
	if i.task.Completed {
		check = "[x]"
	}
	return fmt.Sprintf("%s #%d %s", check, i.task.ID, i.task.Title)
}

func (i taskItem) Description() string {
	var parts []string
	if i.task.DueDate != nil {
		parts = append(parts, "due "+i.task.DueDate.Local().Format(time.DateOnly))
	}
	if len(i.task.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(i.task.Tags, " #"))
	}
	return strings.Join(parts, "  ")
}

func (i taskItem) FilterValue() string {
	return i.task.Title
}

// clipboardText is what the copy action puts on the clipboard.
func clipboardText(t models.Task) string {
	var b strings.Builder
	b.WriteString(t.Title)
	if t.Description != nil && *t.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(*t.Description)
	}
	if line := (taskItem{task: t}).Description(); line != "" {
		b.WriteString("\n\n")
		b.WriteString(line)
	}
	return b.String()
}
