package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/client"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldTags
	fieldCount
)

var fieldNames = [fieldCount]string{"title", "description", "dueDate", "tags"}

var fieldLabels = [fieldCount]string{"Title", "Description", "Due date (YYYY-MM-DD)", "Tags (comma separated)"}

// taskForm edits one task. editID is zero when creating.
type taskForm struct {
	editID     int64
	inputs     [fieldCount]textinput.Model
	completed  bool
	focus      int
	errs       client.FormErrors
	submitting bool
}

func newTaskForm(values client.TaskForm, editID int64) taskForm {
	f := taskForm{editID: editID, completed: values.Completed}

	raw := [fieldCount]string{values.Title, values.Description, values.DueDate, values.Tags}
	limits := [fieldCount]int{client.MaxFormTitle + 20, client.MaxFormDescription + 20, 32, 256}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = fieldLabels[i]
		in.CharLimit = limits[i]
		in.SetValue(raw[i])
		f.inputs[i] = in
	}
	f.inputs[fieldTitle].Focus()
	return f
}

func (f taskForm) value() client.TaskForm {
	return client.TaskForm{
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
		DueDate:     strings.TrimSpace(f.inputs[fieldDueDate].Value()),
		Tags:        f.inputs[fieldTags].Value(),
		Completed:   f.completed,
	}
}

func (f *taskForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

// update routes navigation keys and forwards the rest to the focused input.
func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			return f, f.setFocus(f.focus + 1)
		case "shift+tab", "up":
			return f, f.setFocus(f.focus - 1)
		case "ctrl+x":
			f.completed = !f.completed
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f taskForm) view() string {
	var b strings.Builder

	heading := "New task"
	if f.editID != 0 {
		heading = "Edit task"
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")

	for i, in := range f.inputs {
		label := fieldLabels[i]
		if i == f.focus {
			label = focusStyle.Render(label)
		}
		b.WriteString(label + "\n" + in.View() + "\n")
		if msg, ok := f.errs[fieldNames[i]]; ok {
			b.WriteString(errorStyle.Render("  "+msg) + "\n")
		}
		b.WriteString("\n")
	}

	check := "[ ]"
	if f.completed {
		check = "[x]"
	}
	b.WriteString(check + " completed\n")
	return b.String()
}
