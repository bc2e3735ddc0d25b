// Package tui is the terminal front end of the task board.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/client"
	"taskboard/internal/models"
)

const requestTimeout = 10 * time.Second

// API is the part of client.Client the UI needs.
type API interface {
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]string, error)
}

type viewState int

const (
	stateList viewState = iota
	stateForm
	statePrompt
	stateConfirm
)

type promptKind int

const (
	promptTags promptKind = iota
	promptDueStart
	promptDueEnd
)

type (
	tasksLoadedMsg struct {
		ticket int
		tasks  []models.Task
		err    error
	}
	tagsLoadedMsg struct {
		tags []string
		err  error
	}
	mutationDoneMsg struct {
		action string
		err    error
	}
)

type Model struct {
	api   API
	store *client.FilterStore

	filters client.Filters
	tasks   client.RequestState[[]models.Task]
	tags    []string

	state      viewState
	list       list.Model
	form       taskForm
	prompt     textinput.Model
	promptKind promptKind

	status    string
	statusErr bool

	keys   keyMap
	now    func() time.Time
	copy   func(string) error
	boot   tea.Cmd
	width  int
	height int
}

// New builds the model and restores the filters saved by the previous run.
func New(api API, store *client.FilterStore) Model {
	keys := newKeyMap()

	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "tasks"
	l.Styles.Title = titleStyle
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	prompt := textinput.New()
	prompt.CharLimit = 256

	m := Model{
		api:    api,
		store:  store,
		list:   l,
		prompt: prompt,
		keys:   keys,
		now:    time.Now,
		copy:   clipboard.WriteAll,
	}

	if f, err := store.Load(); err != nil {
		m.setError(err)
	} else {
		m.filters = f
	}
	m.boot = m.reload()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.boot, m.fetchTags())
}

func (m Model) Filters() client.Filters {
	return m.filters
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = describeError(err), true
}

func describeError(err error) string {
	if errors.Is(err, client.ErrTransport) {
		return "Network error: could not reach the task server"
	}
	return err.Error()
}

// reload issues a list request for the current filters.
func (m *Model) reload() tea.Cmd {
	tf, err := m.filters.TaskFilter()
	if err != nil {
		m.setError(err)
		return nil
	}
	ticket := m.tasks.Start()
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := api.ListTasks(ctx, tf)
		return tasksLoadedMsg{ticket: ticket, tasks: tasks, err: err}
	}
}

func (m Model) fetchTags() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tags, err := api.ListTags(ctx)
		return tagsLoadedMsg{tags: tags, err: err}
	}
}

func (m Model) mutate(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return mutationDoneMsg{action: action, err: fn(ctx)}
	}
}

// applyFilters persists f and re-queries; every filter change goes through here.
func (m *Model) applyFilters(f client.Filters) tea.Cmd {
	m.filters = f
	if err := m.store.Save(f); err != nil {
		m.setError(err)
	}
	return m.reload()
}

func (m Model) selected() (models.Task, bool) {
	item, ok := m.list.SelectedItem().(taskItem)
	return item.task, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := appStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			if m.tasks.Fail(msg.ticket, msg.err) {
				m.setError(msg.err)
			}
			return m, nil
		}
		if m.tasks.Succeed(msg.ticket, msg.tasks) {
			items := make([]list.Item, len(msg.tasks))
			for i, t := range msg.tasks {
				items[i] = taskItem{task: t}
			}
			cmd := m.list.SetItems(items)
			return m, cmd
		}
		return m, nil

	case tagsLoadedMsg:
		if msg.err == nil {
			m.tags = msg.tags
			slices.Sort(m.tags)
		}
		return m, nil

	case mutationDoneMsg:
		return m.afterMutation(msg)
	}

	switch m.state {
	case stateForm:
		return m.updateForm(msg)
	case statePrompt:
		return m.updatePrompt(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	}
	return m.updateList(msg)
}

func (m Model) afterMutation(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// The form, if open, keeps what the user typed.
		m.form.submitting = false
		m.setError(fmt.Errorf("%s failed: %s", msg.action, describeError(msg.err)))
		return m, nil
	}

	if m.state == stateForm {
		m.state = stateList
	}
	m.setStatus(msg.action + " done")
	return m, tea.Batch(m.reload(), m.fetchTags())
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(k, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(k, m.keys.Refresh):
		return m, tea.Batch(m.reload(), m.fetchTags())

	case key.Matches(k, m.keys.Completed):
		f := m.filters
		switch {
		case f.Completed == nil:
			f.Completed = ptr(false)
		case !*f.Completed:
			f.Completed = ptr(true)
		default:
			f.Completed = nil
		}
		return m, m.applyFilters(f)

	case key.Matches(k, m.keys.Sort):
		f := m.filters
		f.SortField = nextSortField(f.SortField)
		return m, m.applyFilters(f)

	case key.Matches(k, m.keys.Order):
		f := m.filters
		if f.SortOrder == string(models.SortDesc) {
			f.SortOrder = string(models.SortAsc)
		} else {
			f.SortOrder = string(models.SortDesc)
		}
		return m, m.applyFilters(f)

	case key.Matches(k, m.keys.Tags):
		return m, m.openPrompt(promptTags, strings.Join(m.filters.Tags, ", "))

	case key.Matches(k, m.keys.DueStart):
		return m, m.openPrompt(promptDueStart, m.filters.DueDateStart)

	case key.Matches(k, m.keys.DueEnd):
		return m, m.openPrompt(promptDueEnd, m.filters.DueDateEnd)

	case key.Matches(k, m.keys.Clear):
		f, err := m.store.Clear()
		if err != nil {
			m.setError(err)
		} else {
			m.setStatus("filters cleared")
		}
		m.filters = f
		return m, m.reload()

	case key.Matches(k, m.keys.Add):
		m.form = newTaskForm(client.TaskForm{}, 0)
		m.state = stateForm
		return m, textinput.Blink

	case key.Matches(k, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.form = newTaskForm(client.FormFromTask(t), t.ID)
			m.state = stateForm
			return m, textinput.Blink
		}

	case key.Matches(k, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			api, done := m.api, !t.Completed
			return m, m.mutate("update", func(ctx context.Context) error {
				_, err := api.UpdateTask(ctx, t.ID, models.UpdateTaskRequest{Completed: &done})
				return err
			})
		}

	case key.Matches(k, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.state = stateConfirm
		}

	case key.Matches(k, m.keys.Copy):
		if t, ok := m.selected(); ok {
			if err := m.copy(clipboardText(t)); err != nil {
				m.setError(fmt.Errorf("copy: %w", err))
			} else {
				m.setStatus(fmt.Sprintf("copied task #%d", t.ID))
			}
		}

	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) openPrompt(kind promptKind, value string) tea.Cmd {
	m.state = statePrompt
	m.promptKind = kind
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	switch kind {
	case promptTags:
		m.prompt.Placeholder = "work, home"
	default:
		m.prompt.Placeholder = "YYYY-MM-DD (empty for none)"
	}
	return m.prompt.Focus()
}

func (m Model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.state = stateList
			m.prompt.Blur()
			return m, nil
		case "enter":
			f := m.filters
			value := strings.TrimSpace(m.prompt.Value())
			if m.promptKind != promptTags && value != "" {
				if _, err := models.ParseDate(value); err != nil {
					m.setError(fmt.Errorf("%q is not a date", value))
					return m, nil
				}
			}
			switch m.promptKind {
			case promptTags:
				f.Tags = client.SplitTags(value)
			case promptDueStart:
				f.DueDateStart = value
			case promptDueEnd:
				f.DueDateEnd = value
			}
			m.state = stateList
			m.prompt.Blur()
			m.setStatus("")
			return m, m.applyFilters(f)
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.state = stateList
			m.setStatus("")
			return m, nil
		case "enter", "ctrl+s":
			if k.String() == "enter" && m.form.focus != fieldCount-1 {
				return m, m.form.setFocus(m.form.focus + 1)
			}
			return m, m.submitForm()
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// submitForm validates locally and only then sends the request. The form
// stays open until the server accepts it.
func (m *Model) submitForm() tea.Cmd {
	if m.form.submitting {
		return nil
	}
	values := m.form.value()
	m.form.errs = values.Validate(m.now())
	if !m.form.errs.OK() {
		return nil
	}

	m.form.submitting = true
	api, id := m.api, m.form.editID
	if id == 0 {
		req := values.ToCreate()
		return m.mutate("create", func(ctx context.Context) error {
			_, err := api.CreateTask(ctx, req)
			return err
		})
	}
	req := values.ToPatch()
	return m.mutate("save", func(ctx context.Context) error {
		_, err := api.UpdateTask(ctx, id, req)
		return err
	})
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y":
		m.state = stateList
		if t, ok := m.selected(); ok {
			api := m.api
			return m, m.mutate("delete", func(ctx context.Context) error {
				return api.DeleteTask(ctx, t.ID)
			})
		}
	case "n", "esc":
		m.state = stateList
	}
	return m, nil
}

func nextSortField(current string) string {
	fields := models.SortFields
	for i, f := range fields {
		if string(f) == current {
			return string(fields[(i+1)%len(fields)])
		}
	}
	return string(models.SortByTitle)
}

func ptr[T any](v T) *T {
	return &v
}
