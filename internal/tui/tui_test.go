package tui

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/client"
	"taskboard/internal/models"
)

type fakeAPI struct {
	mu        sync.Mutex
	tasks     []models.Task
	filters   []models.TaskFilter
	createErr error
	created   []models.CreateTaskRequest
}

func (f *fakeAPI) ListTasks(_ context.Context, filter models.TaskFilter) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	return f.tasks, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Task{ID: int64(len(f.created)), Title: req.Title}, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id int64, _ models.UpdateTaskRequest) (*models.Task, error) {
	return &models.Task{ID: id}, nil
}

func (f *fakeAPI) DeleteTask(context.Context, int64) error {
	return nil
}

func (f *fakeAPI) ListTags(context.Context) ([]string, error) {
	return []string{}, nil
}

func (f *fakeAPI) lastFilter(t *testing.T) models.TaskFilter {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.filters) == 0 {
		t.Fatal("no list request was made")
	}
	return f.filters[len(f.filters)-1]
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func newTestModel(t *testing.T, api *fakeAPI) (Model, *client.FilterStore) {
	t.Helper()
	store := client.NewFilterStore(filepath.Join(t.TempDir(), "filters.yaml"))
	m := New(api, store)
	m.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local) }
	return m, store
}

func TestRestoresSavedFilters(t *testing.T) {
	api := &fakeAPI{}
	store := client.NewFilterStore(filepath.Join(t.TempDir(), "filters.yaml"))
	if err := store.Save(client.Filters{Tags: []string{"work"}}); err != nil {
		t.Fatal(err)
	}

	m := New(api, store)
	if m.boot == nil {
		t.Fatal("expected an initial list request")
	}
	m.boot()

	if got := api.lastFilter(t).Tags; len(got) != 1 || got[0] != "work" {
		t.Errorf("saved tags not applied to first query: %v", got)
	}
}

func TestFilterChangeRequeriesAndPersists(t *testing.T) {
	api := &fakeAPI{}
	m, store := newTestModel(t, api)

	m, cmd := send(m, runes("f"))
	if cmd == nil {
		t.Fatal("filter change must issue a list request")
	}
	cmd()

	if c := api.lastFilter(t).Completed; c == nil || *c {
		t.Errorf("expected pending filter, got %v", c)
	}
	saved, err := store.Load()
	if err != nil || saved.Completed == nil || *saved.Completed {
		t.Errorf("filter not persisted: %+v %v", saved, err)
	}

	m, cmd = send(m, runes("c"))
	cmd()
	if !m.Filters().IsZero() || api.lastFilter(t).Completed != nil {
		t.Errorf("clear must reset to the unconstrained default: %+v", m.Filters())
	}
	if saved, _ := store.Load(); !saved.IsZero() {
		t.Errorf("clear must forget the persisted filters: %+v", saved)
	}
}

func TestTagPromptAppliesFilter(t *testing.T) {
	api := &fakeAPI{}
	m, _ := newTestModel(t, api)

	m, _ = send(m, runes("t"))
	if m.state != statePrompt {
		t.Fatalf("expected prompt state, got %v", m.state)
	}
	m.prompt.SetValue("home, , work")
	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected list request")
	}
	cmd()

	if got := strings.Join(api.lastFilter(t).Tags, ","); got != "home,work" {
		t.Errorf("unexpected tags %q", got)
	}
}

func TestFormValidationBlocksSubmit(t *testing.T) {
	api := &fakeAPI{}
	m, _ := newTestModel(t, api)

	m, _ = send(m, runes("a"))
	m.form.inputs[fieldDueDate].SetValue("2024-05-01")

	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("invalid form must not be submitted")
	}
	if _, ok := m.form.errs["title"]; !ok {
		t.Errorf("expected title error, got %v", m.form.errs)
	}
	if _, ok := m.form.errs["dueDate"]; !ok {
		t.Errorf("expected dueDate error, got %v", m.form.errs)
	}
	if len(api.created) != 0 {
		t.Error("no request expected")
	}
}

func TestFailedSubmitKeepsForm(t *testing.T) {
	api := &fakeAPI{createErr: &client.APIError{StatusCode: http.StatusBadRequest, Messages: []string{"title must be longer than or equal to 3 characters"}}}
	m, _ := newTestModel(t, api)

	m, _ = send(m, runes("a"))
	m.form.inputs[fieldTitle].SetValue("ab")
	m.form.inputs[fieldTags].SetValue("x, y")

	m, cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("valid form must be submitted")
	}
	m, _ = send(m, cmd())

	if m.state != stateForm {
		t.Fatalf("form must stay open after a failure, state %v", m.state)
	}
	if m.form.inputs[fieldTitle].Value() != "ab" || m.form.inputs[fieldTags].Value() != "x, y" {
		t.Error("form values must be preserved")
	}
	if !m.statusErr || !strings.Contains(m.status, "longer than or equal to 3") {
		t.Errorf("server message not surfaced: %q", m.status)
	}

	api.createErr = nil
	m, cmd = send(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, refetch := send(m, cmd())
	if m.state != stateList {
		t.Errorf("successful submit must close the form, state %v", m.state)
	}
	if refetch == nil {
		t.Error("a successful write must re-fetch the list")
	}
}

func TestStaleListResponseIgnored(t *testing.T) {
	api := &fakeAPI{}
	m, _ := newTestModel(t, api)

	first := m.tasks.Start()
	second := m.tasks.Start()

	m, _ = send(m, tasksLoadedMsg{ticket: second, tasks: []models.Task{{ID: 2, Title: "fresh"}}})
	m, _ = send(m, tasksLoadedMsg{ticket: first, tasks: []models.Task{{ID: 1, Title: "stale"}}})

	items := m.list.Items()
	if len(items) != 1 || items[0].(taskItem).task.Title != "fresh" {
		t.Errorf("stale response overwrote the list: %v", items)
	}
}

func TestCopySelectedTask(t *testing.T) {
	api := &fakeAPI{}
	m, _ := newTestModel(t, api)

	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}

	ticket := m.tasks.Start()
	m, _ = send(m, tasksLoadedMsg{ticket: ticket, tasks: []models.Task{{ID: 3, Title: "Buy milk", Tags: []string{"shop"}}}})
	m, _ = send(m, runes("y"))

	if !strings.Contains(copied, "Buy milk") || !strings.Contains(copied, "#shop") {
		t.Errorf("unexpected clipboard text %q", copied)
	}
	if m.statusErr {
		t.Errorf("unexpected error status %q", m.status)
	}
}
