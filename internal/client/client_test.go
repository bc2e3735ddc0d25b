package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"taskboard/internal/manager"
	"taskboard/internal/models"
	"taskboard/internal/server"
	"taskboard/internal/storage"
)

func newTestAPI(t *testing.T) *Client {
	t.Helper()
	tm := manager.NewTaskManagerWithStorage(storage.NewMemoryStorage())
	srv := httptest.NewServer(server.NewRouter(tm, server.Options{}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api/")
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	form := TaskForm{Title: "Write report", Description: "quarterly", Tags: "work, , urgent"}
	created, err := c.CreateTask(ctx, form.ToCreate())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if !slices.Equal(created.Tags, []string{"work", "urgent"}) || created.DueDate != nil {
		t.Errorf("unexpected created task: %+v", created)
	}

	done := true
	updated, err := c.UpdateTask(ctx, created.ID, models.UpdateTaskRequest{Completed: &done})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.Completed || updated.Title != "Write report" {
		t.Errorf("unexpected updated task: %+v", updated)
	}

	got, err := c.GetTask(ctx, created.ID)
	if err != nil || !got.Completed {
		t.Fatalf("GetTask: %+v %v", got, err)
	}

	yes := true
	tasks, err := c.ListTasks(ctx, models.TaskFilter{Completed: &yes, Tags: []string{"urgent"}})
	if err != nil || len(tasks) != 1 {
		t.Fatalf("ListTasks: %v %v", tasks, err)
	}

	tags, err := c.ListTags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(tags)
	if !slices.Equal(tags, []string{"urgent", "work"}) {
		t.Errorf("unexpected tags: %v", tags)
	}

	if err := c.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	tasks, err = c.ListTasks(ctx, models.TaskFilter{})
	if err != nil || tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil list, got %#v %v", tasks, err)
	}
}

func TestClientAPIErrors(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()

	err := c.DeleteTask(ctx, 5)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.NotFound() {
		t.Fatalf("expected not-found APIError, got %v", err)
	}
	if err.Error() != `Task with ID "5" not found.` {
		t.Errorf("server message not surfaced: %q", err.Error())
	}

	_, err = c.CreateTask(ctx, models.CreateTaskRequest{Title: "ab"})
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest || len(apiErr.Messages) == 0 {
		t.Fatalf("expected validation APIError, got %v", err)
	}
	if errors.Is(err, ErrTransport) {
		t.Error("an HTTP error response is not a transport failure")
	}
}

func TestClientPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListTags(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
	if err.Error() != "upstream exploded" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ListTasks(context.Background(), models.TaskFilter{})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
