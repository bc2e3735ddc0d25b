package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/manager"
	"taskboard/internal/models"
)

func listTasksHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := models.ParseTaskFilter(r.URL.Query())
		if err != nil {
			writeFailure(w, r, err)
			return
		}

		tasks, err := tm.ListTasks(r.Context(), filter)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

func getTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(w, r)
		if !ok {
			return
		}

		task, err := tm.GetTask(r.Context(), id)
		if err != nil {
			writeTaskFailure(w, r, id, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func createTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateTaskRequest
		if !decodeBody(w, r, &req) {
			return
		}

		task, err := tm.CreateTask(r.Context(), req)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	}
}

func updateTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(w, r)
		if !ok {
			return
		}

		var req models.UpdateTaskRequest
		if !decodeBody(w, r, &req) {
			return
		}

		task, err := tm.UpdateTask(r.Context(), id, req)
		if err != nil {
			writeTaskFailure(w, r, id, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func deleteTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(w, r)
		if !ok {
			return
		}

		if err := tm.DeleteTask(r.Context(), id); err != nil {
			writeTaskFailure(w, r, id, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func tagsHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := tm.Tags(r.Context())
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tags)
	}
}

func healthHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tm.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// taskID parses the {id} path segment, answering 400 itself when it is not
// a positive integer.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "Validation failed (numeric string is expected)")
		return 0, false
	}
	return id, true
}
