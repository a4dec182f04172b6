package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/storage"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	f := storage.TaskFilter{}
	if r.URL.Query().Get("incomplete_only") == "true" {
		f.OnlyIncomplete = true
	}
	tasks, err := s.store.ListTasks(f)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "listing tasks: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t storage.Task
	if err := decodeJSON(w, r, &t); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if t.Title == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "title is required")
		return
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}

	t.ID = uuid.New().String()
	t.UserID = sessionFrom(r).UserID
	t.Completed = false
	t.ReminderSent = false
	t.CreatedAt = storage.Timestamp(time.Now())
	t.UpdatedAt = t.CreatedAt

	if err := s.store.SaveTask(t); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "saving task: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// taskPatch carries only the fields present in the request body. Pointer
// fields distinguish "absent" from zero values.
type taskPatch struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Deadline     *string `json:"deadline"`
	ReminderTime *string `json:"reminder_time"`
	Priority     *string `json:"priority"`
	Completed    *bool   `json:"completed"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.store.GetTask(id)
	if err != nil {
		notFoundOr(w, err, "task")
		return
	}

	var patch taskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Deadline != nil {
		t.Deadline = *patch.Deadline
	}
	if patch.ReminderTime != nil {
		t.ReminderTime = *patch.ReminderTime
		// A rescheduled reminder fires again.
		t.ReminderSent = false
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = storage.Timestamp(time.Now())

	if err := s.store.UpdateTask(t); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "updating task: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteTask(id); err != nil {
		notFoundOr(w, err, "task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}
