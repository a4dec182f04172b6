package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/storage"
)

const defaultMemoryListLimit = 50

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	limit := defaultMemoryListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	memories, err := s.store.ListMemories(limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "listing memories: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, memories)
}

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var m storage.MemoryEntry
	if err := decodeJSON(w, r, &m); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if m.Content == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
		return
	}
	if m.Type == "" {
		m.Type = "note"
	}
	m.ID = uuid.New().String()
	m.CreatedAt = storage.Timestamp(time.Now())

	if err := s.store.SaveMemory(m); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "saving memory: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleClearMemories(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearMemories(); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "clearing memories: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "memories cleared"})
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteMemory(id); err != nil {
		notFoundOr(w, err, "memory")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "memory deleted"})
}
