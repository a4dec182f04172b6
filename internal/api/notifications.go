package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/storage"
)

const defaultNotificationListLimit = 50

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	notifications, err := s.store.ListNotifications(limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "listing notifications: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var n storage.Notification
	if err := decodeJSON(w, r, &n); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if n.Message == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
		return
	}
	if n.Type == "" {
		n.Type = "info"
	}
	n.ID = uuid.New().String()
	n.Read = false
	n.CreatedAt = storage.Timestamp(time.Now())

	if err := s.store.SaveNotification(n); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "saving notification: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.store.MarkNotificationRead(chi.URLParam(r, "id")); err != nil {
		notFoundOr(w, err, "notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification read"})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteNotification(chi.URLParam(r, "id")); err != nil {
		notFoundOr(w, err, "notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}
