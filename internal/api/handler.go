// Package api implements the HTTP surface of the portfolio backend: auth,
// portfolio, tasks, articles, gallery, notifications, the agent endpoints,
// and the admin/stats views. All responses are JSON.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mavecode/portfolio/internal/agent"
	"github.com/mavecode/portfolio/internal/session"
	"github.com/mavecode/portfolio/internal/storage"
)

const maxRequestBodySize = 16 << 20 // CV and gallery uploads arrive as base64 JSON

// Server bundles the handler dependencies.
type Server struct {
	store    storage.Store
	sessions *session.Store
	agent    *agent.Agent
	version  string

	adminUsername string
	adminPassword string
}

// Deps configures NewHandler.
type Deps struct {
	Store    storage.Store
	Sessions *session.Store
	Agent    *agent.Agent
	Version  string

	AdminUsername string
	AdminPassword string
	CORSOrigins   []string
}

// NewHandler returns the fully routed http.Handler for the service.
func NewHandler(deps Deps) http.Handler {
	s := &Server{
		store:         deps.Store,
		sessions:      deps.Sessions,
		agent:         deps.Agent,
		version:       deps.Version,
		adminUsername: deps.AdminUsername,
		adminPassword: deps.AdminPassword,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Get("/health", s.handleHealth)

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/verify", s.handleVerify)

		r.Get("/portfolio", s.handleGetPortfolio)
		r.Get("/portfolio/{username}", s.handleGetPortfolioByUsername)

		r.Post("/ai/chat", s.handleChat)

		r.Get("/articles", s.handleListArticles)
		r.Get("/articles/{id}", s.handleGetArticle)
		r.Post("/articles/{id}/like", s.handleLikeArticle)
		r.Post("/articles/{id}/comment", s.handleCommentArticle)

		r.Get("/gallery", s.handleListGallery)

		// Everything below requires a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Put("/portfolio", s.handleUpdatePortfolio)

			r.Get("/tasks", s.handleListTasks)
			r.Post("/tasks", s.handleCreateTask)
			r.Put("/tasks/{id}", s.handleUpdateTask)
			r.Delete("/tasks/{id}", s.handleDeleteTask)

			r.Get("/ai/memory", s.handleListMemories)
			r.Post("/ai/memory", s.handleCreateMemory)
			r.Delete("/ai/memory", s.handleClearMemories)
			r.Delete("/ai/memory/{id}", s.handleDeleteMemory)
			r.Get("/ai/suggestions", s.handleSuggestions)

			r.Post("/articles", s.handleCreateArticle)
			r.Put("/articles/{id}", s.handleUpdateArticle)
			r.Delete("/articles/{id}", s.handleDeleteArticle)

			r.Post("/gallery/upload", s.handleUploadPhoto)
			r.Put("/gallery/reorder", s.handleReorderGallery)
			r.Put("/gallery/{id}", s.handleUpdatePhoto)
			r.Delete("/gallery/{id}", s.handleDeletePhoto)

			r.Get("/notifications", s.handleListNotifications)
			r.Post("/notifications", s.handleCreateNotification)
			r.Put("/notifications/{id}/read", s.handleMarkNotificationRead)
			r.Delete("/notifications/{id}", s.handleDeleteNotification)

			r.Get("/stats", s.handleStats)
			r.Get("/admin/users", s.handleAdminUsers)
			r.Get("/admin/activity", s.handleAdminActivity)
		})
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Portfolio API",
		"version": s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		httpError(w, http.StatusServiceUnavailable, "storage_error", "storage unavailable: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// notFoundOr maps storage.ErrNotFound to a 404, everything else to a 500.
func notFoundOr(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "%s not found", what)
		return
	}
	httpError(w, http.StatusInternalServerError, "storage_error", "loading %s: %v", what, err)
}
