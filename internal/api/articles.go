package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/storage"
)

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	publishedOnly := r.URL.Query().Get("published_only") == "true"
	articles, err := s.store.ListArticles(publishedOnly, 0)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "listing articles: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetArticle(chi.URLParam(r, "id"))
	if err != nil {
		notFoundOr(w, err, "article")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var a storage.Article
	if err := decodeJSON(w, r, &a); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if a.Title == "" || a.Content == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "title and content are required")
		return
	}

	a.ID = uuid.New().String()
	a.Likes = 0
	a.Comments = []storage.Comment{}
	a.CreatedAt = storage.Timestamp(time.Now())
	a.UpdatedAt = a.CreatedAt

	if err := s.store.SaveArticle(a); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "saving article: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type articlePatch struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Excerpt    *string `json:"excerpt"`
	CoverImage *string `json:"cover_image"`
	Published  *bool   `json:"published"`
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetArticle(chi.URLParam(r, "id"))
	if err != nil {
		notFoundOr(w, err, "article")
		return
	}

	var patch articlePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		a.Excerpt = *patch.Excerpt
	}
	if patch.CoverImage != nil {
		a.CoverImage = *patch.CoverImage
	}
	if patch.Published != nil {
		a.Published = *patch.Published
	}
	a.UpdatedAt = storage.Timestamp(time.Now())

	if err := s.store.UpdateArticle(a); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "updating article: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteArticle(chi.URLParam(r, "id")); err != nil {
		notFoundOr(w, err, "article")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "article deleted"})
}

func (s *Server) handleLikeArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.LikeArticle(id); err != nil {
		notFoundOr(w, err, "article")
		return
	}
	a, err := s.store.GetArticle(id)
	if err != nil {
		notFoundOr(w, err, "article")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"likes": a.Likes})
}

type commentRequest struct {
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

func (s *Server) handleCommentArticle(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if req.Content == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
		return
	}
	if req.AuthorName == "" {
		req.AuthorName = "Anonymous"
	}

	c := storage.Comment{
		ID:         uuid.New().String(),
		AuthorName: req.AuthorName,
		Content:    req.Content,
		CreatedAt:  storage.Timestamp(time.Now()),
	}
	if err := s.store.AddComment(chi.URLParam(r, "id"), c); err != nil {
		notFoundOr(w, err, "article")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
