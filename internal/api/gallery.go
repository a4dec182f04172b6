package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/storage"
)

func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) {
	visibleOnly := r.URL.Query().Get("visible_only") == "true"
	photos, err := s.store.ListPhotos(visibleOnly)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "listing gallery: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

type uploadRequest struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Visible *bool  `json:"visible"`
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if req.URL == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required")
		return
	}

	maxOrder, err := s.store.MaxPhotoOrder()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "reading gallery order: %v", err)
		return
	}

	p := storage.GalleryPhoto{
		ID:        uuid.New().String(),
		URL:       req.URL,
		Caption:   req.Caption,
		Visible:   true,
		Order:     maxOrder + 1,
		CreatedAt: storage.Timestamp(time.Now()),
	}
	if req.Visible != nil {
		p.Visible = *req.Visible
	}

	if err := s.store.SavePhoto(p); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "saving photo: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type photoPatch struct {
	URL     *string `json:"url"`
	Caption *string `json:"caption"`
	Visible *bool   `json:"visible"`
	Order   *int    `json:"order"`
}

func (s *Server) handleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPhoto(chi.URLParam(r, "id"))
	if err != nil {
		notFoundOr(w, err, "photo")
		return
	}

	var patch photoPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if patch.URL != nil {
		p.URL = *patch.URL
	}
	if patch.Caption != nil {
		p.Caption = *patch.Caption
	}
	if patch.Visible != nil {
		p.Visible = *patch.Visible
	}
	if patch.Order != nil {
		p.Order = *patch.Order
	}

	if err := s.store.UpdatePhoto(p); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "updating photo: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type reorderRequest struct {
	Order map[string]int `json:"order"` // photo id -> display position
}

func (s *Server) handleReorderGallery(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if len(req.Order) == 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "order map is required")
		return
	}

	for id, pos := range req.Order {
		p, err := s.store.GetPhoto(id)
		if err != nil {
			notFoundOr(w, err, "photo")
			return
		}
		p.Order = pos
		if err := s.store.UpdatePhoto(p); err != nil {
			httpError(w, http.StatusInternalServerError, "storage_error", "reordering photo %s: %v", id, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "gallery reordered"})
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePhoto(chi.URLParam(r, "id")); err != nil {
		notFoundOr(w, err, "photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "photo deleted"})
}
