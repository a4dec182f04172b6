package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/cv"
	"github.com/mavecode/portfolio/internal/storage"
)

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	s.trackVisitor(r, "")
	pf, err := s.store.FirstPortfolio()
	if err != nil {
		notFoundOr(w, err, "portfolio")
		return
	}
	writeJSON(w, http.StatusOK, publicPortfolio(pf))
}

func (s *Server) handleGetPortfolioByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	s.trackVisitor(r, username)
	pf, err := s.store.GetPortfolioByUsername(username)
	if err != nil {
		notFoundOr(w, err, "portfolio")
		return
	}
	writeJSON(w, http.StatusOK, publicPortfolio(pf))
}

func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var pf storage.Portfolio
	if err := decodeJSON(w, r, &pf); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}

	// The record is keyed by the authenticated owner, never by the body.
	// Legacy env-admin sessions have no owner id and edit the default record.
	existing, err := s.ownerPortfolio(sess.UserID)
	switch {
	case err == nil:
		pf.ID = existing.ID
		pf.UserID = existing.UserID
		pf.Username = existing.Username
	case errors.Is(err, storage.ErrNotFound):
		pf.ID = uuid.New().String()
		pf.UserID = sess.UserID
		pf.Username = sess.Username
	default:
		httpError(w, http.StatusInternalServerError, "storage_error", "loading portfolio: %v", err)
		return
	}
	pf.UpdatedAt = storage.Timestamp(time.Now())

	if pf.CVData != "" && cv.IsPDF(pf.CVFilename) {
		text, err := cv.ExtractFromBase64(pf.CVData)
		if err != nil {
			slog.Warn("cv text extraction failed", "filename", pf.CVFilename, "error", err)
		} else {
			pf.CVText = text
		}
	}

	if err := s.store.SavePortfolio(pf); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "saving portfolio: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, pf)
}

func (s *Server) ownerPortfolio(userID string) (storage.Portfolio, error) {
	if userID == "" {
		return s.store.FirstPortfolio()
	}
	return s.store.GetPortfolioByUserID(userID)
}

// publicPortfolio strips the raw CV blob from unauthenticated reads.
func publicPortfolio(pf storage.Portfolio) storage.Portfolio {
	pf.CVData = ""
	return pf
}
