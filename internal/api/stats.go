package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Counts()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "counting collections: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(100)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "listing accounts: %v", err)
		return
	}
	// Credentials never leave the service.
	for i := range accounts {
		accounts[i].Password = ""
		accounts[i].SecretKey = ""
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleAdminActivity(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	activities, err := s.store.ListActivities(limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "listing activity: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
