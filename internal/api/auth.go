package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/storage"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   string `json:"user_id,omitempty"`
	Role     string `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "username and password are required")
		return
	}

	if _, err := s.store.GetAccountByUsername(req.Username); err == nil {
		httpError(w, http.StatusConflict, "invalid_request_error", "username already taken")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusInternalServerError, "storage_error", "checking username: %v", err)
		return
	}

	now := time.Now()
	acct := storage.Account{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Password:  req.Password,
		SecretKey: uuid.New().String(),
		CreatedAt: storage.Timestamp(now),
	}
	if err := s.store.CreateAccount(acct); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "creating account: %v", err)
		return
	}

	// Every owner starts with a skeleton portfolio under their name.
	pf := storage.Portfolio{
		ID:        uuid.New().String(),
		UserID:    acct.ID,
		Username:  acct.Username,
		Name:      acct.Username,
		Skills:    []storage.Skill{},
		Contact:   map[string]string{},
		UpdatedAt: storage.Timestamp(now),
	}
	if err := s.store.SavePortfolio(pf); err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "creating portfolio: %v", err)
		return
	}

	s.trackActivity(acct.ID, "register", "new account "+acct.Username)

	sess := s.sessions.Create(acct.Username, acct.ID, "owner")
	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:    sess.Token,
		Username: sess.Username,
		UserID:   sess.UserID,
		Role:     sess.Role,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	acct, err := s.store.GetAccountByCredentials(req.Username, req.Password)
	switch {
	case err == nil:
		if err := s.store.TouchAccountSeen(acct.ID, storage.Timestamp(time.Now())); err != nil {
			slog.Warn("failed to update last_seen", "error", err)
		}
		s.trackActivity(acct.ID, "login", "")
		sess := s.sessions.Create(acct.Username, acct.ID, "owner")
		writeJSON(w, http.StatusOK, sessionResponse{
			Token:    sess.Token,
			Username: sess.Username,
			UserID:   sess.UserID,
			Role:     sess.Role,
		})
	case errors.Is(err, storage.ErrNotFound):
		// Legacy single-admin fallback: credentials from the environment,
		// no account record behind them.
		if s.adminUsername != "" && req.Username == s.adminUsername && req.Password == s.adminPassword {
			sess := s.sessions.Create(req.Username, "", "admin")
			writeJSON(w, http.StatusOK, sessionResponse{
				Token:    sess.Token,
				Username: sess.Username,
				Role:     sess.Role,
			})
			return
		}
		httpError(w, http.StatusUnauthorized, "authentication_error", "invalid username or password")
	default:
		httpError(w, http.StatusInternalServerError, "storage_error", "checking credentials: %v", err)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.sessions.Delete(token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	sess, ok := s.sessions.Get(token)
	if !ok {
		httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or expired session token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"username": sess.Username,
		"user_id":  sess.UserID,
		"role":     sess.Role,
	})
}
