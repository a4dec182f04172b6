package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mavecode/portfolio/internal/session"
	"github.com/mavecode/portfolio/internal/storage"
)

type contextKey string

const sessionKey contextKey = "session"

// CORS handles preflight requests and sets the allow headers for the
// configured origins. An empty or "*" origin list allows everything.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth resolves the session token from the Authorization header or,
// for legacy clients, the token query parameter, and stores the session in
// the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpError(w, http.StatusUnauthorized, "authentication_error", "missing session token")
			return
		}
		sess, ok := s.sessions.Get(token)
		if !ok {
			httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or expired session token")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) {
		return auth[len(prefix):]
	}
	return r.URL.Query().Get("token")
}

// sessionFrom returns the authenticated session placed by requireAuth.
func sessionFrom(r *http.Request) session.Session {
	sess, _ := r.Context().Value(sessionKey).(session.Session)
	return sess
}

// trackVisitor records a public page view. Fire and forget: tracking must
// never slow down or fail a read.
func (s *Server) trackVisitor(r *http.Request, targetUser string) {
	v := storage.Visitor{
		ID:         uuid.New().String(),
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
		Path:       r.URL.Path,
		TargetUser: targetUser,
		Timestamp:  storage.Timestamp(time.Now()),
	}
	go func() {
		if err := s.store.SaveVisitor(v); err != nil {
			slog.Warn("failed to record visitor", "error", err)
		}
	}()
}

// trackActivity records a user action such as register or login.
func (s *Server) trackActivity(userID, kind, details string) {
	a := storage.Activity{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      kind,
		Details:   details,
		Timestamp: storage.Timestamp(time.Now()),
	}
	go func() {
		if err := s.store.SaveActivity(a); err != nil {
			slog.Warn("failed to record activity", "error", err)
		}
	}()
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
