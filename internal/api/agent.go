package api

import (
	"net/http"
)

type chatRequest struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// handleChat is the conversational endpoint. It always answers 200: every
// failure downstream of the decode is carried in the body's success flag so
// the visitor-facing widget never sees a transport error.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
		return
	}
	if req.Message == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
		return
	}

	reply := s.agent.Chat(r.Context(), req.Message, req.Username)
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.agent.Suggestions()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storage_error", "building suggestions: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
