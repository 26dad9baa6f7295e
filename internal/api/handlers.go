package api

import (
	"encoding/json"
	"net/http"

	"github.com/TejasNaik24/GUARDIAN/internal/agents"
)

// APIResponse is the uniform JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type chatRequest struct {
	UserID         string         `json:"user_id,omitempty"`
	Message        string         `json:"message"`
	ImageBase64    string         `json:"image_base64,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "invalid JSON body"})
		return
	}
	if body.Message == "" {
		s.writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "message is required"})
		return
	}

	result := s.service.Handle(r.Context(), &agents.Request{
		UserID:         body.UserID,
		Message:        body.Message,
		ImageBase64:    body.ImageBase64,
		Context:        body.Context,
		ConversationID: body.ConversationID,
	})

	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to write response")
	}
}
