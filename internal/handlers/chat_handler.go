package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"esg-assess/internal/models"
	"esg-assess/internal/service"
)

type chatAPI interface {
	Ask(ctx context.Context, userID uint, req service.ChatRequest) (*service.ChatReply, error)
	Transcript(ctx context.Context, userID uint, sessionID string) ([]models.ChatMessage, error)
}

// ChatHandler serves the implementation assistant
type ChatHandler struct {
	chat chatAPI
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat chatAPI) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Ask answers a question about a snapshot
// @Summary Ask the assistant
// @Description Answers from the language model when it is reachable and from built-in guidance otherwise. Roadmap commands are carried out directly.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ChatRequest true "Query"
// @Success 200 {object} service.ChatReply
// @Failure 400 {object} validationResponse "Invalid request"
// @Failure 403 {object} map[string]string "Not the caller's snapshot or session"
// @Router /chat [post]
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID != "" {
		if _, err := uuid.Parse(req.SessionID); err != nil {
			respondWithValidation(w, []string{"session_id must be a valid UUID"})
			return
		}
	}

	reply, err := h.chat.Ask(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to answer")
		return
	}
	respondWithJSON(w, http.StatusOK, reply)
}

// Transcript returns the messages of one of the caller's sessions
// @Summary Chat transcript
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {array} models.ChatMessage
// @Failure 403 {object} map[string]string "Not the caller's session"
// @Failure 404 {object} map[string]string "Not found"
// @Router /chat/sessions/{sessionId}/messages [get]
func (h *ChatHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(r.PathValue("sessionId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sessionId")
		return
	}

	msgs, err := h.chat.Transcript(r.Context(), userID, sessionID.String())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load transcript")
		return
	}
	respondWithJSON(w, http.StatusOK, msgs)
}
