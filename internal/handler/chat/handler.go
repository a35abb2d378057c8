package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/empathai/backend/internal/service/chat"
	"github.com/empathai/backend/internal/store"
	"github.com/empathai/backend/pkg/utils"
)

// Handler serves the chat turn endpoint and conversation transcripts.
type Handler struct {
	chatSvc *chatservice.Service
	repo    store.Repository
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service, repo store.Repository) *Handler {
	return &Handler{chatSvc: chatSvc, repo: repo}
}

// RegisterRoutes registers chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/conversation/{conversationID}/messages", h.handleConversationMessages)
}

// handleChat runs one full chat turn. Validation happens before any row is
// written: a malformed body never leaves message rows behind.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatservice.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := h.chatSvc.TakeTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, chatservice.ErrUserRequired), errors.Is(err, chatservice.ErrMessageRequired):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, chatservice.ErrProvider):
			utils.RespondError(w, http.StatusBadGateway, "llm provider unavailable")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "chat turn failed")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// handleConversationMessages returns the full transcript of a conversation.
func (h *Handler) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		utils.RespondError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	messages, err := h.repo.ListMessages(r.Context(), conversationID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": conversationID,
		"total_messages":  len(messages),
		"messages":        messages,
	})
}
