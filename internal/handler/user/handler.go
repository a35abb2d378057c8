package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	memoryservice "github.com/empathai/backend/internal/service/memory"
	"github.com/empathai/backend/internal/store"
	"github.com/empathai/backend/pkg/utils"
)

// Handler serves the user profile, memory and conversation listings.
type Handler struct {
	repo     store.Repository
	memories *memoryservice.Service
}

// New creates the user handler.
func New(repo store.Repository, memories *memoryservice.Service) *Handler {
	return &Handler{repo: repo, memories: memories}
}

// RegisterRoutes registers user-facing read routes and the memory delete.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/user/{userID}", h.handleUserInfo)
	r.Get("/user/{userID}/memories", h.handleUserMemories)
	r.Get("/user/{userID}/conversations", h.handleUserConversations)
	r.Delete("/memory/{memoryID}", h.handleDeleteMemory)
}

func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.repo.GetUser(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"user_id":             userID,
			"exists":              false,
			"total_conversations": 0,
			"memory_count":        0,
			"last_active":         nil,
		})
		return
	}

	convCount, err := h.repo.CountConversations(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to count conversations")
		return
	}
	memoryCount, err := h.repo.CountActiveMemories(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to count memories")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":             userID,
		"exists":              true,
		"total_conversations": convCount,
		"memory_count":        memoryCount,
		"last_active":         user.LastSeen,
		"created_at":          user.CreatedAt,
	})
}

func (h *Handler) handleUserMemories(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	memories, err := h.memories.Recall(r.Context(), userID, limit)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load memories")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        userID,
		"total_memories": len(memories),
		"memories":       memories,
	})
}

func (h *Handler) handleUserConversations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	conversations, err := h.repo.ListConversations(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load conversations")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":             userID,
		"total_conversations": len(conversations),
		"conversations":       conversations,
	})
}

func (h *Handler) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")

	if err := h.memories.Forget(r.Context(), memoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "memory not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete memory")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":   "memory deleted",
		"memory_id": memoryID,
	})
}
