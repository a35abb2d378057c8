package admin

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/empathai/backend/internal/store"
	"github.com/empathai/backend/pkg/utils"
)

// Handler serves service info, health and admin statistics.
type Handler struct {
	repo        store.Repository
	modelName   string
	personaName string
	started     time.Time
}

// New creates the admin handler.
func New(repo store.Repository, modelName, personaName string) *Handler {
	return &Handler{repo: repo, modelName: modelName, personaName: personaName, started: time.Now().UTC()}
}

// RegisterRoutes registers the info, health and stats routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Get("/admin/stats", h.handleStats)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"service":  "EmpathAI",
		"status":   "running",
		"model":    h.modelName,
		"persona":  h.personaName,
		"features": []string{"chat", "memory", "emotion_detection", "tone_adaptation", "persistence"},
		"endpoints": map[string]string{
			"chat":          "POST /chat",
			"chat_stream":   "GET /chat/stream",
			"chat_ws":       "GET /chat/ws",
			"user":          "GET /user/{user_id}",
			"user_memories": "GET /user/{user_id}/memories",
			"delete_memory": "DELETE /memory/{memory_id}",
			"admin_stats":   "GET /admin/stats",
			"health":        "GET /health",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	status := "healthy"
	if err := h.repo.Ping(r.Context()); err != nil {
		dbStatus = "disconnected"
		status = "degraded"
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"database":  dbStatus,
		"model":     h.modelName,
		"persona":   h.personaName,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to aggregate stats")
		return
	}

	recent, err := h.repo.RecentUsers(r.Context(), 5)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list recent users")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"system": map[string]interface{}{
			"model":          h.modelName,
			"persona":        h.personaName,
			"uptime_seconds": int(time.Since(h.started).Seconds()),
		},
		"statistics":   stats,
		"recent_users": recent,
	})
}
