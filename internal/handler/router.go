package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/empathai/backend/internal/config"
	adminHandler "github.com/empathai/backend/internal/handler/admin"
	chatHandler "github.com/empathai/backend/internal/handler/chat"
	streamHandler "github.com/empathai/backend/internal/handler/stream"
	userHandler "github.com/empathai/backend/internal/handler/user"
	wsHandler "github.com/empathai/backend/internal/handler/ws"
	middlewarePkg "github.com/empathai/backend/internal/middleware"
	"github.com/empathai/backend/internal/service/ai"
	chatservice "github.com/empathai/backend/internal/service/chat"
	memoryservice "github.com/empathai/backend/internal/service/memory"
	"github.com/empathai/backend/internal/store"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg *config.Config, repo store.Repository, chatSvc *chatservice.Service, memorySvc *memoryservice.Service, aiSvc *ai.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.CORS.AllowedOrigins))

	chatHandler.New(chatSvc, repo).RegisterRoutes(r)
	userHandler.New(repo, memorySvc).RegisterRoutes(r)
	adminHandler.New(repo, cfg.LLM.Model, cfg.Persona.Name).RegisterRoutes(r)

	r.Get("/chat/stream", streamHandler.New(aiSvc, chatSvc).ServeHTTP)
	r.Get("/chat/ws", wsHandler.New(chatSvc).ServeHTTP)

	return r
}
