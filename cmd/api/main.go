package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/empathai/backend/internal/config"
	"github.com/empathai/backend/internal/handler"
	"github.com/empathai/backend/internal/service/ai"
	chatservice "github.com/empathai/backend/internal/service/chat"
	memoryservice "github.com/empathai/backend/internal/service/memory"
	"github.com/empathai/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	repo, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("database ready at %s", cfg.Database.Path)

	aiSvc, err := ai.NewService(ctx, cfg.LLM, cfg.Persona, cfg.Memory.HistoryLimit)
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}
	log.Printf("AI service initialized, model=%s persona=%s", cfg.LLM.Model, cfg.Persona.Name)

	memorySvc := memoryservice.NewService(repo, cfg.Memory.RecallLimit)
	chatSvc := chatservice.NewService(repo, memorySvc, aiSvc, cfg.Memory.HistoryLimit)

	router := handler.NewRouter(cfg, repo, chatSvc, memorySvc, aiSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("EmpathAI backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
