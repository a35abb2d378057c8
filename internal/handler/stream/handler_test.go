package stream_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/empathai/backend/internal/handler/stream"
	chatservice "github.com/empathai/backend/internal/service/chat"
	memoryservice "github.com/empathai/backend/internal/service/memory"
	"github.com/empathai/backend/internal/store"
)

func newTestHandler(t *testing.T) (*stream.Handler, *store.SQLiteStore) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "empathai.db"))
	if err != nil {
		t.Fatalf("NewSQLite err: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	memorySvc := memoryservice.NewService(repo, 10)
	chatSvc := chatservice.NewService(repo, memorySvc, nil, 10)
	return stream.New(nil, chatSvc), repo
}

func TestStreamMissingParams(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, target := range []string{
		"/chat/stream?message=hello",
		"/chat/stream?user_id=u1",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestStreamRepositoryFailureMapsToServerError(t *testing.T) {
	h, repo := newTestHandler(t)
	repo.Close()

	req := httptest.NewRequest(http.MethodGet, "/chat/stream?user_id=u1&message=hello", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a repository fault, got %d", rec.Code)
	}
}
