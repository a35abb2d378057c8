package memory

import (
	"context"
	"path/filepath"
	"testing"

	memorymodel "github.com/empathai/backend/internal/model/memory"
	"github.com/empathai/backend/internal/store"
)

func newTestService(t *testing.T, recallLimit int) *Service {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "empathai.db"))
	if err != nil {
		t.Fatalf("NewSQLite err: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewService(repo, recallLimit)
}

func TestCaptureAndRecall(t *testing.T) {
	svc := newTestService(t, 10)
	ctx := context.Background()

	ids, err := svc.Capture(ctx, "u1", "My name is Sam and I love gardening")
	if err != nil {
		t.Fatalf("Capture err: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 stored memories, got %d", len(ids))
	}

	memories, err := svc.Recall(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Recall err: %v", err)
	}
	if len(memories) != 2 {
		t.Fatalf("expected 2 recalled memories, got %d", len(memories))
	}
	if memories[0].Kind != memorymodel.KindFact {
		t.Fatalf("expected the fact first (higher confidence), got %s", memories[0].Kind)
	}
}

func TestCaptureNothing(t *testing.T) {
	svc := newTestService(t, 10)

	ids, err := svc.Capture(context.Background(), "u1", "what time is it")
	if err != nil {
		t.Fatalf("Capture err: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no stored memories, got %d", len(ids))
	}
}

func TestRecallClampsLimit(t *testing.T) {
	svc := newTestService(t, 3)
	ctx := context.Background()

	for _, text := range []string{
		"I love tea",
		"My name is Sam",
		"I want to learn piano",
		"I went to Japan last year",
	} {
		if _, err := svc.Capture(ctx, "u1", text); err != nil {
			t.Fatalf("Capture err: %v", err)
		}
	}

	for _, limit := range []int{0, -1, 50} {
		memories, err := svc.Recall(ctx, "u1", limit)
		if err != nil {
			t.Fatalf("Recall err: %v", err)
		}
		if len(memories) != 3 {
			t.Fatalf("limit %d: expected the configured bound of 3, got %d", limit, len(memories))
		}
	}
}

func TestForget(t *testing.T) {
	svc := newTestService(t, 10)
	ctx := context.Background()

	ids, err := svc.Capture(ctx, "u1", "I love tea")
	if err != nil || len(ids) != 1 {
		t.Fatalf("Capture err: %v ids=%v", err, ids)
	}

	if err := svc.Forget(ctx, ids[0]); err != nil {
		t.Fatalf("Forget err: %v", err)
	}

	memories, err := svc.Recall(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Recall err: %v", err)
	}
	if len(memories) != 0 {
		t.Fatalf("expected no active memories after Forget, got %d", len(memories))
	}

	if err := svc.Forget(ctx, "missing"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
