package chat_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/empathai/backend/internal/analysis/emotion"
	chatmodel "github.com/empathai/backend/internal/model/chat"
	memorymodel "github.com/empathai/backend/internal/model/memory"
	chatservice "github.com/empathai/backend/internal/service/chat"
	memoryservice "github.com/empathai/backend/internal/service/memory"
	"github.com/empathai/backend/internal/store"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, _ []memorymodel.Memory, _ []chatmodel.Message, _ string, _ emotion.Label, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *stubGenerator) ModelName() string { return "stub-model" }

func setupService(t *testing.T, gen chatservice.Generator) (*chatservice.Service, *store.SQLiteStore) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "empathai.db"))
	if err != nil {
		t.Fatalf("NewSQLite err: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	memorySvc := memoryservice.NewService(repo, 10)
	return chatservice.NewService(repo, memorySvc, gen, 10), repo
}

func TestTakeTurnPersistsTurn(t *testing.T) {
	svc, repo := setupService(t, &stubGenerator{reply: "Sounds like a great trail!"})
	ctx := context.Background()

	result, err := svc.TakeTurn(ctx, chatservice.TurnRequest{UserID: "u1", Message: "I love hiking"})
	if err != nil {
		t.Fatalf("TakeTurn err: %v", err)
	}

	if result.Response == "" {
		t.Fatal("expected non-empty response")
	}
	if !emotion.Valid(result.Emotion) {
		t.Fatalf("unexpected emotion label: %q", result.Emotion)
	}
	if result.Tone == "" {
		t.Fatal("expected a tone")
	}
	if result.ModelUsed != "stub-model" {
		t.Fatalf("unexpected model: %s", result.ModelUsed)
	}
	if result.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if result.MemoryID == "" {
		t.Fatal("expected a captured memory id for a preference message")
	}

	conv, err := repo.FindConversation(ctx, "u1", result.SessionID)
	if err != nil || conv == nil {
		t.Fatalf("conversation not persisted: %v", err)
	}
	messages, err := repo.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(messages))
	}
	if messages[0].Role != chatmodel.RoleUser || messages[1].Role != chatmodel.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", messages[0].Role, messages[1].Role)
	}
	if messages[0].Emotion == "" {
		t.Fatal("expected emotion on user message")
	}

	user, err := repo.GetUser(ctx, "u1")
	if err != nil || user == nil {
		t.Fatalf("user not created: %v", err)
	}
}

func TestTakeTurnFreshSessionPerCall(t *testing.T) {
	svc, _ := setupService(t, &stubGenerator{reply: "hello"})
	ctx := context.Background()

	first, err := svc.TakeTurn(ctx, chatservice.TurnRequest{UserID: "u1", Message: "hi there"})
	if err != nil {
		t.Fatalf("TakeTurn err: %v", err)
	}
	second, err := svc.TakeTurn(ctx, chatservice.TurnRequest{UserID: "u1", Message: "hi again"})
	if err != nil {
		t.Fatalf("TakeTurn err: %v", err)
	}

	if first.SessionID == second.SessionID {
		t.Fatal("expected distinct session ids when the client supplies none")
	}
}

func TestTakeTurnStableSuppliedSession(t *testing.T) {
	svc, repo := setupService(t, &stubGenerator{reply: "hello"})
	ctx := context.Background()

	req := chatservice.TurnRequest{UserID: "u1", Message: "hi there", SessionID: "s-fixed"}
	if _, err := svc.TakeTurn(ctx, req); err != nil {
		t.Fatalf("TakeTurn err: %v", err)
	}
	firstConv, _ := repo.FindConversation(ctx, "u1", "s-fixed")

	req.Message = "hi again"
	if _, err := svc.TakeTurn(ctx, req); err != nil {
		t.Fatalf("TakeTurn err: %v", err)
	}
	secondConv, _ := repo.FindConversation(ctx, "u1", "s-fixed")

	if firstConv == nil || secondConv == nil || firstConv.ID != secondConv.ID {
		t.Fatal("expected a stable conversation for a replayed session id")
	}

	messages, err := repo.ListMessages(ctx, firstConv.ID)
	if err != nil {
		t.Fatalf("ListMessages err: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages over two turns, got %d", len(messages))
	}
}

func TestTakeTurnValidation(t *testing.T) {
	svc, _ := setupService(t, &stubGenerator{reply: "hello"})
	ctx := context.Background()

	if _, err := svc.TakeTurn(ctx, chatservice.TurnRequest{Message: "hi"}); !errors.Is(err, chatservice.ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
	if _, err := svc.TakeTurn(ctx, chatservice.TurnRequest{UserID: "u1"}); !errors.Is(err, chatservice.ErrMessageRequired) {
		t.Fatalf("expected ErrMessageRequired, got %v", err)
	}
}

func TestTakeTurnProviderFailureWritesNoMessages(t *testing.T) {
	svc, repo := setupService(t, &stubGenerator{err: fmt.Errorf("upstream timeout")})
	ctx := context.Background()

	_, err := svc.TakeTurn(ctx, chatservice.TurnRequest{UserID: "u1", Message: "hello there friend"})
	if !errors.Is(err, chatservice.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}

	stats, statsErr := repo.Stats(ctx)
	if statsErr != nil {
		t.Fatalf("Stats err: %v", statsErr)
	}
	if stats.Messages != 0 {
		t.Fatalf("expected no persisted messages after provider failure, got %d", stats.Messages)
	}
}

func TestTakeTurnMemoriesUsedBounded(t *testing.T) {
	svc, repo := setupService(t, &stubGenerator{reply: "hello"})
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 15; i++ {
		mem := &memorymodel.Memory{
			ID:         uuid.NewString(),
			UserID:     "u1",
			Kind:       memorymodel.KindFact,
			Content:    fmt.Sprintf("fact %d", i),
			Confidence: 0.9,
			Active:     true,
			CreatedAt:  now.Add(time.Duration(i) * time.Second),
		}
		if err := repo.InsertMemory(ctx, mem); err != nil {
			t.Fatalf("InsertMemory err: %v", err)
		}
	}

	result, err := svc.TakeTurn(ctx, chatservice.TurnRequest{UserID: "u1", Message: "what do you remember"})
	if err != nil {
		t.Fatalf("TakeTurn err: %v", err)
	}
	if result.MemoriesUsed > 10 {
		t.Fatalf("memories_used exceeds limit: %d", result.MemoriesUsed)
	}
	if result.MemoriesUsed != 10 {
		t.Fatalf("expected recall to fill the limit, got %d", result.MemoriesUsed)
	}
}
