// Package memory captures retention-worthy snippets of conversation and
// recalls them for prompt composition.
package memory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/empathai/backend/internal/model/memory"
	"github.com/empathai/backend/internal/store"
)

// DefaultRecallLimit bounds recall when no limit is configured or requested.
const DefaultRecallLimit = 10

// Service implements keyword/recency memory over the repository. Retrieval
// is a filtered ordering, not a semantic ranking.
type Service struct {
	repo        store.Repository
	recallLimit int
}

// NewService creates the memory service. recallLimit caps how many memories
// a single recall may return.
func NewService(repo store.Repository, recallLimit int) *Service {
	if recallLimit < 1 {
		recallLimit = DefaultRecallLimit
	}
	return &Service{repo: repo, recallLimit: recallLimit}
}

// RecallLimit returns the configured recall bound.
func (s *Service) RecallLimit() int {
	return s.recallLimit
}

// Recall returns up to limit active memories for a user, highest confidence
// first. A non-positive or oversized limit collapses to the configured bound.
func (s *Service) Recall(ctx context.Context, userID string, limit int) ([]memory.Memory, error) {
	if limit < 1 || limit > s.recallLimit {
		limit = s.recallLimit
	}
	memories, err := s.repo.ListActiveMemories(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recall memories: %w", err)
	}
	return memories, nil
}

// Capture extracts candidates from a user message and persists them.
// Returns the ids of the stored memories.
func (s *Service) Capture(ctx context.Context, userID, text string) ([]string, error) {
	candidates := Extract(text)
	if len(candidates) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	ids := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		mem := &memory.Memory{
			ID:         uuid.NewString(),
			UserID:     userID,
			Kind:       candidate.Kind,
			Content:    candidate.Content,
			Confidence: memory.Clamp(candidate.Confidence),
			Active:     true,
			CreatedAt:  now,
		}
		if err := s.repo.InsertMemory(ctx, mem); err != nil {
			return ids, fmt.Errorf("store memory: %w", err)
		}
		ids = append(ids, mem.ID)
	}

	log.Printf("[memory] captured %d memories for user=%s", len(ids), userID)
	return ids, nil
}

// Forget soft-deletes a memory. store.ErrNotFound when the id is unknown.
func (s *Service) Forget(ctx context.Context, memoryID string) error {
	return s.repo.DeactivateMemory(ctx, memoryID)
}
