// Package chat orchestrates a single conversational turn: memory recall,
// emotion detection, prompt composition, the provider call, and persistence.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/empathai/backend/internal/analysis/emotion"
	chatmodel "github.com/empathai/backend/internal/model/chat"
	memorymodel "github.com/empathai/backend/internal/model/memory"
	memoryservice "github.com/empathai/backend/internal/service/memory"
	"github.com/empathai/backend/internal/store"
)

var (
	ErrUserRequired    = errors.New("user id is required")
	ErrMessageRequired = errors.New("message is required")
	// ErrProvider marks upstream LLM failures so handlers can map them to a
	// gateway error instead of a generic 500.
	ErrProvider = errors.New("llm provider failure")
)

// Generator produces the assistant reply for a prepared turn.
type Generator interface {
	Generate(ctx context.Context, memories []memorymodel.Memory, history []chatmodel.Message, userMessage string, label emotion.Label, tone string) (string, error)
	ModelName() string
}

// TurnRequest is the inbound chat payload.
type TurnRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// TurnResult is the response envelope for one completed turn.
type TurnResult struct {
	Response     string    `json:"response"`
	UserID       string    `json:"user_id"`
	Emotion      string    `json:"emotion_detected"`
	MemoriesUsed int       `json:"memories_used"`
	Tone         string    `json:"tone"`
	ModelUsed    string    `json:"model_used"`
	MemoryID     string    `json:"memory_id,omitempty"`
	SessionID    string    `json:"session_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// TurnContext carries everything PrepareTurn resolved so the reply can be
// generated (blocking or streamed) before CompleteTurn persists the turn.
type TurnContext struct {
	User         *chatmodel.User
	Conversation *chatmodel.Conversation
	Memories     []memorymodel.Memory
	History      []chatmodel.Message
	Emotion      emotion.Label
	Tone         string
	UserMessage  string
}

// Service sequences the chat pipeline. Turns are independent; concurrent
// turns for the same user are not serialized against each other.
type Service struct {
	repo         store.Repository
	memories     *memoryservice.Service
	generator    Generator
	historyLimit int
}

// NewService wires the orchestrator.
func NewService(repo store.Repository, memories *memoryservice.Service, generator Generator, historyLimit int) *Service {
	if historyLimit < 1 {
		historyLimit = 10
	}
	return &Service{
		repo:         repo,
		memories:     memories,
		generator:    generator,
		historyLimit: historyLimit,
	}
}

// TakeTurn runs the full pipeline for one chat request.
func (s *Service) TakeTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	tc, err := s.PrepareTurn(ctx, req)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.Generate(ctx, tc.Memories, tc.History, tc.UserMessage, tc.Emotion, tc.Tone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	return s.CompleteTurn(ctx, tc, reply)
}

// PrepareTurn validates the request and resolves everything the prompt
// needs: the user row, the conversation, recalled memories, recent history,
// and the detected emotion. Nothing is written for the turn yet beyond
// user/conversation bootstrap rows.
func (s *Service) PrepareTurn(ctx context.Context, req TurnRequest) (*TurnContext, error) {
	if req.UserID == "" {
		return nil, ErrUserRequired
	}
	if req.Message == "" {
		return nil, ErrMessageRequired
	}

	user, err := s.ensureUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	conv, err := s.resolveConversation(ctx, req.UserID, req.SessionID)
	if err != nil {
		return nil, err
	}

	memories, err := s.memories.Recall(ctx, req.UserID, 0)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.RecentMessages(ctx, conv.ID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	label := emotion.Classify(req.Message)

	return &TurnContext{
		User:         user,
		Conversation: conv,
		Memories:     memories,
		History:      history,
		Emotion:      label,
		Tone:         emotion.ToneFor(label),
		UserMessage:  req.Message,
	}, nil
}

// CompleteTurn persists both halves of the turn, captures new memories, and
// builds the response envelope.
func (s *Service) CompleteTurn(ctx context.Context, tc *TurnContext, reply string) (*TurnResult, error) {
	now := time.Now().UTC()

	userMsg := &chatmodel.Message{
		ID:             uuid.NewString(),
		ConversationID: tc.Conversation.ID,
		Role:           chatmodel.RoleUser,
		Content:        tc.UserMessage,
		Emotion:        string(tc.Emotion),
		CreatedAt:      now,
	}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	assistantMsg := &chatmodel.Message{
		ID:             uuid.NewString(),
		ConversationID: tc.Conversation.ID,
		Role:           chatmodel.RoleAssistant,
		Content:        reply,
		CreatedAt:      now,
	}
	if err := s.repo.InsertMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	if err := s.repo.BumpMessageCount(ctx, tc.Conversation.ID, 2); err != nil {
		log.Printf("[chat] failed to bump message count for conversation=%s: %v", tc.Conversation.ID, err)
	}

	memoryIDs, err := s.memories.Capture(ctx, tc.User.UserID, tc.UserMessage)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{
		Response:     reply,
		UserID:       tc.User.UserID,
		Emotion:      string(tc.Emotion),
		MemoriesUsed: len(tc.Memories),
		Tone:         tc.Tone,
		ModelUsed:    s.generator.ModelName(),
		SessionID:    tc.Conversation.SessionID,
		Timestamp:    now,
	}
	if len(memoryIDs) > 0 {
		result.MemoryID = memoryIDs[len(memoryIDs)-1]
	}

	log.Printf("[chat] turn completed user=%s session=%s emotion=%s memories_used=%d",
		tc.User.UserID, tc.Conversation.SessionID, tc.Emotion, len(tc.Memories))
	return result, nil
}

// ensureUser creates the user on first message and touches last_seen on
// every later turn.
func (s *Service) ensureUser(ctx context.Context, userID string) (*chatmodel.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := time.Now().UTC()
	if user == nil {
		user = &chatmodel.User{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: now,
			LastSeen:  now,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		log.Printf("[chat] created user=%s", userID)
		return user, nil
	}

	if err := s.repo.TouchUser(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("touch user: %w", err)
	}
	user.LastSeen = now
	return user, nil
}

// resolveConversation maps (user, session) to a conversation, minting a
// fresh session id when the client did not supply one.
func (s *Service) resolveConversation(ctx context.Context, userID, sessionID string) (*chatmodel.Conversation, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else {
		existing, err := s.repo.FindConversation(ctx, userID, sessionID)
		if err != nil {
			return nil, fmt.Errorf("find conversation: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	conv := &chatmodel.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		StartedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}
