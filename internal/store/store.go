// Package store provides data persistence for users, conversations,
// messages and memories.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/empathai/backend/internal/model/chat"
	"github.com/empathai/backend/internal/model/memory"
)

// ErrNotFound is returned when a targeted row does not exist.
var ErrNotFound = errors.New("not found")

// Stats aggregates the counters exposed by the admin surface.
type Stats struct {
	Users              int `json:"total_users"`
	Conversations      int `json:"total_conversations"`
	Messages           int `json:"total_messages"`
	ActiveMemories     int `json:"total_memories"`
	ConversationsToday int `json:"active_conversations_today"`
}

// RecentUser is a row of the admin recent-activity listing.
type RecentUser struct {
	UserID   string    `json:"user_id"`
	LastSeen time.Time `json:"last_seen"`
}

// Repository defines the persistence operations the services rely on.
type Repository interface {
	// GetUser retrieves a user by external identifier. Returns nil when absent.
	GetUser(ctx context.Context, userID string) (*chat.User, error)

	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, user *chat.User) error

	// TouchUser updates last_seen for an existing user.
	TouchUser(ctx context.Context, userID string, lastSeen time.Time) error

	// FindConversation resolves the conversation a (user, session) pair maps
	// to. Returns nil when the pair has not been seen.
	FindConversation(ctx context.Context, userID, sessionID string) (*chat.Conversation, error)

	// CreateConversation inserts a new conversation record.
	CreateConversation(ctx context.Context, conv *chat.Conversation) error

	// ListConversations returns a user's conversations, newest first.
	ListConversations(ctx context.Context, userID string) ([]chat.Conversation, error)

	// BumpMessageCount increments a conversation's message counter.
	BumpMessageCount(ctx context.Context, conversationID string, delta int) error

	// InsertMessage appends an immutable message row.
	InsertMessage(ctx context.Context, msg *chat.Message) error

	// RecentMessages returns the last limit messages of a conversation in
	// chronological order.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]chat.Message, error)

	// ListMessages returns the full transcript in chronological order.
	ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error)

	// InsertMemory stores an extracted memory. Confidence is clamped to [0,1].
	InsertMemory(ctx context.Context, mem *memory.Memory) error

	// ListActiveMemories returns up to limit active memories for a user,
	// highest confidence first, ties broken by recency.
	ListActiveMemories(ctx context.Context, userID string, limit int) ([]memory.Memory, error)

	// DeactivateMemory soft-deletes a memory. ErrNotFound when absent.
	DeactivateMemory(ctx context.Context, memoryID string) error

	// CountConversations returns the number of conversations a user owns.
	CountConversations(ctx context.Context, userID string) (int, error)

	// CountActiveMemories returns the number of active memories a user owns.
	CountActiveMemories(ctx context.Context, userID string) (int, error)

	// Stats aggregates system-wide counters.
	Stats(ctx context.Context) (*Stats, error)

	// RecentUsers lists the most recently seen users.
	RecentUsers(ctx context.Context, limit int) ([]RecentUser, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
