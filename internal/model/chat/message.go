package chat

import "time"

// Roles recorded on persisted messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message persists a single half of a turn. Immutable once written.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Emotion        string    `json:"emotion,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
