package chat

import "time"

// Conversation binds a session identifier to an owning user. There is no
// explicit close; a conversation simply stops growing.
type Conversation struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	SessionID    string    `json:"sessionId"`
	StartedAt    time.Time `json:"startedAt"`
	MessageCount int       `json:"messageCount"`
}
