package memory

import "time"

// Kinds of retained memories, matching the extraction heuristics.
const (
	KindPreference = "preference"
	KindFact       = "fact"
	KindExperience = "experience"
	KindGoal       = "goal"
)

// Memory is a short textual fact or preference extracted from conversation
// and stored for reuse in later prompts. Soft-deleted via Active; no
// automatic eviction.
type Memory struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Kind       string    `json:"type"`
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence"`
	Active     bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Clamp bounds a confidence score to [0,1].
func Clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
