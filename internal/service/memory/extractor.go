package memory

import (
	"strings"

	"github.com/empathai/backend/internal/model/memory"
)

// Candidate is a potential memory extracted from a user message.
type Candidate struct {
	Kind       string
	Content    string
	Confidence float64
}

var indicatorSets = []struct {
	kind       string
	confidence float64
	indicators []string
}{
	{
		kind:       memory.KindFact,
		confidence: 0.9,
		indicators: []string{"my name is", "i am ", "i'm ", "i live in", "i work as", "i work at", "i study"},
	},
	{
		kind:       memory.KindPreference,
		confidence: 0.8,
		indicators: []string{"love", "like", "enjoy", "favorite", "prefer"},
	},
	{
		kind:       memory.KindGoal,
		confidence: 0.75,
		indicators: []string{"i want to", "i plan to", "my goal", "i hope to", "i dream of", "i aspire"},
	},
	{
		kind:       memory.KindExperience,
		confidence: 0.7,
		indicators: []string{"i went to", "i visited", "i experienced", "i tried", "i saw"},
	},
}

// Extract inspects a user message for retention-worthy content. At most one
// candidate per kind; the full message text is kept as the memory content.
func Extract(text string) []Candidate {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	normalized := strings.ToLower(trimmed)

	var candidates []Candidate
	for _, set := range indicatorSets {
		for _, indicator := range set.indicators {
			if strings.Contains(normalized, indicator) {
				candidates = append(candidates, Candidate{
					Kind:       set.kind,
					Content:    trimmed,
					Confidence: set.confidence,
				})
				break
			}
		}
	}
	return candidates
}
