package persona

import "strings"

// Persona is the fixed textual identity injected into every prompt.
type Persona struct {
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Background string   `json:"background"`
	Traits     []string `json:"traits,omitempty"`
}

// Default returns the stock companion persona used when no overrides are
// configured.
func Default() Persona {
	return Persona{
		Name:       "Alex",
		Age:        28,
		Background: "digital artist from Portland who loves hiking, anime, and photography",
		Traits:     []string{"empathetic", "curious", "playful", "supportive"},
	}
}

// ParseTraits splits a comma-separated trait list, dropping empty entries.
func ParseTraits(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	traits := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			traits = append(traits, t)
		}
	}
	return traits
}
