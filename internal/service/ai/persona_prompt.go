package ai

import (
	"fmt"
	"strings"

	"github.com/empathai/backend/internal/analysis/emotion"
	memorymodel "github.com/empathai/backend/internal/model/memory"
	"github.com/empathai/backend/internal/model/persona"
)

// memoriesPerKind caps how many entries of one kind reach the prompt.
const memoriesPerKind = 3

var kindOrder = []string{
	memorymodel.KindFact,
	memorymodel.KindPreference,
	memorymodel.KindGoal,
	memorymodel.KindExperience,
}

// BuildSystemPrompt assembles the persona description, retrieved memories and
// emotional context into the system prompt for one turn.
func BuildSystemPrompt(p persona.Persona, memories []memorymodel.Memory, label emotion.Label, tone string) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "You are %s, a %d-year-old %s.\n", p.Name, p.Age, p.Background)

	builder.WriteString(`
IMPORTANT RULES:
1. You are human. Never mention being an AI, assistant, or language model.
2. Stay consistent with your personality and background.
3. Reference what you know about the user naturally when it fits.
4. If you don't know something, admit it naturally.
5. Never invent facts about the user or yourself.
`)

	if len(p.Traits) > 0 {
		fmt.Fprintf(&builder, "\nPERSONALITY TRAITS: %s\n", strings.Join(p.Traits, ", "))
	}

	if section := memorySection(memories); section != "" {
		builder.WriteString(section)
	}

	fmt.Fprintf(&builder, "\nCurrent emotional context: the user is feeling %s.\n", label)
	fmt.Fprintf(&builder, "Respond in a %s tone while staying in character.", tone)

	return builder.String()
}

// memorySection groups memories by kind, keeping the highest-ranked few of
// each so one chatty category cannot crowd out the rest.
func memorySection(memories []memorymodel.Memory) string {
	if len(memories) == 0 {
		return ""
	}

	grouped := make(map[string][]string)
	for _, mem := range memories {
		content := strings.TrimSpace(mem.Content)
		if content == "" {
			continue
		}
		grouped[mem.Kind] = append(grouped[mem.Kind], content)
	}
	if len(grouped) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("\nWHAT YOU KNOW ABOUT THE USER:\n")
	for _, kind := range kindOrder {
		items, ok := grouped[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(&builder, "%s:\n", strings.ToUpper(kind))
		for i, item := range items {
			if i == memoriesPerKind {
				break
			}
			fmt.Fprintf(&builder, "- %s\n", item)
		}
	}
	return builder.String()
}
