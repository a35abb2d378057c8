package memory

import (
	"testing"

	memorymodel "github.com/empathai/backend/internal/model/memory"
)

func TestExtractPreference(t *testing.T) {
	candidates := Extract("I really enjoy rainy mornings")
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Kind != memorymodel.KindPreference {
		t.Fatalf("expected preference, got %s", candidates[0].Kind)
	}
	if candidates[0].Confidence != 0.8 {
		t.Fatalf("unexpected confidence: %f", candidates[0].Confidence)
	}
}

func TestExtractFact(t *testing.T) {
	candidates := Extract("My name is Sam and I live in Oslo")
	found := false
	for _, c := range candidates {
		if c.Kind == memorymodel.KindFact {
			found = true
			if c.Confidence != 0.9 {
				t.Fatalf("unexpected fact confidence: %f", c.Confidence)
			}
		}
	}
	if !found {
		t.Fatal("expected a fact candidate")
	}
}

func TestExtractMultipleKinds(t *testing.T) {
	candidates := Extract("I'm a nurse and I love gardening")
	kinds := make(map[string]int)
	for _, c := range candidates {
		kinds[c.Kind]++
	}
	if kinds[memorymodel.KindFact] != 1 || kinds[memorymodel.KindPreference] != 1 {
		t.Fatalf("expected one fact and one preference, got %v", kinds)
	}
}

func TestExtractAtMostOnePerKind(t *testing.T) {
	candidates := Extract("I love coffee and I like tea and my favorite is cocoa")
	count := 0
	for _, c := range candidates {
		if c.Kind == memorymodel.KindPreference {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected a single preference candidate, got %d", count)
	}
}

func TestExtractNothing(t *testing.T) {
	if candidates := Extract("what time is it"); len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
	if candidates := Extract("   "); len(candidates) != 0 {
		t.Fatalf("expected no candidates for blank input, got %d", len(candidates))
	}
}
