package emotion

import "testing"

func TestClassifyJoy(t *testing.T) {
	label := Classify("I'm so happy today, everything went great")
	if label != Joy {
		t.Fatalf("expected joy, got %s", label)
	}
}

func TestClassifySadness(t *testing.T) {
	label := Classify("I feel really lonely and depressed lately")
	if label != Sadness {
		t.Fatalf("expected sadness, got %s", label)
	}
}

func TestClassifyLove(t *testing.T) {
	label := Classify("I love hiking")
	if label != Love {
		t.Fatalf("expected love, got %s", label)
	}
}

func TestClassifyNeutralDefault(t *testing.T) {
	label := Classify("the meeting is at three")
	if label != Neutral {
		t.Fatalf("expected neutral, got %s", label)
	}
}

func TestClassifyEmptyText(t *testing.T) {
	if label := Classify("   "); label != Neutral {
		t.Fatalf("expected neutral for blank input, got %s", label)
	}
}

func TestClassifyExclamationBoost(t *testing.T) {
	label := Classify("we won!!!")
	if label != Excitement {
		t.Fatalf("expected excitement from exclamations, got %s", label)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	const text = "I'm worried and a bit scared about tomorrow"
	first := Classify(text)
	for i := 0; i < 20; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("classification not deterministic: %s then %s", first, got)
		}
	}
	if first != Fear {
		t.Fatalf("expected fear, got %s", first)
	}
}

func TestToneForCoversAllLabels(t *testing.T) {
	for _, label := range Labels() {
		if ToneFor(label) == "" {
			t.Fatalf("missing tone for label %s", label)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("Joy") {
		t.Fatal("expected Joy to be valid")
	}
	if Valid("confused") {
		t.Fatal("expected confused to be invalid")
	}
}
