package emotion

import "strings"

// Label is one of the fixed emotion tags attached to user messages.
type Label string

const (
	Neutral    Label = "neutral"
	Joy        Label = "joy"
	Sadness    Label = "sadness"
	Anger      Label = "anger"
	Fear       Label = "fear"
	Surprise   Label = "surprise"
	Love       Label = "love"
	Curiosity  Label = "curiosity"
	Excitement Label = "excitement"
)

// Labels enumerates every label the classifier can produce.
func Labels() []Label {
	return []Label{Neutral, Joy, Sadness, Anger, Fear, Surprise, Love, Curiosity, Excitement}
}

// Valid reports whether raw names a known label.
func Valid(raw string) bool {
	normalized := Label(strings.ToLower(strings.TrimSpace(raw)))
	for _, l := range Labels() {
		if l == normalized {
			return true
		}
	}
	return false
}

var keywordBuckets = map[Label][]string{
	Joy: {
		"happy", "glad", "joy", "great", "awesome", "wonderful", "amazing",
		"fantastic", "delighted", "thank you", "thanks", "haha", "lol", ":)",
	},
	Sadness: {
		"sad", "unhappy", "depressed", "cry", "lonely", "miss", "hurt",
		"upset", "heartbroken", "down", "terrible", "awful",
	},
	Anger: {
		"angry", "mad", "hate", "furious", "annoyed", "frustrated", "pissed",
		"fed up", "outraged", "irritated",
	},
	Fear: {
		"scared", "afraid", "anxious", "worried", "nervous", "terrified",
		"panic", "dread",
	},
	Surprise: {
		"wow", "omg", "surprised", "unexpected", "shocked", "amazed",
		"no way", "unbelievable",
	},
	Love: {
		"love", "adore", "in love", "crush", "cherish", "sweetheart",
		"i miss you", "fond of",
	},
	Curiosity: {
		"curious", "wonder", "what if", "how does", "why does", "interesting",
		"tell me more", "i'd like to know",
	},
	Excitement: {
		"excited", "can't wait", "thrilled", "pumped", "hyped", "stoked",
		"let's go", "so cool",
	},
}

// Classify maps free text to a single emotion label. Deterministic and
// stateless; defaults to neutral when nothing matches.
func Classify(text string) Label {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Neutral
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	// Exclamation marks push ambiguous messages toward the energetic labels.
	if exclamations := strings.Count(text, "!"); exclamations > 0 {
		scores[Excitement] += exclamations * 2
		if exclamations == 1 && scores[Joy] > 0 {
			scores[Joy] += 2
		}
	}

	best := Neutral
	bestScore := 0
	for _, label := range Labels() {
		if s := scores[label]; s > bestScore {
			best = label
			bestScore = s
		}
	}
	return best
}

var toneByLabel = map[Label]string{
	Joy:        "cheerful and enthusiastic",
	Sadness:    "empathetic and supportive",
	Anger:      "calm and understanding",
	Fear:       "reassuring and gentle",
	Surprise:   "excited and curious",
	Love:       "warm and affectionate",
	Curiosity:  "engaged and inquisitive",
	Excitement: "energetic and playful",
	Neutral:    "friendly and engaging",
}

// ToneFor returns the reply tone appropriate for a detected emotion.
func ToneFor(label Label) string {
	if tone, ok := toneByLabel[label]; ok {
		return tone
	}
	return "friendly"
}
