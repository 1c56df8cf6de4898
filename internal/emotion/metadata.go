package emotion

import "strings"

// SignificanceThreshold is the minimum score for an emotion to qualify as
// significant and appear in breakdowns.
const SignificanceThreshold = 0.3

// Emotional state descriptors for quick display routing.
const (
	StateClear         = "clear"
	StateMixed         = "mixed"
	StateConfused      = "confused"
	StateConfusedMixed = "confused_mixed"
)

// Score is one label with its confidence. The wire key for the label is
// "emotion", matching the classifier's significant_emotions entries.
type Score struct {
	Label      string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Metadata is the canonical emotion metadata shape all derivation logic
// operates on, regardless of source payload version.
//
// Invariants established by Normalize:
//   - AllScores and Significant are never nil.
//   - Significant is ordered descending by score, ties broken by taxonomy
//     declaration order.
//   - HasConfusion implies Significant contains a "confusion" entry.
type Metadata struct {
	Confidence   float64            `json:"confidence"`
	AllScores    map[string]float64 `json:"all_scores"`
	Significant  []Score            `json:"significant_emotions"`
	IsMixed      bool               `json:"is_mixed"`
	HasConfusion bool               `json:"has_confusion"`
	State        string             `json:"emotional_state"`
}

// HasSignificant reports whether label appears in the significant list.
func (m *Metadata) HasSignificant(label string) bool {
	for _, s := range m.Significant {
		if strings.EqualFold(s.Label, label) {
			return true
		}
	}
	return false
}
