package emotion

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sort"
)

// wireMetadata is the structured payload shape emitted by the classifier.
// Booleans are pointers so an absent field can be told apart from an
// explicit false and derived locally.
type wireMetadata struct {
	Confidence   float64            `json:"confidence"`
	AllScores    map[string]float64 `json:"all_scores"`
	Significant  []Score            `json:"significant_emotions"`
	IsMixed      *bool              `json:"is_mixed"`
	HasConfusion *bool              `json:"has_confusion"`
	State        string             `json:"emotional_state"`
}

// Normalize reconciles the two historical payload shapes into one canonical
// Metadata. structured is the versioned metadata object (or its
// serialized-text form); legacy is the flat label-to-score map used by old
// records. structured wins when both are present.
//
// Returns nil when neither field carries emotion information: callers must
// treat nil as "unclassified", distinct from an empty classification.
// Never returns an error: malformed serialized input degrades to an empty
// but valid object and is logged as a data-quality warning.
func Normalize(structured, legacy json.RawMessage) *Metadata {
	if raw, ok := presentPayload(structured); ok {
		m, parsed := parsePayload(raw)
		if !parsed {
			slog.Warn("emotion: malformed structured metadata, using empty classification")
			return emptyMetadata()
		}
		return canonicalize(m)
	}
	if raw, ok := presentPayload(legacy); ok {
		m, parsed := parsePayload(raw)
		if !parsed {
			slog.Warn("emotion: malformed legacy score map, using empty classification")
			return emptyMetadata()
		}
		return canonicalize(m)
	}
	return nil
}

// presentPayload reports whether raw carries a value worth parsing.
func presentPayload(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, false
	}
	return trimmed, true
}

// parsePayload decodes one payload of unknown shape. It accepts the
// structured object, the flat score map, and the serialized-text form of
// either (JSON embedded in a JSON string).
func parsePayload(raw json.RawMessage) (*wireMetadata, bool) {
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, false
		}
		return parsePayload(json.RawMessage(inner))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}

	if hasStructuredKeys(fields) {
		var w wireMetadata
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, false
		}
		return &w, true
	}

	// Legacy flat map: every value must be a plain score.
	var scores map[string]float64
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, false
	}
	return &wireMetadata{AllScores: scores}, true
}

func hasStructuredKeys(fields map[string]json.RawMessage) bool {
	for _, key := range []string{"all_scores", "significant_emotions", "is_mixed", "has_confusion", "emotional_state"} {
		if _, ok := fields[key]; ok {
			return true
		}
	}
	return false
}

// canonicalize fills derived fields without disturbing anything the payload
// stated explicitly, so normalizing already-canonical metadata is a no-op.
func canonicalize(w *wireMetadata) *Metadata {
	m := &Metadata{
		Confidence:  w.Confidence,
		AllScores:   w.AllScores,
		Significant: w.Significant,
		State:       w.State,
	}
	if m.AllScores == nil {
		m.AllScores = map[string]float64{}
	}
	if m.Significant == nil {
		m.Significant = significantFromScores(m.AllScores)
	}
	sortSignificant(m.Significant)

	if w.IsMixed != nil {
		m.IsMixed = *w.IsMixed
	} else {
		m.IsMixed = len(m.Significant) >= 2
	}
	if w.HasConfusion != nil {
		m.HasConfusion = *w.HasConfusion
	} else {
		m.HasConfusion = m.HasSignificant(LabelConfusion)
	}
	if m.Confidence == 0 && len(m.Significant) > 0 {
		m.Confidence = m.Significant[0].Confidence
	}
	if m.State == "" {
		m.State = deriveState(m.IsMixed, m.HasConfusion)
	}
	return m
}

func significantFromScores(scores map[string]float64) []Score {
	out := []Score{}
	for label, score := range scores {
		if score > SignificanceThreshold {
			out = append(out, Score{Label: label, Confidence: score})
		}
	}
	return out
}

// sortSignificant orders descending by score, ties broken by taxonomy
// declaration order for determinism.
func sortSignificant(s []Score) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Confidence != s[j].Confidence {
			return s[i].Confidence > s[j].Confidence
		}
		return Rank(s[i].Label) < Rank(s[j].Label)
	})
}

func deriveState(isMixed, hasConfusion bool) string {
	switch {
	case hasConfusion && isMixed:
		return StateConfusedMixed
	case hasConfusion:
		return StateConfused
	case isMixed:
		return StateMixed
	default:
		return StateClear
	}
}

func emptyMetadata() *Metadata {
	return &Metadata{
		AllScores:   map[string]float64{},
		Significant: []Score{},
		State:       StateClear,
	}
}
