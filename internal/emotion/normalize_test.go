package emotion

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalize_BothFieldsAbsent(t *testing.T) {
	if m := Normalize(nil, nil); m != nil {
		t.Errorf("Normalize(nil, nil) = %+v, want nil (unclassified)", m)
	}
	if m := Normalize(json.RawMessage("null"), json.RawMessage(`""`)); m != nil {
		t.Errorf("null/empty payloads should normalize to nil, got %+v", m)
	}
}

func TestNormalize_LegacyFlatMap(t *testing.T) {
	m := Normalize(nil, json.RawMessage(`{"joy": 0.8, "sadness": 0.1}`))
	if m == nil {
		t.Fatal("Normalize returned nil for legacy flat map")
	}
	if m.AllScores["joy"] != 0.8 || m.AllScores["sadness"] != 0.1 {
		t.Errorf("all_scores = %v, want input map", m.AllScores)
	}
	want := []Score{{Label: "joy", Confidence: 0.8}}
	if !reflect.DeepEqual(m.Significant, want) {
		t.Errorf("significant = %v, want %v (threshold %v)", m.Significant, want, SignificanceThreshold)
	}
	if m.IsMixed {
		t.Error("is_mixed = true with one significant emotion")
	}
	if m.Confidence != 0.8 {
		t.Errorf("confidence = %v, want top significant score", m.Confidence)
	}
}

func TestNormalize_LegacySerializedText(t *testing.T) {
	m := Normalize(nil, json.RawMessage(`"{\"joy\": 0.9}"`))
	if m == nil {
		t.Fatal("serialized-text legacy map should parse")
	}
	if m.AllScores["joy"] != 0.9 {
		t.Errorf("all_scores = %v", m.AllScores)
	}
}

func TestNormalize_StructuredWinsOverLegacy(t *testing.T) {
	structured := json.RawMessage(`{"all_scores": {"grief": 0.7}, "significant_emotions": [{"emotion": "grief", "confidence": 0.7}], "is_mixed": false, "has_confusion": false, "emotional_state": "clear"}`)
	legacy := json.RawMessage(`{"joy": 0.9}`)
	m := Normalize(structured, legacy)
	if m == nil {
		t.Fatal("Normalize returned nil")
	}
	if _, ok := m.AllScores["joy"]; ok {
		t.Error("legacy map leaked into result when structured metadata was present")
	}
	if m.AllScores["grief"] != 0.7 {
		t.Errorf("all_scores = %v", m.AllScores)
	}
}

func TestNormalize_MalformedDegradesToEmpty(t *testing.T) {
	m := Normalize(json.RawMessage(`{"all_scores": "not a map"`), nil)
	if m == nil {
		t.Fatal("malformed payload must degrade to empty metadata, not nil")
	}
	if len(m.AllScores) != 0 || len(m.Significant) != 0 {
		t.Errorf("expected empty metadata, got %+v", m)
	}
	if m.State != StateClear {
		t.Errorf("state = %q, want %q", m.State, StateClear)
	}
}

func TestNormalize_DerivesFlagsAndState(t *testing.T) {
	legacy := json.RawMessage(`{"joy": 0.5, "sadness": 0.45, "fear": 0.1}`)
	m := Normalize(nil, legacy)
	if m == nil {
		t.Fatal("Normalize returned nil")
	}
	if len(m.Significant) != 2 {
		t.Fatalf("significant = %v, want 2 entries", m.Significant)
	}
	if m.Significant[0].Label != "joy" || m.Significant[1].Label != "sadness" {
		t.Errorf("significant order = %v, want descending by score", m.Significant)
	}
	if !m.IsMixed {
		t.Error("is_mixed = false with two significant emotions")
	}
	if m.State != StateMixed {
		t.Errorf("state = %q, want %q", m.State, StateMixed)
	}
}

func TestNormalize_ConfusionDerivedFromSignificant(t *testing.T) {
	legacy := json.RawMessage(`{"confusion": 0.6, "joy": 0.4}`)
	m := Normalize(nil, legacy)
	if m == nil {
		t.Fatal("Normalize returned nil")
	}
	if !m.HasConfusion {
		t.Error("has_confusion = false when confusion is significant")
	}
	if m.State != StateConfusedMixed {
		t.Errorf("state = %q, want %q", m.State, StateConfusedMixed)
	}
}

func TestNormalize_TieBrokenByTaxonomyOrder(t *testing.T) {
	legacy := json.RawMessage(`{"sadness": 0.5, "anger": 0.5}`)
	m := Normalize(nil, legacy)
	if m == nil {
		t.Fatal("Normalize returned nil")
	}
	// anger precedes sadness in taxonomy declaration order.
	if m.Significant[0].Label != "anger" {
		t.Errorf("tie order = %v, want anger first", m.Significant)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize(nil, json.RawMessage(`{"joy": 0.8, "confusion": 0.35}`))
	if first == nil {
		t.Fatal("Normalize returned nil")
	}
	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	second := Normalize(raw, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalizing canonical metadata changed it:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestNormalize_ExplicitFlagsPreserved(t *testing.T) {
	// The classifier may assert is_mixed=false even with several scores; an
	// explicit flag is never overridden.
	structured := json.RawMessage(`{"all_scores": {"joy": 0.5, "sadness": 0.4}, "is_mixed": false, "has_confusion": false}`)
	m := Normalize(structured, nil)
	if m == nil {
		t.Fatal("Normalize returned nil")
	}
	if m.IsMixed {
		t.Error("explicit is_mixed=false was overridden")
	}
}
