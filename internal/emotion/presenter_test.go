package emotion

import "testing"

func TestPresent_ConfusedBeatsMixed(t *testing.T) {
	meta := &Metadata{
		IsMixed:      true,
		HasConfusion: true,
		Significant: []Score{
			{Label: "sadness", Confidence: 0.5},
			{Label: "confusion", Confidence: 0.4},
			{Label: "fear", Confidence: 0.35},
			{Label: "grief", Confidence: 0.31},
		},
	}
	p := Present("sadness", meta)
	if p.State != RenderConfused {
		t.Fatalf("state = %q, want %q (confusion takes precedence over mixed)", p.State, RenderConfused)
	}
	if p.Annotation != "sadness" {
		t.Errorf("annotation = %q, want primary emotion", p.Annotation)
	}
	if len(p.Breakdown) != 2 {
		t.Errorf("breakdown = %v, want at most 2 other emotions", p.Breakdown)
	}
}

func TestPresent_ConfusionAsPrimaryHasNoAnnotation(t *testing.T) {
	meta := &Metadata{
		HasConfusion: true,
		Significant:  []Score{{Label: "confusion", Confidence: 0.7}},
	}
	p := Present("confusion", meta)
	if p.Annotation != "" {
		t.Errorf("annotation = %q, want empty when confusion is primary", p.Annotation)
	}
}

func TestPresent_MixedRequiresMultipleSignificant(t *testing.T) {
	// is_mixed without a second significant emotion falls through to Single;
	// the flag alone is not trusted.
	meta := &Metadata{
		IsMixed:     true,
		Significant: []Score{{Label: "joy", Confidence: 0.9}},
	}
	p := Present("joy", meta)
	if p.State != RenderSingle {
		t.Fatalf("state = %q, want %q", p.State, RenderSingle)
	}
	if p.Headline != "Joy" {
		t.Errorf("headline = %q, want Joy", p.Headline)
	}
}

func TestPresent_MixedBreakdownCapped(t *testing.T) {
	meta := &Metadata{
		IsMixed: true,
		Significant: []Score{
			{Label: "joy", Confidence: 0.5},
			{Label: "sadness", Confidence: 0.45},
			{Label: "fear", Confidence: 0.4},
			{Label: "anger", Confidence: 0.35},
		},
	}
	p := Present("joy", meta)
	if p.State != RenderMixed {
		t.Fatalf("state = %q, want %q", p.State, RenderMixed)
	}
	if len(p.Breakdown) != 3 {
		t.Errorf("breakdown length = %d, want 3", len(p.Breakdown))
	}
	if p.Headline != "Mixed Feelings" {
		t.Errorf("headline = %q", p.Headline)
	}
}

func TestPresent_UnknownLabelFallsBackToNeutral(t *testing.T) {
	p := Present("bamboozled", nil)
	if p.State != RenderSingle {
		t.Fatalf("state = %q, want %q", p.State, RenderSingle)
	}
	if p.Config.Label != "Neutral" {
		t.Errorf("config = %+v, want neutral fallback", p.Config)
	}
}

func TestPresent_NilMetadataRendersPrimary(t *testing.T) {
	p := Present("joy", nil)
	if p.State != RenderSingle || p.Headline != "Joy" {
		t.Errorf("presentation = %+v, want single Joy", p)
	}
}
