package emotion

import "strings"

// RenderState is the terminal render state for one entry's classification.
type RenderState string

// Render states, in precedence order.
const (
	RenderConfused RenderState = "confused"
	RenderMixed    RenderState = "mixed"
	RenderSingle   RenderState = "single"
)

// Presentation is the render-ready classification of one entry. It is a pure
// function of the metadata snapshot; nothing is retained between renders.
type Presentation struct {
	State RenderState `json:"state"`
	// Headline is the main badge text.
	Headline string      `json:"headline"`
	Config   LabelConfig `json:"config"`
	// Annotation carries the primary emotion when confusion is the headline
	// state but not the primary label.
	Annotation string `json:"annotation,omitempty"`
	// Breakdown lists the secondary emotions to surface beneath the badge.
	Breakdown []Score `json:"breakdown,omitempty"`
}

// Present decides how one entry's classification is rendered. Confusion takes
// precedence over mixed; mixed requires more than one significant emotion in
// addition to the is_mixed flag; everything else renders the primary label,
// falling back to a neutral configuration for unknown labels.
func Present(primary string, meta *Metadata) Presentation {
	if meta != nil {
		if meta.HasConfusion {
			return presentConfused(primary, meta)
		}
		if meta.IsMixed && len(meta.Significant) > 1 {
			return presentMixed(meta)
		}
	}
	cfg := Config(primary)
	return Presentation{
		State:    RenderSingle,
		Headline: cfg.Label,
		Config:   cfg,
	}
}

func presentConfused(primary string, meta *Metadata) Presentation {
	p := Presentation{
		State:    RenderConfused,
		Headline: "Feeling Confused",
		Config:   Config(LabelConfusion),
	}
	if primary != "" && !strings.EqualFold(primary, LabelConfusion) {
		p.Annotation = primary
	}
	// Up to 2 other significant emotions beneath the headline.
	if len(meta.Significant) > 1 {
		p.Breakdown = capScores(meta.Significant[1:], 2)
	}
	return p
}

func presentMixed(meta *Metadata) Presentation {
	cfg := Config(LabelMixed)
	return Presentation{
		State:     RenderMixed,
		Headline:  cfg.Label,
		Config:    cfg,
		Breakdown: capScores(meta.Significant, 3),
	}
}

func capScores(s []Score, n int) []Score {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]Score, len(s))
	copy(out, s)
	return out
}
