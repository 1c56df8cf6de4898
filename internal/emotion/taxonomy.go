// Package emotion holds the canonical emotion metadata model, the payload
// normalizer, and the per-entry classification presenter.
package emotion

import "strings"

// Labels is the fixed 27-label taxonomy produced by the classifier, in
// declaration order. Declaration order is the deterministic tie-breaker for
// every ordered view derived from it.
var Labels = []string{
	"admiration", "amusement", "anger", "annoyance", "approval",
	"caring", "confusion", "curiosity", "desire", "disappointment",
	"disapproval", "disgust", "embarrassment", "excitement", "fear",
	"gratitude", "grief", "joy", "love", "nervousness", "optimism",
	"pride", "realization", "relief", "remorse", "sadness", "surprise",
}

// Pseudo-labels used outside the classifier taxonomy.
const (
	LabelNeutral   = "neutral"
	LabelMixed     = "mixed"
	LabelConfusion = "confusion"
)

var rank = func() map[string]int {
	m := make(map[string]int, len(Labels)+2)
	for i, l := range Labels {
		m[l] = i
	}
	m[LabelNeutral] = len(Labels)
	m[LabelMixed] = len(Labels) + 1
	return m
}()

// Rank returns the taxonomy declaration index of label, or a rank past the
// end of the taxonomy for unknown labels so they sort last.
func Rank(label string) int {
	if r, ok := rank[label]; ok {
		return r
	}
	return len(rank)
}

// Known reports whether label belongs to the taxonomy (pseudo-labels included).
func Known(label string) bool {
	_, ok := rank[label]
	return ok
}

// LabelConfig is the display configuration for one emotion label.
type LabelConfig struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var neutralConfig = LabelConfig{Label: "Neutral", Color: "#6b7280", Icon: "meh"}

var configs = map[string]LabelConfig{
	"admiration":     {Label: "Admiration", Color: "#8b5cf6", Icon: "thumbs-up"},
	"amusement":      {Label: "Amusement", Color: "#f59e0b", Icon: "smile"},
	"anger":          {Label: "Anger", Color: "#ef4444", Icon: "x-circle"},
	"annoyance":      {Label: "Annoyance", Color: "#f97316", Icon: "x-circle"},
	"approval":       {Label: "Approval", Color: "#3b82f6", Icon: "thumbs-up"},
	"caring":         {Label: "Caring", Color: "#ec4899", Icon: "heart"},
	"confusion":      {Label: "Confusion", Color: "#f97316", Icon: "help-circle"},
	"curiosity":      {Label: "Curiosity", Color: "#3b82f6", Icon: "help-circle"},
	"desire":         {Label: "Desire", Color: "#ec4899", Icon: "heart"},
	"disappointment": {Label: "Disappointment", Color: "#6b7280", Icon: "frown"},
	"disapproval":    {Label: "Disapproval", Color: "#ef4444", Icon: "x-circle"},
	"disgust":        {Label: "Disgust", Color: "#ef4444", Icon: "x-circle"},
	"embarrassment":  {Label: "Embarrassment", Color: "#ec4899", Icon: "frown"},
	"excitement":     {Label: "Excitement", Color: "#f59e0b", Icon: "zap"},
	"fear":           {Label: "Fear", Color: "#8b5cf6", Icon: "alert-circle"},
	"gratitude":      {Label: "Gratitude", Color: "#14b8a6", Icon: "heart"},
	"grief":          {Label: "Grief", Color: "#6b7280", Icon: "frown"},
	"joy":            {Label: "Joy", Color: "#10b981", Icon: "smile"},
	"love":           {Label: "Love", Color: "#ec4899", Icon: "heart"},
	"nervousness":    {Label: "Nervousness", Color: "#8b5cf6", Icon: "alert-circle"},
	"optimism":       {Label: "Optimism", Color: "#10b981", Icon: "trending-up"},
	"pride":          {Label: "Pride", Color: "#f97316", Icon: "trending-up"},
	"realization":    {Label: "Realization", Color: "#3b82f6", Icon: "zap"},
	"relief":         {Label: "Relief", Color: "#10b981", Icon: "smile"},
	"remorse":        {Label: "Remorse", Color: "#6b7280", Icon: "frown"},
	"sadness":        {Label: "Sadness", Color: "#3b82f6", Icon: "frown"},
	"surprise":       {Label: "Surprise", Color: "#f59e0b", Icon: "zap"},
	LabelNeutral:     neutralConfig,
	LabelMixed:       {Label: "Mixed Feelings", Color: "#8b5cf6", Icon: "help-circle"},
}

// Config returns the display configuration for label, falling back to the
// neutral configuration for labels outside the known taxonomy. Unrecognized
// labels must never break rendering.
func Config(label string) LabelConfig {
	if c, ok := configs[strings.ToLower(label)]; ok {
		return c
	}
	return neutralConfig
}
