package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/bytebender77/MindMate/internal/emotion"
)

// positiveLabels is the fixed set counted toward the positive ratio. Every
// other label, including "confusion" and "mixed", is neutral or negative for
// this computation.
var positiveLabels = map[string]struct{}{
	"joy":        {},
	"surprise":   {},
	"love":       {},
	"happiness":  {},
	"excitement": {},
}

// EmotionStat is one label's share of a window.
type EmotionStat struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
	// Percentage is computed against total entries in the window, not the
	// sum of per-emotion counts: multi-label inputs may legitimately sum
	// past 100.
	Percentage int `json:"percentage"`
}

// Result is the render-ready distribution for one mood window.
type Result struct {
	TotalEntries  int           `json:"total_entries"`
	Stats         []EmotionStat `json:"stats"`
	MostCommon    string        `json:"most_common_emotion"`
	PositiveRatio int           `json:"positive_ratio"`
	Streak        int           `json:"streak"`
}

// FromLabels aggregates the primary emotion labels of a window's entries.
// Entries without a label were filtered at ingestion; an empty label here is
// skipped rather than failing the computation.
func FromLabels(labels []string) Result {
	counts := make(map[string]int, len(labels))
	total := 0
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		counts[l]++
		total++
	}
	return FromCounts(counts, total)
}

// FromCounts aggregates a pre-aggregated label-to-count mapping against the
// window's total entry count. Calling it twice with the same input yields the
// same Result; there is no hidden accumulation state.
func FromCounts(counts map[string]int, total int) Result {
	r := Result{
		TotalEntries: total,
		Stats:        []EmotionStat{},
		MostCommon:   emotion.LabelNeutral,
	}
	if total <= 0 {
		return r
	}

	for label, count := range counts {
		if label == "" || count <= 0 {
			continue
		}
		r.Stats = append(r.Stats, EmotionStat{
			Emotion:    label,
			Count:      count,
			Percentage: percent(count, total),
		})
	}

	// Descending by count; ties broken by taxonomy declaration order, then
	// lexically for labels outside the taxonomy. Never random.
	sort.SliceStable(r.Stats, func(i, j int) bool {
		a, b := r.Stats[i], r.Stats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if emotion.Rank(a.Emotion) != emotion.Rank(b.Emotion) {
			return emotion.Rank(a.Emotion) < emotion.Rank(b.Emotion)
		}
		return a.Emotion < b.Emotion
	})

	if len(r.Stats) > 0 {
		r.MostCommon = r.Stats[0].Emotion
	}

	positive := 0
	for label, count := range counts {
		if _, ok := positiveLabels[strings.ToLower(label)]; ok && count > 0 {
			positive += count
		}
	}
	r.PositiveRatio = percent(positive, total)
	return r
}

func percent(count, total int) int {
	return int(math.Round(float64(count) / float64(total) * 100))
}
