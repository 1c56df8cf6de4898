// Package stats reduces normalized journal entries into render-ready mood
// statistics: streaks and emotion distributions.
package stats

import "time"

const dayLayout = "2006-01-02"

// Streak computes the number of consecutive calendar days, counting backward
// from "today", with at least one entry. Dates are bucketed by wall-clock day
// in loc (the viewer's timezone, passed explicitly so the function stays
// portable and testable); loc == nil falls back to time.Local.
//
// A streak is broken when today has no entry: yesterday's run does not count
// on its own. Zero timestamps are dropped silently. Multiple entries on the
// same day count once.
func Streak(times []time.Time, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	days := make(map[string]struct{}, len(times))
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		days[t.In(loc).Format(dayLayout)] = struct{}{}
	}
	if len(days) == 0 {
		return 0
	}

	cur := now.In(loc)
	if _, ok := days[cur.Format(dayLayout)]; !ok {
		return 0
	}
	streak := 1
	for {
		cur = cur.AddDate(0, 0, -1)
		if _, ok := days[cur.Format(dayLayout)]; !ok {
			return streak
		}
		streak++
	}
}

// ParseDay parses a YYYY-MM-DD trend date in loc. Malformed values report
// ok=false so callers can drop them without aborting the whole calculation.
func ParseDay(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
