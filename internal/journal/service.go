package journal

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/bytebender77/MindMate/internal/apperr"
	"github.com/bytebender77/MindMate/internal/emotion"
	"github.com/bytebender77/MindMate/internal/remote"
	"github.com/bytebender77/MindMate/internal/snapshot"
	"github.com/bytebender77/MindMate/internal/stats"
)

// fallbackReflection is shown when the service returns an entry without one.
const fallbackReflection = "Thank you for sharing. Taking time to reflect on your feelings is a meaningful step."

// AnalysisClient is the slice of the remote client the service depends on.
type AnalysisClient interface {
	CreateEntry(ctx context.Context, content string, isVoice bool) (*remote.EntryPayload, error)
	ListEntries(ctx context.Context, limit int) ([]remote.EntryPayload, error)
	GetEntry(ctx context.Context, id string) (*remote.EntryPayload, error)
	MoodStats(ctx context.Context, days int) (*remote.MoodStats, error)
}

// Patch describes a local edit. Nil fields are left untouched.
type Patch struct {
	Content    *string `json:"content,omitempty"`
	Reflection *string `json:"reflection,omitempty"`
}

// MoodResult is a mood statistics answer. Stale is set when the remote was
// unreachable and the numbers were derived from the local session cache.
type MoodResult struct {
	stats.Result
	Trend []remote.TrendPoint `json:"weekly_trend,omitempty"`
	Stale bool                `json:"stale,omitempty"`
}

// Service is the entry repository. The remote service is the source of
// truth for entries; the service keeps a session cache that local delete
// and patch operations act on, and mirrors it into a snapshot store so the
// last known history survives the remote being down.
type Service struct {
	client   AnalysisClient
	snap     *snapshot.Store
	authorID string
	loc      *time.Location
	now      func() time.Time

	mu    sync.RWMutex
	cache []Entry
}

// NewService builds a Service. snap may be nil to disable the offline
// snapshot. An empty authorID gets a generated session identity.
func NewService(client AnalysisClient, snap *snapshot.Store, authorID string, loc *time.Location) *Service {
	if authorID == "" {
		authorID = uuid.NewString()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		client:   client,
		snap:     snap,
		authorID: authorID,
		loc:      loc,
		now:      time.Now,
	}
}

// AuthorID reports the session identity entries are attributed to.
func (s *Service) AuthorID() string { return s.authorID }

// PersistsMutations reports whether delete and patch operations reach the
// backing store. They do not: mutations are session-local and the remote
// history resurfaces deleted entries on the next refresh.
func (s *Service) PersistsMutations() bool { return false }

func validateContent(content string) error {
	err := validation.Validate(strings.TrimSpace(content),
		validation.Required.Error("journal entry cannot be empty"),
		validation.RuneLength(0, MaxContentLength).Error("journal entry is too long"),
	)
	if err != nil {
		return apperr.Invalid(err.Error())
	}
	return nil
}

// Create validates content, submits it for analysis and prepends the
// resulting entry to the session cache.
func (s *Service) Create(ctx context.Context, content string, isVoice bool) (Entry, error) {
	if err := validateContent(content); err != nil {
		return Entry{}, err
	}
	payload, err := s.client.CreateEntry(ctx, content, isVoice)
	if err != nil {
		return Entry{}, err
	}
	entry := fromPayload(*payload, s.authorID, s.loc)
	if entry.Reflection == "" {
		entry.Reflection = fallbackReflection
	}

	s.mu.Lock()
	s.cache = append([]Entry{entry}, s.cache...)
	s.mu.Unlock()

	s.saveSnapshot(entry)
	return entry, nil
}

// List fetches the entry history from the remote, replaces the session
// cache with it and mirrors it into the snapshot store. The last completed
// fetch wins.
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	payloads, err := s.client.ListEntries(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(payloads))
	for _, p := range payloads {
		entries = append(entries, fromPayload(p, s.authorID, s.loc))
	}

	s.mu.Lock()
	s.cache = entries
	s.mu.Unlock()

	s.replaceSnapshot(entries)
	return s.Cached(), nil
}

// ListOffline loads the last known history from the snapshot store into the
// session cache. It is the fallback when the remote is unreachable.
func (s *Service) ListOffline(limit int) ([]Entry, error) {
	if s.snap == nil {
		return nil, apperr.ErrNotFound
	}
	rows, err := s.snap.List(limit)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, fromRow(r))
	}

	s.mu.Lock()
	s.cache = entries
	s.mu.Unlock()

	return s.Cached(), nil
}

// Get returns one entry, preferring the session cache so that local patches
// stay visible, and falling back to the remote.
func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	s.mu.RLock()
	for _, e := range s.cache {
		if e.ID == id {
			s.mu.RUnlock()
			return e, nil
		}
	}
	s.mu.RUnlock()

	payload, err := s.client.GetEntry(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return fromPayload(*payload, s.authorID, s.loc), nil
}

// DeleteLocal removes an entry from the session cache and snapshot only.
// The remote keeps it, so a later List brings it back.
func (s *Service) DeleteLocal(id string) ([]Entry, error) {
	s.mu.Lock()
	idx := -1
	for i, e := range s.cache {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, apperr.ErrNotFound
	}
	s.cache = append(s.cache[:idx], s.cache[idx+1:]...)
	s.mu.Unlock()

	if s.snap != nil {
		if err := s.snap.Delete(id); err != nil {
			slog.Warn("journal: snapshot delete failed", "error", err)
		}
	}
	return s.Cached(), nil
}

// UpdateLocal applies a patch to a cached entry. Like DeleteLocal it never
// reaches the remote.
func (s *Service) UpdateLocal(id string, patch Patch) (Entry, error) {
	if patch.Content != nil {
		if err := validateContent(*patch.Content); err != nil {
			return Entry{}, err
		}
	}

	s.mu.Lock()
	idx := -1
	for i, e := range s.cache {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return Entry{}, apperr.ErrNotFound
	}
	if patch.Content != nil {
		s.cache[idx].Content = *patch.Content
	}
	if patch.Reflection != nil {
		s.cache[idx].Reflection = *patch.Reflection
	}
	updated := s.cache[idx]
	s.mu.Unlock()

	s.saveSnapshot(updated)
	return updated, nil
}

// Cached returns a copy of the session cache.
func (s *Service) Cached() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.cache))
	copy(out, s.cache)
	return out
}

// MoodStats derives mood statistics for the last days days. The remote
// supplies pre-aggregated counts and the weekly trend; the streak is always
// computed locally from trend dates in the viewer's timezone. When the
// remote is unreachable the result is derived from the session cache and
// marked stale, so a broken statistics endpoint never blocks journaling.
func (s *Service) MoodStats(ctx context.Context, days int) (*MoodResult, error) {
	if days <= 0 {
		days = 7
	}
	ms, err := s.client.MoodStats(ctx, days)
	if err == nil {
		res := stats.FromCounts(ms.Distribution, ms.TotalEntries)
		res.Streak = stats.Streak(s.trendTimes(ms.WeeklyTrend), s.now(), s.loc)
		return &MoodResult{Result: res, Trend: ms.WeeklyTrend}, nil
	}

	cached := s.Cached()
	if len(cached) == 0 {
		return nil, err
	}
	slog.Warn("journal: mood stats degraded to session cache", "error", err)

	window := s.now().AddDate(0, 0, -days)
	labels := make([]string, 0, len(cached))
	times := make([]time.Time, 0, len(cached))
	for _, e := range cached {
		if e.CreatedAt.IsZero() || e.CreatedAt.Before(window) {
			continue
		}
		labels = append(labels, e.Emotion)
		times = append(times, e.CreatedAt)
	}
	res := stats.FromLabels(labels)
	res.Streak = stats.Streak(times, s.now(), s.loc)
	return &MoodResult{Result: res, Stale: true}, nil
}

func (s *Service) trendTimes(trend []remote.TrendPoint) []time.Time {
	times := make([]time.Time, 0, len(trend))
	for _, p := range trend {
		if t, ok := stats.ParseDay(p.Date, s.loc); ok {
			times = append(times, t)
		}
	}
	return times
}

func (s *Service) saveSnapshot(e Entry) {
	if s.snap == nil {
		return
	}
	if err := s.snap.Upsert(toRow(e)); err != nil {
		slog.Warn("journal: snapshot upsert failed", "error", err)
	}
}

func (s *Service) replaceSnapshot(entries []Entry) {
	if s.snap == nil {
		return
	}
	rows := make([]snapshot.EntryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toRow(e))
	}
	if err := s.snap.Replace(rows); err != nil {
		slog.Warn("journal: snapshot replace failed", "error", err)
	}
}

func toRow(e Entry) snapshot.EntryRow {
	row := snapshot.EntryRow{
		ID:         e.ID,
		AuthorID:   e.AuthorID,
		Content:    e.Content,
		Emotion:    e.Emotion,
		Reflection: e.Reflection,
		CreatedAt:  e.CreatedAt,
		IsVoice:    e.IsVoice,
	}
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			row.Metadata = b
		}
	}
	if e.ReflectionMeta != nil {
		if b, err := json.Marshal(e.ReflectionMeta); err == nil {
			row.ReflectionMeta = b
		}
	}
	return row
}

func fromRow(r snapshot.EntryRow) Entry {
	return Entry{
		ID:             r.ID,
		AuthorID:       r.AuthorID,
		Content:        r.Content,
		Emotion:        r.Emotion,
		Metadata:       emotion.Normalize(r.Metadata, nil),
		Reflection:     r.Reflection,
		ReflectionMeta: parseReflectionMeta(r.ReflectionMeta),
		CreatedAt:      r.CreatedAt,
		IsVoice:        r.IsVoice,
	}
}
