package journal

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bytebender77/MindMate/internal/apperr"
	"github.com/bytebender77/MindMate/internal/remote"
)

type fakeClient struct {
	createFn func(ctx context.Context, content string, isVoice bool) (*remote.EntryPayload, error)
	listFn   func(ctx context.Context, limit int) ([]remote.EntryPayload, error)
	getFn    func(ctx context.Context, id string) (*remote.EntryPayload, error)
	statsFn  func(ctx context.Context, days int) (*remote.MoodStats, error)
}

func (f *fakeClient) CreateEntry(ctx context.Context, content string, isVoice bool) (*remote.EntryPayload, error) {
	return f.createFn(ctx, content, isVoice)
}

func (f *fakeClient) ListEntries(ctx context.Context, limit int) ([]remote.EntryPayload, error) {
	return f.listFn(ctx, limit)
}

func (f *fakeClient) GetEntry(ctx context.Context, id string) (*remote.EntryPayload, error) {
	return f.getFn(ctx, id)
}

func (f *fakeClient) MoodStats(ctx context.Context, days int) (*remote.MoodStats, error) {
	return f.statsFn(ctx, days)
}

func testService(t *testing.T, client *fakeClient) *Service {
	t.Helper()
	svc := NewService(client, nil, "tester", time.UTC)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func payload(id, content, label, createdAt string) remote.EntryPayload {
	return remote.EntryPayload{
		ID:            json.Number(id),
		Content:       content,
		Emotion:       label,
		EmotionScores: json.RawMessage(`{"` + label + `":0.8}`),
		Reflection:    "noted",
		CreatedAt:     createdAt,
	}
}

func TestService_CreateRejectsEmptyContent(t *testing.T) {
	called := false
	svc := testService(t, &fakeClient{
		createFn: func(context.Context, string, bool) (*remote.EntryPayload, error) {
			called = true
			return nil, nil
		},
	})

	_, err := svc.Create(context.Background(), "   ", false)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatal("remote must not be called for invalid content")
	}
}

func TestService_CreateRejectsOversizedContent(t *testing.T) {
	svc := testService(t, &fakeClient{})

	_, err := svc.Create(context.Background(), strings.Repeat("a", MaxContentLength+1), false)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_CreateNormalizesAndCaches(t *testing.T) {
	p := payload("1", "long day", "sadness", "2024-06-10T09:30:00")
	p.Reflection = ""
	svc := testService(t, &fakeClient{
		createFn: func(_ context.Context, content string, _ bool) (*remote.EntryPayload, error) {
			if content != "long day" {
				t.Fatalf("unexpected content %q", content)
			}
			return &p, nil
		},
	})

	entry, err := svc.Create(context.Background(), "long day", false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Metadata == nil || len(entry.Metadata.Significant) != 1 {
		t.Fatalf("expected normalized metadata, got %+v", entry.Metadata)
	}
	if entry.Metadata.Significant[0].Label != "sadness" {
		t.Fatalf("unexpected significant label %q", entry.Metadata.Significant[0].Label)
	}
	if entry.Reflection != fallbackReflection {
		t.Fatalf("expected fallback reflection, got %q", entry.Reflection)
	}
	if entry.AuthorID != "tester" {
		t.Fatalf("expected session author, got %q", entry.AuthorID)
	}
	if got := svc.Cached(); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected entry cached, got %+v", got)
	}
}

func TestService_DeleteLocalIsNotPersisted(t *testing.T) {
	history := []remote.EntryPayload{
		payload("1", "one", "joy", "2024-06-10T08:00:00"),
		payload("2", "two", "anger", "2024-06-09T08:00:00"),
	}
	svc := testService(t, &fakeClient{
		listFn: func(context.Context, int) ([]remote.EntryPayload, error) {
			return history, nil
		},
	})

	if svc.PersistsMutations() {
		t.Fatal("mutations must be session-local")
	}
	if _, err := svc.List(context.Background(), 50); err != nil {
		t.Fatalf("List: %v", err)
	}

	remaining, err := svc.DeleteLocal("1")
	if err != nil {
		t.Fatalf("DeleteLocal: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "2" {
		t.Fatalf("expected entry 2 to remain, got %+v", remaining)
	}

	// The remote still has the entry, so a refresh brings it back.
	refreshed, err := svc.List(context.Background(), 50)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refreshed) != 2 {
		t.Fatalf("expected deleted entry to resurface, got %+v", refreshed)
	}
}

func TestService_DeleteLocalUnknownID(t *testing.T) {
	svc := testService(t, &fakeClient{})
	if _, err := svc.DeleteLocal("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_UpdateLocalPatchesCache(t *testing.T) {
	svc := testService(t, &fakeClient{
		listFn: func(context.Context, int) ([]remote.EntryPayload, error) {
			return []remote.EntryPayload{payload("1", "draft", "joy", "2024-06-10T08:00:00")}, nil
		},
	})
	if _, err := svc.List(context.Background(), 10); err != nil {
		t.Fatalf("List: %v", err)
	}

	content := "edited"
	updated, err := svc.UpdateLocal("1", Patch{Content: &content})
	if err != nil {
		t.Fatalf("UpdateLocal: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("unexpected content %q", updated.Content)
	}
	if updated.Reflection != "noted" {
		t.Fatalf("reflection must be untouched, got %q", updated.Reflection)
	}

	got, err := svc.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content != "edited" {
		t.Fatal("patch must be visible through Get")
	}
}

func TestService_GetFallsBackToRemote(t *testing.T) {
	svc := testService(t, &fakeClient{
		getFn: func(_ context.Context, id string) (*remote.EntryPayload, error) {
			if id != "7" {
				return nil, apperr.ErrNotFound
			}
			p := payload("7", "remote only", "fear", "2024-06-08T10:00:00")
			return &p, nil
		},
	})

	entry, err := svc.Get(context.Background(), "7")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Emotion != "fear" || entry.Metadata == nil {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if _, err := svc.Get(context.Background(), "8"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_MoodStatsUsesRemoteCounts(t *testing.T) {
	svc := testService(t, &fakeClient{
		statsFn: func(_ context.Context, days int) (*remote.MoodStats, error) {
			if days != 7 {
				t.Fatalf("unexpected window %d", days)
			}
			return &remote.MoodStats{
				TotalEntries: 10,
				Distribution: map[string]int{"joy": 6, "sadness": 4},
				WeeklyTrend: trendPoints("2024-06-10", "2024-06-09"),
			}, nil
		},
	})

	res, err := svc.MoodStats(context.Background(), 0)
	if err != nil {
		t.Fatalf("MoodStats: %v", err)
	}
	if res.Stale {
		t.Fatal("remote-backed result must not be stale")
	}
	if res.MostCommon != "joy" || res.TotalEntries != 10 {
		t.Fatalf("unexpected result %+v", res.Result)
	}
	if res.Streak != 2 {
		t.Fatalf("expected streak 2 from trend dates, got %d", res.Streak)
	}
}

func trendPoints(dates ...string) []remote.TrendPoint {
	out := make([]remote.TrendPoint, 0, len(dates))
	for _, d := range dates {
		out = append(out, remote.TrendPoint{Date: d, Emotion: "joy"})
	}
	return out
}

func TestService_MoodStatsDegradesToCache(t *testing.T) {
	svc := testService(t, &fakeClient{
		listFn: func(context.Context, int) ([]remote.EntryPayload, error) {
			return []remote.EntryPayload{
				payload("1", "one", "joy", "2024-06-10T08:00:00"),
				payload("2", "two", "joy", "2024-06-09T08:00:00"),
				payload("3", "old", "anger", "2024-01-01T08:00:00"),
			}, nil
		},
		statsFn: func(context.Context, int) (*remote.MoodStats, error) {
			return nil, apperr.Remote("", errors.New("dial tcp: connection refused"))
		},
	})
	if _, err := svc.List(context.Background(), 50); err != nil {
		t.Fatalf("List: %v", err)
	}

	res, err := svc.MoodStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("MoodStats: %v", err)
	}
	if !res.Stale {
		t.Fatal("cache-derived result must be marked stale")
	}
	if res.TotalEntries != 2 || res.MostCommon != "joy" {
		t.Fatalf("out-of-window entry must be excluded, got %+v", res.Result)
	}
	if res.Streak != 2 {
		t.Fatalf("expected streak 2, got %d", res.Streak)
	}
}

func TestService_MoodStatsFailsWithoutAnyData(t *testing.T) {
	svc := testService(t, &fakeClient{
		statsFn: func(context.Context, int) (*remote.MoodStats, error) {
			return nil, apperr.Remote("stats unavailable", errors.New("status 502"))
		},
	})

	_, err := svc.MoodStats(context.Background(), 7)
	if !errors.Is(err, apperr.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestParseCreatedAt_AcceptsNaiveTimestamps(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	got := parseCreatedAt("2024-06-10T09:30:00.123456", loc)
	if got.IsZero() {
		t.Fatal("naive timestamp must parse")
	}
	if got.Location() != loc {
		t.Fatalf("naive timestamp must be interpreted in the viewer zone, got %v", got.Location())
	}
	if !parseCreatedAt("not a time", loc).IsZero() {
		t.Fatal("malformed timestamp must yield the zero time")
	}
}
