// Package testutil provides shared test helpers, most notably a stub of the
// analysis service for exercising the full HTTP stack without a real backend.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// StubEntry is one entry stored by the analysis stub.
type StubEntry struct {
	ID              int             `json:"id"`
	Content         string          `json:"content"`
	Emotion         string          `json:"emotion"`
	EmotionMetadata json.RawMessage `json:"emotion_metadata,omitempty"`
	EmotionScores   json.RawMessage `json:"emotion_scores,omitempty"`
	Reflection      string          `json:"reflection,omitempty"`
	CreatedAt       string          `json:"created_at"`
	IsVoice         bool            `json:"is_voice"`
}

// AnalysisStub fakes the analysis service contract: entry creation with
// classification, history, pre-aggregated mood stats, ad-hoc classification,
// speech-to-text and provider switching. SetDown makes every endpoint
// answer like an unreachable backend.
type AnalysisStub struct {
	mu       sync.Mutex
	entries  []StubEntry
	nextID   int
	provider string

	down bool
}

// SetDown toggles outage mode: every endpoint fails with a 503 and a
// detail body until it is cleared.
func (s *AnalysisStub) SetDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

// StartAnalysisServer runs an AnalysisStub on an httptest server that is
// shut down with the test.
func StartAnalysisServer(t *testing.T) (*AnalysisStub, *httptest.Server) {
	t.Helper()
	stub := &AnalysisStub{nextID: 1, provider: "gemini"}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return stub, srv
}

// Seed stores an entry directly, bypassing classification.
func (s *AnalysisStub) Seed(e StubEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.nextID
	}
	if e.ID >= s.nextID {
		s.nextID = e.ID + 1
	}
	s.entries = append([]StubEntry{e}, s.entries...)
}

// Entries returns a copy of the stored entries, newest first.
func (s *AnalysisStub) Entries() []StubEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StubEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Provider returns the currently selected backend.
func (s *AnalysisStub) Provider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

func (s *AnalysisStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	down := s.down
	s.mu.Unlock()
	if down {
		writeDetail(w, http.StatusServiceUnavailable, "analysis service unavailable")
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/journal/create":
		s.handleCreate(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/journal/history":
		s.handleHistory(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/journal/"):
		s.handleGet(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/mood/stats":
		s.handleStats(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/analysis/emotion-v2":
		s.handleClassify(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/analysis/speech-to-text":
		s.handleTranscribe(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/settings/provider":
		s.handleProviderGet(w)
	case r.Method == http.MethodPost && r.URL.Path == "/settings/provider":
		s.handleProviderSet(w, r)
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

// classifyText is a tiny keyword classifier so tests can steer the emotion
// by choice of words.
func classifyText(text string) (string, json.RawMessage) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "confus"):
		return "confusion", structuredMeta(0.7, map[string]float64{"confusion": 0.7, "anxiety": 0.4})
	case strings.Contains(lower, "torn"):
		return "joy", structuredMeta(0.6, map[string]float64{"joy": 0.6, "sadness": 0.5})
	case strings.Contains(lower, "sad"), strings.Contains(lower, "miss"):
		return "sadness", structuredMeta(0.84, map[string]float64{"sadness": 0.84})
	case strings.Contains(lower, "happy"), strings.Contains(lower, "great"):
		return "joy", structuredMeta(0.91, map[string]float64{"joy": 0.91})
	default:
		return "neutral", structuredMeta(0.5, map[string]float64{"neutral": 0.5})
	}
}

func structuredMeta(confidence float64, scores map[string]float64) json.RawMessage {
	type scored struct {
		Emotion    string  `json:"emotion"`
		Confidence float64 `json:"confidence"`
	}
	significant := make([]scored, 0, len(scores))
	hasConfusion := false
	for label, c := range scores {
		if c > 0.3 {
			significant = append(significant, scored{Emotion: label, Confidence: c})
		}
		if label == "confusion" && c > 0.3 {
			hasConfusion = true
		}
	}
	state := "clear"
	if hasConfusion {
		state = "confused"
	} else if len(significant) >= 2 {
		state = "mixed"
	}
	b, _ := json.Marshal(map[string]any{
		"confidence":           confidence,
		"all_scores":           scores,
		"significant_emotions": significant,
		"is_mixed":             len(significant) >= 2,
		"has_confusion":        hasConfusion,
		"emotional_state":      state,
	})
	return b
}

func (s *AnalysisStub) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		IsVoice bool   `json:"is_voice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "content is required")
		return
	}

	emotionLabel, meta := classifyText(req.Content)
	s.mu.Lock()
	entry := StubEntry{
		ID:              s.nextID,
		Content:         req.Content,
		Emotion:         emotionLabel,
		EmotionMetadata: meta,
		Reflection:      "It sounds like today carried some " + emotionLabel + ".",
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		IsVoice:         req.IsVoice,
	}
	s.nextID++
	s.entries = append([]StubEntry{entry}, s.entries...)
	s.mu.Unlock()

	writeAnyJSON(w, http.StatusOK, entry)
}

func (s *AnalysisStub) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries := s.Entries()
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	writeAnyJSON(w, http.StatusOK, entries)
}

func (s *AnalysisStub) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/journal/"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	for _, e := range s.Entries() {
		if e.ID == id {
			writeAnyJSON(w, http.StatusOK, e)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Journal entry not found")
}

func (s *AnalysisStub) handleStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}
	entries := s.Entries()
	dist := make(map[string]int)
	trend := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		dist[e.Emotion]++
		if ts, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
			trend = append(trend, map[string]any{
				"date":       ts.Format("2006-01-02"),
				"emotion":    e.Emotion,
				"confidence": nil,
			})
		}
	}
	writeAnyJSON(w, http.StatusOK, map[string]any{
		"total_entries":        len(entries),
		"emotion_distribution": dist,
		"weekly_trend":         trend,
	})
}

func (s *AnalysisStub) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "text is required")
		return
	}
	emotionLabel, meta := classifyText(req.Text)

	var body map[string]any
	_ = json.Unmarshal(meta, &body)
	body["emotion"] = emotionLabel
	writeAnyJSON(w, http.StatusOK, body)
}

func (s *AnalysisStub) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if _, _, err := r.FormFile("audio"); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "audio file is required")
		return
	}
	writeAnyJSON(w, http.StatusOK, map[string]string{"text": "transcribed words"})
}

func (s *AnalysisStub) handleProviderGet(w http.ResponseWriter) {
	s.mu.Lock()
	current := s.provider
	s.mu.Unlock()
	writeAnyJSON(w, http.StatusOK, map[string]any{
		"current_provider":    current,
		"available_providers": []string{"gemini", "openai"},
		"message":             "",
	})
}

func (s *AnalysisStub) handleProviderSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "provider is required")
		return
	}
	if req.Provider != "gemini" && req.Provider != "openai" {
		writeDetail(w, http.StatusBadRequest, "unknown provider: "+req.Provider)
		return
	}
	s.mu.Lock()
	s.provider = req.Provider
	s.mu.Unlock()
	writeAnyJSON(w, http.StatusOK, map[string]any{
		"current_provider":    req.Provider,
		"available_providers": []string{"gemini", "openai"},
		"message":             fmt.Sprintf("switched to %s", req.Provider),
	})
}

func writeAnyJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeAnyJSON(w, status, map[string]string{"detail": detail})
}
