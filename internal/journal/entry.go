// Package journal implements the entry repository adapter: it fronts the
// analysis service, applies metadata normalization to every entry that flows
// through it, and owns the in-memory session cache all derived statistics
// are computed from.
package journal

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bytebender77/MindMate/internal/emotion"
	"github.com/bytebender77/MindMate/internal/remote"
)

// MaxContentLength is the journal entry size limit in characters.
const MaxContentLength = 5000

// ReflectionMeta carries the generator's metadata for one reflection.
type ReflectionMeta struct {
	Suggestions []string `json:"suggestions,omitempty"`
	Tone        string   `json:"tone,omitempty"`
	Focus       string   `json:"focus,omitempty"`
}

// Entry is one journal entry with canonical emotion metadata. Entries are
// immutable once created; local patches only touch the session cache.
type Entry struct {
	ID             string            `json:"id"`
	AuthorID       string            `json:"author_id,omitempty"`
	Content        string            `json:"content"`
	Emotion        string            `json:"emotion"`
	Metadata       *emotion.Metadata `json:"emotion_metadata,omitempty"`
	Reflection     string            `json:"reflection,omitempty"`
	ReflectionMeta *ReflectionMeta   `json:"reflection_metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	IsVoice        bool              `json:"is_voice"`
}

// createdAtLayouts covers the timestamp renditions seen from the service:
// RFC 3339 and Python-style naive ISO timestamps.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseCreatedAt parses a wire timestamp, interpreting naive forms in loc.
// Malformed values yield the zero time and are dropped from date logic
// downstream instead of failing the whole ingestion.
func parseCreatedAt(s string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseReflectionMeta decodes reflection metadata, accepting both the object
// and serialized-text forms. Malformed values are logged and dropped.
func parseReflectionMeta(raw json.RawMessage) *ReflectionMeta {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			slog.Warn("journal: malformed reflection metadata")
			return nil
		}
		return parseReflectionMeta(json.RawMessage(inner))
	}
	var m ReflectionMeta
	if err := json.Unmarshal(trimmed, &m); err != nil {
		slog.Warn("journal: malformed reflection metadata")
		return nil
	}
	return &m
}

// fromPayload converts one wire payload into a canonical Entry. This is the
// single ingestion point: every entry, whichever endpoint it came from,
// passes through the same normalization.
func fromPayload(p remote.EntryPayload, defaultAuthor string, loc *time.Location) Entry {
	author := p.UserID
	if author == "" {
		author = defaultAuthor
	}
	return Entry{
		ID:             p.ID.String(),
		AuthorID:       author,
		Content:        p.Content,
		Emotion:        p.Emotion,
		Metadata:       emotion.Normalize(p.EmotionMetadata, p.EmotionScores),
		Reflection:     p.Reflection,
		ReflectionMeta: parseReflectionMeta(p.ReflectionMetadata),
		CreatedAt:      parseCreatedAt(p.CreatedAt, loc),
		IsVoice:        p.IsVoice,
	}
}
