package api

import (
	"github.com/bytebender77/MindMate/internal/emotion"
	"github.com/bytebender77/MindMate/internal/journal"
)

// CreateEntryRequest is the request body for creating a journal entry.
type CreateEntryRequest struct {
	Content string `json:"content" example:"Long day, but the walk home helped." validate:"required"`
	IsVoice bool   `json:"is_voice"`
}

// PatchEntryRequest is the request body for a session-local entry edit.
type PatchEntryRequest = journal.Patch

// ClassifyRequest is the request body for ad-hoc text classification.
type ClassifyRequest struct {
	Text string `json:"text" validate:"required"`
}

// EntryResponse is one entry plus its render-ready classification.
type EntryResponse struct {
	journal.Entry
	Display *emotion.Presentation `json:"display,omitempty"`
}

// EntryListResponse wraps entry history listings. Stale marks histories
// served from the offline snapshot instead of the analysis service.
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries" validate:"required"`
	Total   int             `json:"total" example:"42" validate:"required"`
	Stale   bool            `json:"stale,omitempty"`
}

// MutationResponse wraps delete and patch results. Persisted is always
// false: those operations only touch the session cache.
type MutationResponse struct {
	Persisted bool            `json:"persisted"`
	Entries   []EntryResponse `json:"entries,omitempty"`
	Entry     *EntryResponse  `json:"entry,omitempty"`
}

// ClassifyResponse is the ad-hoc classification answer.
type ClassifyResponse struct {
	Emotion  string                `json:"emotion" validate:"required"`
	Metadata *emotion.Metadata     `json:"emotion_metadata,omitempty"`
	Display  *emotion.Presentation `json:"display,omitempty"`
}

// TranscribeResponse is the speech-to-text answer.
type TranscribeResponse struct {
	Text string `json:"text" validate:"required"`
}

func toEntryResponse(e journal.Entry) EntryResponse {
	display := emotion.Present(e.Emotion, e.Metadata)
	return EntryResponse{Entry: e, Display: &display}
}

func toEntryResponses(entries []journal.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}
