package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bytebender77/MindMate/internal/apperr"
	"github.com/bytebender77/MindMate/internal/emotion"
	"github.com/bytebender77/MindMate/internal/journal"
	"github.com/bytebender77/MindMate/internal/remote"
	"github.com/bytebender77/MindMate/internal/settings"
	"github.com/bytebender77/MindMate/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	journal      *journal.Service
	settings     *settings.Service
	remote       *remote.Client
	broker       *sse.Broker
	historyLimit int
}

// NewHandler creates a new Handler. broker may be nil to disable event
// publishing.
func NewHandler(jsvc *journal.Service, ssvc *settings.Service, client *remote.Client, broker *sse.Broker, historyLimit int) *Handler {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Handler{
		journal:      jsvc,
		settings:     ssvc,
		remote:       client,
		broker:       broker,
		historyLimit: historyLimit,
	}
}

// writeError maps a service error onto the wire taxonomy. Remote transport
// details never leak past the log line.
func writeError(w http.ResponseWriter, err error) {
	var remoteErr *apperr.RemoteError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.As(err, &remoteErr):
		writeJSON(w, http.StatusBadGateway, errorBody(remoteErr.Error()))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func (h *Handler) publish(kind, id string) {
	if h.broker != nil {
		h.broker.PublishEntryEvent(kind, id)
	}
}

// CreateEntry handles POST /api/entries.
//
//	@Summary		Create a journal entry and analyze it
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateEntryRequest	true	"Entry to create"
//	@Success		201		{object}	EntryResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	entry, err := h.journal.Create(r.Context(), req.Content, req.IsVoice)
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish("created", entry.ID)
	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List the entry history, falling back to the offline snapshot
//	@Tags			entries
//	@Produce		json
//	@Param			limit	query		int	false	"Max entries"
//	@Success		200		{object}	EntryListResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = h.historyLimit
	}

	entries, err := h.journal.List(r.Context(), limit)
	if err != nil {
		if !errors.Is(err, apperr.ErrRemote) {
			writeError(w, err)
			return
		}
		offline, offErr := h.journal.ListOffline(limit)
		if offErr != nil {
			writeError(w, err)
			return
		}
		slog.Warn("history served from offline snapshot", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, EntryListResponse{
			Entries: toEntryResponses(offline),
			Total:   len(offline),
			Stale:   true,
		})
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{
		Entries: toEntryResponses(entries),
		Total:   len(entries),
	})
}

// GetEntry handles GET /api/entries/{id}.
//
//	@Summary		Get a single entry
//	@Tags			entries
//	@Produce		json
//	@Param			id	path		string	true	"Entry ID"
//	@Success		200	{object}	EntryResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	entry, err := h.journal.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// DeleteEntry handles DELETE /api/entries/{id}. The delete is session-local:
// the response says so explicitly and returns the remaining entries.
//
//	@Summary		Remove an entry from the current session
//	@Tags			entries
//	@Produce		json
//	@Param			id	path		string	true	"Entry ID"
//	@Success		200	{object}	MutationResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [delete]
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	remaining, err := h.journal.DeleteLocal(id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish("deleted", id)
	writeJSON(w, http.StatusOK, MutationResponse{
		Persisted: h.journal.PersistsMutations(),
		Entries:   toEntryResponses(remaining),
	})
}

// PatchEntry handles PATCH /api/entries/{id}, a session-local edit.
//
//	@Summary		Patch an entry in the current session
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Entry ID"
//	@Param			body	body		PatchEntryRequest	true	"Fields to change"
//	@Success		200		{object}	MutationResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [patch]
func (h *Handler) PatchEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var patch journal.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	entry, err := h.journal.UpdateLocal(id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish("updated", id)
	resp := toEntryResponse(entry)
	writeJSON(w, http.StatusOK, MutationResponse{
		Persisted: h.journal.PersistsMutations(),
		Entry:     &resp,
	})
}

// MoodStats handles GET /api/mood/stats.
//
//	@Summary		Mood statistics for the recent window
//	@Tags			mood
//	@Produce		json
//	@Param			days	query		int	false	"Window size in days"
//	@Success		200		{object}	journal.MoodResult
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/mood/stats [get]
func (h *Handler) MoodStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	res, err := h.journal.MoodStats(r.Context(), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Classify handles POST /api/classify: ad-hoc text classification without
// creating an entry.
//
//	@Summary		Classify a piece of text
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClassifyRequest	true	"Text to classify"
//	@Success		200		{object}	ClassifyResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/classify [post]
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	cls, err := h.remote.Classify(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	meta := emotion.Normalize(cls.Raw, nil)
	display := emotion.Present(cls.Emotion, meta)
	writeJSON(w, http.StatusOK, ClassifyResponse{
		Emotion:  cls.Emotion,
		Metadata: meta,
		Display:  &display,
	})
}

// Transcribe handles POST /api/transcribe: multipart audio in, text out.
//
//	@Summary		Transcribe an audio recording
//	@Tags			analysis
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			audio	formData	file	true	"Audio recording"
//	@Success		200		{object}	TranscribeResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/transcribe [post]
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 25<<20)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("audio file is required"))
		return
	}
	defer file.Close()

	text, err := h.remote.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TranscribeResponse{Text: text})
}

// GetProvider handles GET /api/settings/provider.
//
//	@Summary		Show the active classification provider
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	remote.ProviderStatus
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/provider [get]
func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	status, err := h.settings.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// SetProvider handles PUT /api/settings/provider.
//
//	@Summary		Switch the classification provider
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object	true	"Provider selection"
//	@Success		200		{object}	remote.ProviderStatus
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/provider [put]
func (h *Handler) SetProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	status, err := h.settings.Switch(r.Context(), req.Provider)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
