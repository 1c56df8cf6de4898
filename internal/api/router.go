package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Entries CRUD.
	r.Get("/entries", h.ListEntries)
	r.Post("/entries", h.CreateEntry)
	r.Get("/entries/{id}", h.GetEntry)
	r.Patch("/entries/{id}", h.PatchEntry)
	r.Delete("/entries/{id}", h.DeleteEntry)

	// Mood statistics.
	r.Get("/mood/stats", h.MoodStats)

	// Ad-hoc analysis.
	r.Post("/classify", h.Classify)
	r.Post("/transcribe", h.Transcribe)

	// Provider settings.
	r.Get("/settings/provider", h.GetProvider)
	r.Put("/settings/provider", h.SetProvider)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
