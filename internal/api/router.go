package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/chroniclelens/internal/journal"
)

// NewRouter creates a chi router with all API routes mounted.
// stateStream, if non-nil, is mounted at GET /state/stream.
func NewRouter(store *journal.Store, stateStream http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()

	// Streams are long-lived and carry no request body.
	r.Get("/effects", h.Effects)
	if stateStream != nil {
		r.Get("/state/stream", stateStream.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(LimitBody(maxBodyBytes))

		// Entries.
		r.Get("/entries", h.ListEntries)
		r.Post("/entries", h.AddEntry)
		r.Delete("/entries", h.DeleteEntries)
		r.Post("/entries/drafts", h.CreateDraft)
		r.Post("/entries/delete-requests", h.RequestDelete)
		r.Get("/entries/{id}", h.GetEntry)
		r.Put("/entries/{id}", h.ReplaceEntry)
		r.Post("/entries/{id}/open", h.OpenEntry)

		// Selection.
		r.Post("/selection/{id}", h.ToggleSelection)
		r.Delete("/selection", h.ClearSelection)

		// View and home screen state.
		r.Put("/view", h.SetView)
		r.Post("/home/count", h.IncrementCount)
		r.Put("/home/mood", h.SetMood)
		r.Get("/state", h.GetState)

		// Navigation and notifications.
		r.Post("/navigation/back", h.Back)
		r.Post("/notifications", h.Notify)
	})

	return r
}
