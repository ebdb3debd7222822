package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/chroniclelens/internal/apperr"
	"github.com/starford/chroniclelens/internal/journal"
)

// Handler holds API route handlers.
type Handler struct {
	store *journal.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *journal.Store) *Handler {
	return &Handler{store: store}
}

// detached keeps request-scoped values but outlives the request, so an add
// started by a handler is not cancelled when the response is written.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List visible entries
//	@Tags			entries
//	@Produce		json
//	@Param			q		query		string	false	"Case-insensitive search over title, content and tags"
//	@Param			sort	query		string	false	"Sort order"	Enums(newest_first, oldest_first, alphabetical)
//	@Success		200		{object}	EntryListResponse
//	@Success		304		"Not modified"
//	@Failure		400		{object}	errResponse
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	q := r.URL.Query()

	query := st.Query
	if q.Has("q") {
		query = q.Get("q")
	}
	order := st.Sort
	if q.Has("sort") {
		parsed, err := journal.ParseSortOrder(q.Get("sort"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		order = parsed
	}

	entries := journal.Filter(st.Entries, query, order)
	writeJSONTagged(w, r, EntryListResponse{Entries: entries, Total: len(entries)})
}

// GetEntry handles GET /api/entries/{id}.
//
//	@Summary		Get a single entry by id
//	@Tags			entries
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	JournalEntry
//	@Failure		404	{object}	errResponse
//	@Router			/entries/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := h.store.GetByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// AddEntry handles POST /api/entries.
//
//	@Summary		Start a simulated add
//	@Tags			entries
//	@Produce		json
//	@Success		202	{object}	StatusResponse
//	@Failure		409	{object}	errResponse
//	@Router			/entries [post]
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	if !h.store.Add(detached(r)) {
		writeJSON(w, http.StatusConflict, errorBody(apperr.ErrBusy.Error()))
		return
	}
	writeJSON(w, http.StatusAccepted, accepted)
}

// CreateDraft handles POST /api/entries/drafts.
//
//	@Summary		Validate a draft and start adding it
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDraftRequest	true	"Draft to save"
//	@Success		202		{object}	StatusResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/entries/drafts [post]
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	if err := h.store.Create(detached(r), req); err != nil {
		h.writeWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, accepted)
}

// ReplaceEntry handles PUT /api/entries/{id}.
//
//	@Summary		Validate a draft and start replacing an entry with it
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Entry id"
//	@Param			body	body		CreateDraftRequest	true	"Replacement draft"
//	@Success		202		{object}	StatusResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/entries/{id} [put]
func (h *Handler) ReplaceEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	err := h.store.Replace(detached(r), chi.URLParam(r, "id"), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, accepted)
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
	default:
		h.writeWriteError(w, err)
	}
}

// writeWriteError maps a rejected create or replace to its response.
func (h *Handler) writeWriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errResponse{
			Error:  "validation failed",
			Fields: journal.FieldErrors(err),
		})
	case errors.Is(err, apperr.ErrBusy):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
	default:
		slog.Error("journal write failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// DeleteEntries handles DELETE /api/entries.
//
//	@Summary		Delete entries by id
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IDsRequest	true	"Ids to delete"
//	@Success		200		{object}	DeleteResponse
//	@Failure		400		{object}	errResponse
//	@Router			/entries [delete]
func (h *Handler) DeleteEntries(w http.ResponseWriter, r *http.Request) {
	var req IDsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("ids are required"))
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: h.store.Delete(req.IDs...)})
}

// RequestDelete handles POST /api/entries/delete-requests.
//
//	@Summary		Ask the client to confirm a delete
//	@Description	Emits a show_delete_confirmation effect for the given ids, or for the current selection when none are given.
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IDsRequest	false	"Ids to confirm"
//	@Success		202		{object}	StatusResponse
//	@Router			/entries/delete-requests [post]
func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	var req IDsRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.store.RequestDelete(req.IDs...)
	writeJSON(w, http.StatusAccepted, accepted)
}

// OpenEntry handles POST /api/entries/{id}/open.
//
//	@Summary		Request navigation to an entry
//	@Tags			navigation
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		202	{object}	StatusResponse
//	@Failure		404	{object}	errResponse
//	@Router			/entries/{id}/open [post]
func (h *Handler) OpenEntry(w http.ResponseWriter, r *http.Request) {
	if !h.store.Open(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	writeJSON(w, http.StatusAccepted, accepted)
}

// Back handles POST /api/navigation/back.
//
//	@Summary		Request navigation to the previous screen
//	@Tags			navigation
//	@Success		202	{object}	StatusResponse
//	@Router			/navigation/back [post]
func (h *Handler) Back(w http.ResponseWriter, _ *http.Request) {
	h.store.Back()
	writeJSON(w, http.StatusAccepted, accepted)
}

// Notify handles POST /api/notifications.
//
//	@Summary		Show a toast or snackbar
//	@Tags			navigation
//	@Accept			json
//	@Param			body	body		NotificationRequest	true	"Notification"
//	@Success		202		{object}	StatusResponse
//	@Failure		400		{object}	errResponse
//	@Router			/notifications [post]
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	var req NotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("message is required"))
		return
	}
	switch req.Kind {
	case "toast":
		h.store.Toast(req.Message)
	case "snackbar":
		h.store.Snackbar(req.Message)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("kind must be toast or snackbar"))
		return
	}
	writeJSON(w, http.StatusAccepted, accepted)
}

// ToggleSelection handles POST /api/selection/{id}.
//
//	@Summary		Toggle the selection mark on an entry
//	@Tags			selection
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	SelectionResponse
//	@Failure		404	{object}	errResponse
//	@Router			/selection/{id} [post]
func (h *Handler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	if !h.store.ToggleSelection(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	h.writeSelection(w)
}

// ClearSelection handles DELETE /api/selection.
//
//	@Summary		Leave selection mode
//	@Tags			selection
//	@Produce		json
//	@Success		200	{object}	SelectionResponse
//	@Router			/selection [delete]
func (h *Handler) ClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.store.ClearSelection()
	h.writeSelection(w)
}

func (h *Handler) writeSelection(w http.ResponseWriter) {
	st := h.store.Snapshot()
	writeJSON(w, http.StatusOK, SelectionResponse{Selected: st.Selected, SelectionMode: st.SelectionMode()})
}

// SetView handles PUT /api/view.
//
//	@Summary		Update the list query and sort order
//	@Tags			view
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ViewRequest	true	"View parameters"
//	@Success		200		{object}	ViewResponse
//	@Failure		400		{object}	errResponse
//	@Router			/view [put]
func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	// Parse before applying anything so a bad sort leaves the view intact.
	var order journal.SortOrder
	if req.Sort != nil {
		parsed, err := journal.ParseSortOrder(*req.Sort)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		order = parsed
	}
	if req.Query != nil {
		h.store.SetQuery(*req.Query)
	}
	if req.Sort != nil {
		h.store.SetSort(order)
	}

	st := h.store.Snapshot()
	writeJSON(w, http.StatusOK, ViewResponse{Query: st.Query, Sort: st.Sort})
}

// IncrementCount handles POST /api/home/count.
//
//	@Summary		Increment the home screen counter
//	@Tags			home
//	@Produce		json
//	@Success		200	{object}	StateResponse
//	@Router			/home/count [post]
func (h *Handler) IncrementCount(w http.ResponseWriter, _ *http.Request) {
	h.store.IncrementCount()
	writeJSON(w, http.StatusOK, NewStateResponse(h.store.Snapshot()))
}

// SetMood handles PUT /api/home/mood.
//
// An empty mood resets to the default.
//
//	@Summary		Select the home screen mood
//	@Tags			home
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoodRequest	true	"Mood"
//	@Success		200		{object}	StateResponse
//	@Failure		400		{object}	errResponse
//	@Router			/home/mood [put]
func (h *Handler) SetMood(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.store.SetMood(req.Mood)
	writeJSON(w, http.StatusOK, NewStateResponse(h.store.Snapshot()))
}

// GetState handles GET /api/state.
//
//	@Summary		Get the full store snapshot
//	@Tags			state
//	@Produce		json
//	@Param			If-None-Match	header		string	false	"ETag from a previous response"
//	@Success		200				{object}	StateResponse
//	@Success		304				"Not modified"
//	@Router			/state [get]
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSONTagged(w, r, NewStateResponse(h.store.Snapshot()))
}
