package api

import (
	"github.com/starford/chroniclelens/internal/journal"
	"github.com/starford/chroniclelens/internal/models"
)

// JournalEntry is the entry response type (aliased from the domain layer).
type JournalEntry = models.JournalEntry

// EntryListResponse wraps the visible entry list.
type EntryListResponse struct {
	Entries []JournalEntry `json:"entries" validate:"required"`
	Total   int            `json:"total" example:"3" validate:"required"`
}

// CreateDraftRequest is the request body for creating an authored entry.
type CreateDraftRequest = journal.Draft

// IDsRequest carries a set of entry ids.
type IDsRequest struct {
	IDs []string `json:"ids" example:"001,002"`
}

// DeleteResponse reports how many entries a delete removed.
type DeleteResponse struct {
	Deleted int `json:"deleted" example:"2" validate:"required"`
}

// ViewRequest updates the list view parameters. Absent fields are left as
// they are.
type ViewRequest struct {
	Query *string `json:"query,omitempty" example:"friends"`
	Sort  *string `json:"sort,omitempty" example:"newest_first"`
}

// ViewResponse echoes the current list view parameters.
type ViewResponse struct {
	Query string            `json:"query"`
	Sort  journal.SortOrder `json:"sort" example:"newest_first"`
}

// SelectionResponse reports the current selection.
type SelectionResponse struct {
	Selected      []string `json:"selected" validate:"required"`
	SelectionMode bool     `json:"selection_mode"`
}

// MoodRequest sets the home screen mood.
type MoodRequest struct {
	Mood string `json:"mood" example:"😊"`
}

// NotificationRequest asks for a toast or snackbar.
type NotificationRequest struct {
	Kind    string `json:"kind" example:"toast" validate:"required"`
	Message string `json:"message" example:"Hello" validate:"required"`
}

// StatusResponse acknowledges an accepted asynchronous request.
type StatusResponse struct {
	Status string `json:"status" example:"accepted"`
}

// StateResponse is the full store snapshot plus derived fields.
type StateResponse struct {
	journal.State
	SelectionMode bool           `json:"selection_mode"`
	Visible       []JournalEntry `json:"visible"`
}

// NewStateResponse builds the wire form of a snapshot.
func NewStateResponse(st journal.State) StateResponse {
	return StateResponse{
		State:         st,
		SelectionMode: st.SelectionMode(),
		Visible:       st.Visible(),
	}
}

var accepted = StatusResponse{Status: "accepted"}
