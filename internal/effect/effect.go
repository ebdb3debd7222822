// Package effect implements the one-shot UI effect channel: notifications and
// navigation requests that are consumed once and are never part of durable
// store state.
package effect

import "github.com/google/uuid"

// Kind identifies what the presentation layer should do with an effect.
type Kind string

const (
	KindToast              Kind = "show_toast"
	KindSnackbar           Kind = "show_snackbar"
	KindNavigateToDetail   Kind = "navigate_to_detail"
	KindNavigateBack       Kind = "navigate_back"
	KindDeleteConfirmation Kind = "show_delete_confirmation"
)

// Effect is a single one-shot notification.
type Effect struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message,omitempty"`
	EntryID  string   `json:"entry_id,omitempty"`
	EntryIDs []string `json:"entry_ids,omitempty"`
}

func newEffect(kind Kind) Effect {
	return Effect{ID: uuid.NewString(), Kind: kind}
}

// Toast asks the notification host to show a short toast.
func Toast(msg string) Effect {
	e := newEffect(KindToast)
	e.Message = msg
	return e
}

// Snackbar asks the notification host to show a snackbar.
func Snackbar(msg string) Effect {
	e := newEffect(KindSnackbar)
	e.Message = msg
	return e
}

// NavigateToDetail asks the navigation host to open the entry detail screen.
func NavigateToDetail(id string) Effect {
	e := newEffect(KindNavigateToDetail)
	e.EntryID = id
	return e
}

// NavigateBack asks the navigation host to pop the current screen.
func NavigateBack() Effect {
	return newEffect(KindNavigateBack)
}

// DeleteConfirmation asks the presentation layer to confirm deletion of ids.
func DeleteConfirmation(ids []string) Effect {
	e := newEffect(KindDeleteConfirmation)
	e.EntryIDs = append([]string(nil), ids...)
	return e
}
