package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrBusy       = errors.New("operation already in progress")
	ErrValidation = errors.New("validation failed")
	ErrClosed     = errors.New("store closed")
)
