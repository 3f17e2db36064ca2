package service

import "errors"

// Error kinds surfaced to the handler layer. Services wrap these with
// fmt.Errorf("%w: detail") so callers can both match the kind and show a
// reason.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)
