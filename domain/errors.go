package domain

import "errors"

// Error taxonomy shared by every service. Validation errors are terminal for
// the call; ErrConflict is retried internally by the owning service before
// being surfaced.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrAlreadyResolved = errors.New("market already resolved")
	ErrConflict        = errors.New("storage conflict")
)
