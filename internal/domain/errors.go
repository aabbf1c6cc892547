package domain

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("escrow not found")
	ErrInvalidState     = errors.New("invalid escrow state")
	ErrUnauthorized     = errors.New("caller is not allowed to perform this operation")
	ErrNotEligible      = errors.New("escrow is not eligible")
	ErrAlreadyConfirmed = errors.New("delivery already confirmed")
	ErrConflict         = errors.New("concurrent modification, retry")
	ErrEncoding         = errors.New("payload encoding failed")
)

// ErrorKind names the error class for metrics and transport mapping.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotEligible):
		return "not_eligible"
	case errors.Is(err, ErrAlreadyConfirmed):
		return "already_confirmed"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	default:
		return "internal"
	}
}
