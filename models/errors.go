package models

import "errors"

// Recoverable domain errors. Handlers map these to HTTP codes; none of them
// should ever crash the service.
var (
	ErrNotFound           = errors.New("not found")
	ErrStaleState         = errors.New("state changed concurrently, refresh and retry")
	ErrReferencedByOrder  = errors.New("referenced by an existing order")
	ErrQuantityOutOfRange = errors.New("quantity out of range")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrCartExpired        = errors.New("cart session expired")
)

// FieldErrors maps a form field name to a user-correctable message.
type FieldErrors map[string]string

// ValidationError carries the full field-keyed map so the UI can render
// errors inline next to each offending field.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string { return "validation failed" }

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
