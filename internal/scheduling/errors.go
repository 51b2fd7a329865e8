package scheduling

import "errors"

var (
	// ErrUnauthorized is returned when the acting user may not perform the
	// operation.
	ErrUnauthorized = errors.New("scheduling: unauthorized")
	// ErrNotFound is returned when the addressed meeting does not exist.
	ErrNotFound = errors.New("scheduling: not found")
	// ErrSaveInFlight is returned when a save is attempted while another
	// save of the same edit session has not finished. The UI disables the
	// save action, but the session guards against double submission anyway.
	ErrSaveInFlight = errors.New("scheduling: save already in flight")
	// ErrSessionClosed is returned when a closed edit session is used.
	ErrSessionClosed = errors.New("scheduling: edit session closed")
	// ErrDeleteNotConfirmed is returned when a delete is attempted without
	// the user confirming it.
	ErrDeleteNotConfirmed = errors.New("scheduling: delete not confirmed")
)

// ValidationError captures field level validation issues that callers can
// surface inline, before any store access happens.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
