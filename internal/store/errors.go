package store

import "fmt"

// NotFoundError reports an illuminant name absent from the store.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("illuminant '%s' not found", e.Name)
}

// ValidationError reports a rejected store mutation: empty fields,
// malformed spectra or duplicate names.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
