// Package apperr defines the error taxonomy surfaced to the dashboard.
// None of these are fatal: the API maps them to status codes and the UI
// shows a dismissable notification.
package apperr

import "fmt"

// ValidationError: bad or missing field at creation/edit time.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

func Validation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// NotFoundError: operation referenced an unknown parcel id.
type NotFoundError struct {
	ID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("parcel %d not found", e.ID)
}

// ParseError: import file is structurally invalid or a row failed
// required-field/type checks. Row is 1-based and counts the header.
type ParseError struct {
	Row int
	Msg string
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Msg)
	}
	return e.Msg
}

// FormatError: restore envelope missing the expected tag or fields.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "bad backup format: " + e.Msg
}

// TransportError: remote sync network/auth/API failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote sync %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
