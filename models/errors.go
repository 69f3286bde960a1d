package models

import (
	"errors"
	"fmt"
)

// Messages the store uses to signal why a public form cannot be answered.
const (
	MessageFormNotFound = "Form not found"
	MessageFormClosed   = "Form is closed"
)

var (
	// ErrFormNotFound is returned when a form does not exist or is not visible.
	ErrFormNotFound = errors.New(MessageFormNotFound)
	// ErrFormClosed is returned when a form no longer accepts responses.
	ErrFormClosed = errors.New(MessageFormClosed)
)

// ValidationError blocks a submission. Index is the zero-based question
// position, or -1 when the failure is not tied to a question.
type ValidationError struct {
	QuestionID string
	Index      int
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError for the question at index.
func Invalid(index int, questionID, format string, args ...any) *ValidationError {
	return &ValidationError{QuestionID: questionID, Index: index, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
