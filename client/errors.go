package client

import (
	"errors"
	"fmt"

	"github.com/nikhilsahni7/FeedbackX/models"
)

// TransportError means the store could not be reached or answered with
// something that is not an API envelope. Retrying is safe.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a success=false answer from the store.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is match the store's well-known messages against the
// models sentinels.
func (e *APIError) Is(target error) bool {
	switch {
	case errors.Is(target, models.ErrFormNotFound):
		return e.Message == models.MessageFormNotFound
	case errors.Is(target, models.ErrFormClosed):
		return e.Message == models.MessageFormClosed
	}
	return false
}

// IsTransport reports whether err is a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
