package uicode

import (
	"errors"
	"fmt"
)

// Sentinel errors for the API failure classes. Every non-2xx response
// maps onto exactly one of these; callers branch with errors.Is.
var (
	// ErrAuthInvalid marks rejected login credentials specifically, as
	// opposed to a missing or dead session on a later call.
	ErrAuthInvalid = errors.New("invalid credentials")

	ErrValidation      = errors.New("invalid request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("server error")
)

// APIError carries the HTTP status and server-provided message of a
// failed call. Unwrap yields the matching sentinel.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.kind }

func kindFor(status int) error {
	switch status {
	case 400:
		return ErrValidation
	case 401:
		return ErrUnauthenticated
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	}
	return ErrUpstream
}
