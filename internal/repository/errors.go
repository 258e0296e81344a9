// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that an operation cannot proceed
// because of the current state of a row (e.g. reversing a moderation
// decision that is already terminal).
package repository

import "errors"

// ErrNotFound is returned when a row does not exist. Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state, such as trying to flip a component that was
// already accepted to rejected. Handlers should translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrNotRateable is returned by RatingRepo.Upsert when the target
// component exists but is not in the ACCEPTED state. Only published
// components collect ratings.
var ErrNotRateable = errors.New("component is not rateable")
