// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as the booking coordinator and handlers to distinguish
// between failure scenarios without inspecting raw SQL errors.
package repository

import "errors"

// ErrEventNotFound is returned when an event lookup by name or id
// matches no row. Handlers translate this into an HTTP 404.
var ErrEventNotFound = errors.New("event not found")

// ErrEventExists is returned when creating an event whose name is
// already taken. Handlers translate this into an HTTP 409.
var ErrEventExists = errors.New("event name already exists")

// ErrBookingNotFound is returned when a booking lookup matches no
// row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrEmailExists is returned when registering a user with an email
// that is already taken.
var ErrEmailExists = errors.New("email already exists")
