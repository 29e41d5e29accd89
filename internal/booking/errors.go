package booking

import (
	"errors"
	"fmt"
)

// Sentinel and structured errors returned by the coordinators.  Seat
// conflict and capacity failures are reported through the inventory
// package's error types (inventory.ConflictError,
// inventory.CapacityError); event and booking lookups use the
// repository sentinels.  The types below cover request validation and
// coordinator-level failures.

// ErrNoSeats is returned when a booking request carries no seats.
var ErrNoSeats = errors.New("no seats requested")

// ErrAlreadyCancelled is returned when cancelling a booking that is
// already in CANCELLED state.  The inventory is left untouched.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrForbidden is returned when a user attempts to cancel a booking
// owned by someone else.
var ErrForbidden = errors.New("forbidden")

// ErrInventoryInconsistency signals that the ledger and the inventory
// index disagree (a release hit seats that were not held).  It is
// fatal for the operation and logged for investigation; nothing is
// auto-corrected.
var ErrInventoryInconsistency = errors.New("ledger/inventory inconsistency")

// InvalidSeatError names a seat label that does not exist on the
// grid.
type InvalidSeatError struct {
	Seat string
}

func (e *InvalidSeatError) Error() string {
	return fmt.Sprintf("invalid seat %q", e.Seat)
}

// DuplicateSeatError names a seat that appears more than once in a
// single request.
type DuplicateSeatError struct {
	Seat string
}

func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("seat %q requested more than once", e.Seat)
}

// PersistenceError wraps a transient storage failure.  The wrapped
// operation had no lasting effect (partial mutations were rolled
// back), so the caller may safely retry the whole request.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
