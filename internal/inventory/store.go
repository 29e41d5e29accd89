// Package inventory holds the authoritative per-event seat state:
// the set of held seats and the declared capacity, from which the
// remaining counter is derived.  All mutations on one event run under
// that event's own mutex, so reserve/release are linearizable per
// event while different events never contend.  Nothing in here does
// I/O; critical sections are O(seats requested).
package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrEventNotRegistered is returned when an operation references an
// event the store has never been told about.  Events are registered
// at startup (ledger hydration) and when an admin creates an event.
var ErrEventNotRegistered = errors.New("event not registered in inventory")

// ConflictError reports seats that are already held by a committed
// booking.  It takes precedence over capacity exhaustion because the
// caller can act on it (pick other seats).
type ConflictError struct {
	Seats []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Seats, ", "))
}

// CapacityError reports that the event does not have enough remaining
// seats for the request.
type CapacityError struct {
	Requested int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats: requested %d, remaining %d", e.Requested, e.Remaining)
}

// NotHeldError reports a release of seats that are not currently
// held.  This should never happen when the ledger and inventory are
// consistent; callers treat it as an inconsistency signal.
type NotHeldError struct {
	Seats []string
}

func (e *NotHeldError) Error() string {
	return fmt.Sprintf("seats not held: %s", strings.Join(e.Seats, ", "))
}

// ErrCapacityBelowHeld is returned by Resize when the new total would
// be smaller than the number of currently held seats.
var ErrCapacityBelowHeld = errors.New("total seats below currently held count")

// eventInventory is the unit of synchronization: one mutex, one held
// set and the declared total for a single event.
type eventInventory struct {
	mu    sync.Mutex
	total int
	held  map[string]struct{}
}

// Store indexes event inventories by event id.  The outer RWMutex
// only guards the map itself; per-event state is guarded by the
// event's own mutex so operations on different events proceed in
// parallel.
type Store struct {
	mu     sync.RWMutex
	events map[uint64]*eventInventory
}

// NewStore returns an empty inventory index.
func NewStore() *Store {
	return &Store{events: make(map[uint64]*eventInventory)}
}

// Register installs an event with its declared capacity and any seats
// already held by committed bookings (ledger hydration at startup).
// Registering an existing event replaces its state; callers only do
// that during startup before traffic is accepted.
func (s *Store) Register(eventID uint64, totalSeats int, held []string) {
	inv := &eventInventory{total: totalSeats, held: make(map[string]struct{}, len(held))}
	for _, seat := range held {
		inv.held[seat] = struct{}{}
	}
	s.mu.Lock()
	s.events[eventID] = inv
	s.mu.Unlock()
}

// get returns the per-event state without touching its mutex.
func (s *Store) get(eventID uint64) (*eventInventory, bool) {
	s.mu.RLock()
	inv, ok := s.events[eventID]
	s.mu.RUnlock()
	return inv, ok
}

// Reserve atomically checks that every requested seat is free and
// that enough capacity remains, then holds all seats and shrinks the
// remaining counter as one indivisible step.  On any failure nothing
// is mutated.  Seat conflicts are reported in preference to capacity
// exhaustion when both apply.
func (s *Store) Reserve(eventID uint64, seats []string) error {
	inv, ok := s.get(eventID)
	if !ok {
		return ErrEventNotRegistered
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()

	var conflicts []string
	for _, seat := range seats {
		if _, taken := inv.held[seat]; taken {
			conflicts = append(conflicts, seat)
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{Seats: conflicts}
	}
	remaining := inv.total - len(inv.held)
	if remaining < len(seats) {
		return &CapacityError{Requested: len(seats), Remaining: remaining}
	}
	for _, seat := range seats {
		inv.held[seat] = struct{}{}
	}
	return nil
}

// Release atomically returns seats to the free pool.  If any seat is
// not currently held the whole release fails and nothing is mutated.
func (s *Store) Release(eventID uint64, seats []string) error {
	inv, ok := s.get(eventID)
	if !ok {
		return ErrEventNotRegistered
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()

	var missing []string
	for _, seat := range seats {
		if _, taken := inv.held[seat]; !taken {
			missing = append(missing, seat)
		}
	}
	if len(missing) > 0 {
		return &NotHeldError{Seats: missing}
	}
	for _, seat := range seats {
		delete(inv.held, seat)
	}
	return nil
}

// BookedSeats returns a sorted snapshot of the held seats for an
// event.  The snapshot may be momentarily stale relative to
// concurrent writers but is never torn: it is copied under the event
// mutex.
func (s *Store) BookedSeats(eventID uint64) ([]string, error) {
	inv, ok := s.get(eventID)
	if !ok {
		return nil, ErrEventNotRegistered
	}
	inv.mu.Lock()
	out := make([]string, 0, len(inv.held))
	for seat := range inv.held {
		out = append(out, seat)
	}
	inv.mu.Unlock()
	sort.Strings(out)
	return out, nil
}

// Remaining returns the derived remaining capacity of an event.
func (s *Store) Remaining(eventID uint64) (int, error) {
	inv, ok := s.get(eventID)
	if !ok {
		return 0, ErrEventNotRegistered
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.total - len(inv.held), nil
}

// Resize changes the declared capacity of an event (admin capacity
// patch).  The new total may not drop below the number of seats
// currently held.
func (s *Store) Resize(eventID uint64, totalSeats int) error {
	inv, ok := s.get(eventID)
	if !ok {
		return ErrEventNotRegistered
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if totalSeats < len(inv.held) {
		return ErrCapacityBelowHeld
	}
	inv.total = totalSeats
	return nil
}
