// Package booking contains the transaction coordinator that turns a
// seat request into a committed booking and the mirror cancellation
// path.  The coordinator owns the ordering rules that keep the
// inventory index and the ledger consistent: reserve first, write the
// ledger second, and compensate (release or re-reserve) whenever the
// second step fails.  Notifications are dispatched only after the
// state change committed and never affect the outcome.
package booking

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinematick/internal/inventory"
	"github.com/iliyamo/cinematick/internal/model"
	"github.com/iliyamo/cinematick/internal/pricing"
	"github.com/iliyamo/cinematick/internal/queue"
)

// EventSource resolves events by name.  Implementations return
// repository.ErrEventNotFound for unknown names.
type EventSource interface {
	GetByName(ctx context.Context, name string) (*model.Event, error)
}

// Ledger is the durable booking record store.  Implementations
// return repository.ErrBookingNotFound for unknown ids.
// MarkCancelled must be conditional on the CONFIRMED state and
// report whether this call performed the transition.
type Ledger interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	MarkCancelled(ctx context.Context, id string) (bool, error)
}

// Notifier delivers post-commit notifications.  Calls are
// fire-and-forget and at-least-once; receivers deduplicate by
// booking id.
type Notifier interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// Coordinator wires the pricing calculator, the inventory index, the
// ledger and the notifier into the book/cancel operations.
type Coordinator struct {
	events   EventSource
	ledger   Ledger
	inv      *inventory.Store
	notifier Notifier
}

// NewCoordinator constructs a Coordinator.  All dependencies must be
// non-nil.
func NewCoordinator(events EventSource, ledger Ledger, inv *inventory.Store, notifier Notifier) *Coordinator {
	if events == nil || ledger == nil || inv == nil || notifier == nil {
		panic("nil dependency passed to NewCoordinator")
	}
	return &Coordinator{events: events, ledger: ledger, inv: inv, notifier: notifier}
}

// validateSeats rejects empty requests, malformed labels and
// duplicate seats within one request.
func validateSeats(seats []string) error {
	if len(seats) == 0 {
		return ErrNoSeats
	}
	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		if !model.ValidSeat(s) {
			return &InvalidSeatError{Seat: s}
		}
		if _, dup := seen[s]; dup {
			return &DuplicateSeatError{Seat: s}
		}
		seen[s] = struct{}{}
	}
	return nil
}

// Book reserves the requested seats for the user and writes the
// ledger entry.  On success it returns the committed booking and
// emits a post-commit notification.  The reservation and the ledger
// write behave as one unit: when the ledger write fails the seats
// are released again before the error is returned, so no seat is
// ever reserved without an owning booking.
func (c *Coordinator) Book(ctx context.Context, user model.User, eventName string, seats []string) (*model.Booking, error) {
	if err := validateSeats(seats); err != nil {
		return nil, err
	}
	ev, err := c.events.GetByName(ctx, eventName)
	if err != nil {
		return nil, err
	}

	// Price before reserving: the breakdown is needed for the ledger
	// entry and computing it outside the critical section keeps the
	// lock hold time at O(seats).
	quote := pricing.Compute(ev, seats)

	if err := c.inv.Reserve(ev.ID, seats); err != nil {
		return nil, err
	}

	b := &model.Booking{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		UserEmail:  user.Email,
		EventID:    ev.ID,
		EventName:  ev.Name,
		TotalCents: quote.TotalCents,
		Status:     model.StatusConfirmed,
		CreatedAt:  time.Now().UTC(),
	}
	for _, s := range seats {
		b.Seats = append(b.Seats, model.BookingSeat{
			Label:      s,
			Tier:       model.TierOf(s),
			PriceCents: pricing.SeatPrice(ev, s),
		})
	}

	if err := c.ledger.Create(ctx, b); err != nil {
		// Compensate: the reservation must not outlive the failed
		// ledger write.
		if relErr := c.inv.Release(ev.ID, seats); relErr != nil {
			log.Printf("booking: rollback release failed for event %d seats %v: %v", ev.ID, seats, relErr)
		}
		return nil, &PersistenceError{Op: "ledger create", Err: err}
	}

	c.dispatch(func(ctx context.Context) error {
		return c.notifier.BookingConfirmed(ctx, queue.BookingConfirmedEvent{
			BookingID:  b.ID,
			UserEmail:  b.UserEmail,
			EventName:  b.EventName,
			Seats:      b.SeatLabels(),
			TotalCents: b.TotalCents,
			BookedAt:   b.CreatedAt.Format(time.RFC3339),
		})
	})
	return b, nil
}

// Cancel releases a booking's seats back to the inventory and marks
// the ledger entry cancelled.  The operation is idempotency-guarded:
// a second cancel fails with ErrAlreadyCancelled and leaves the
// inventory unchanged.  Admins may cancel any booking; other users
// only their own.
func (c *Coordinator) Cancel(ctx context.Context, bookingID string, userID uint64, admin bool) error {
	b, err := c.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !admin && b.UserID != userID {
		return ErrForbidden
	}
	if b.Status == model.StatusCancelled {
		return ErrAlreadyCancelled
	}

	seats := b.SeatLabels()
	if err := c.inv.Release(b.EventID, seats); err != nil {
		// The ledger says these seats belong to a committed booking;
		// the index disagrees. Surface, log, never auto-correct.
		log.Printf("booking: release for cancel %s failed: %v", bookingID, err)
		return ErrInventoryInconsistency
	}

	marked, err := c.ledger.MarkCancelled(ctx, bookingID)
	if err != nil || !marked {
		// Undo the release so the inventory keeps matching the ledger,
		// whether the mark failed or a concurrent cancel won the race.
		if resErr := c.inv.Reserve(b.EventID, seats); resErr != nil {
			log.Printf("booking: re-reserve after failed cancel of %s failed: %v", bookingID, resErr)
		}
		if err != nil {
			return &PersistenceError{Op: "ledger cancel", Err: err}
		}
		return ErrAlreadyCancelled
	}

	c.dispatch(func(ctx context.Context) error {
		return c.notifier.BookingCancelled(ctx, queue.BookingCancelledEvent{
			BookingID:   b.ID,
			UserEmail:   b.UserEmail,
			EventName:   b.EventName,
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		})
	})
	return nil
}

// BookedSeats returns the inventory snapshot of held seats for an
// event, resolving the event name first.
func (c *Coordinator) BookedSeats(ctx context.Context, eventName string) ([]string, error) {
	ev, err := c.events.GetByName(ctx, eventName)
	if err != nil {
		return nil, err
	}
	return c.inv.BookedSeats(ev.ID)
}

// Quote validates the seats and exposes the pricing calculator for
// UI preview, alongside the event's live remaining capacity.
func (c *Coordinator) Quote(ctx context.Context, eventName string, seats []string) (pricing.Quote, error) {
	if err := validateSeats(seats); err != nil {
		return pricing.Quote{}, err
	}
	ev, err := c.events.GetByName(ctx, eventName)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.Compute(ev, seats), nil
}

// dispatch runs a notification outside the request's critical path.
// Failures are logged and dropped: notification is best-effort and
// never rolls back a committed state change.
func (c *Coordinator) dispatch(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("booking: notification dispatch failed: %v", err)
		}
	}()
}
