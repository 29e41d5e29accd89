package model

import "time"

// BookingStatus is the lifecycle state of a booking.  A booking is
// written as CONFIRMED and transitions at most once to CANCELLED.
// Cancelled bookings are never deleted; the row is the audit history.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Booking records a user's committed reservation of one or more
// seats for an event.  The seat list is ordered as requested, each
// seat appearing once, with its tier and price captured at booking
// time so later price changes do not rewrite history.
//
// Fields:
//  ID         – globally unique booking id (UUID string).
//  UserID     – user who made the booking.
//  UserEmail  – email of the booking owner (denormalised for display
//               and notification payloads).
//  EventID    – event being booked.
//  EventName  – name of the event at booking time.
//  Seats      – seats reserved under this booking, in request order.
//  TotalCents – total price across all seats, in cents.
//  Status     – CONFIRMED or CANCELLED.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp (cancellation time).
type Booking struct {
	ID         string        // bookings.id (UUID)
	UserID     uint64        // bookings.user_id
	UserEmail  string        // users.email (joined)
	EventID    uint64        // bookings.event_id
	EventName  string        // events.name (joined)
	Seats      []BookingSeat // bookings -> booking_seats
	TotalCents uint32        // bookings.total_cents
	Status     BookingStatus // bookings.status
	CreatedAt  time.Time     // bookings.created_at
	UpdatedAt  time.Time     // bookings.updated_at
}

// BookingSeat is one seat within a booking together with its tier and
// the price charged for it.
//
// Fields:
//  Label      – seat identifier, e.g. "A1".
//  Tier       – VIP or STANDARD at booking time.
//  PriceCents – price charged for this seat, in cents.
type BookingSeat struct {
	Label      string   // booking_seats.seat_label
	Tier       SeatTier // booking_seats.tier
	PriceCents uint32   // booking_seats.price_cents
}

// SeatLabels returns just the seat identifiers of the booking, in
// order.  Used when releasing seats back to the inventory and in
// notification payloads.
func (b *Booking) SeatLabels() []string {
	labels := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		labels = append(labels, s.Label)
	}
	return labels
}
