// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published after a booking commits.  It
// carries everything a downstream notifier needs to build the
// confirmation message (recipient, event, seats, total) without
// querying the primary database.  Consumers deduplicate by
// BookingID; delivery is at-least-once.
type BookingConfirmedEvent struct {
	BookingID  string   `json:"booking_id"`
	UserEmail  string   `json:"user_email"`
	EventName  string   `json:"event_name"`
	Seats      []string `json:"seats"`
	TotalCents uint32   `json:"total_cents"`
	BookedAt   string   `json:"booked_at"`
}

// BookingCancelledEvent is published after a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID   string `json:"booking_id"`
	UserEmail   string `json:"user_email"`
	EventName   string `json:"event_name"`
	CancelledAt string `json:"cancelled_at"`
}
