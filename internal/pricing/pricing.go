// Package pricing computes deterministic seat prices for an event.
// It is a pure function of the event's two price tiers and the seat
// labels: no I/O, no clock, no state.  Handlers expose it directly as
// the quote endpoint and the booking coordinator uses it to build the
// ledger entry.
package pricing

import "github.com/iliyamo/cinematick/internal/model"

// Quote is the tier breakdown and total for a set of seats.
type Quote struct {
	VIPCount      int    `json:"vip_count"`
	StandardCount int    `json:"standard_count"`
	TotalCents    uint32 `json:"total_cents"`
}

// Compute returns the tier breakdown for seats against the event's
// price tiers.  Seats are not validated here; callers validate labels
// before quoting.  Duplicate labels are counted as given; the
// booking coordinator rejects duplicates before reserving.
func Compute(ev *model.Event, seats []string) Quote {
	var q Quote
	for _, s := range seats {
		if model.TierOf(s) == model.TierVIP {
			q.VIPCount++
			q.TotalCents += ev.VIPPriceCents
		} else {
			q.StandardCount++
			q.TotalCents += ev.StandardPriceCents
		}
	}
	return q
}

// SeatPrice returns the price of a single seat for the event.
func SeatPrice(ev *model.Event, seat string) uint32 {
	if model.TierOf(seat) == model.TierVIP {
		return ev.VIPPriceCents
	}
	return ev.StandardPriceCents
}
