package model

import "time"

// Event represents a bookable screening or live event.  Events are
// keyed by their unique name (the original dataset addresses events
// by name, not by numeric id) and carry two price tiers plus the
// declared seating capacity.  The live remaining-seat counter is not
// stored here; it is derived from the inventory index so that the
// database never holds a counter that can drift from the ledger.
//
// Fields:
//  ID                 – primary key identifier.
//  Name               – unique event name.
//  VenueID            – venue where the event takes place.
//  CategoryID         – category the event belongs to.
//  Date               – calendar date of the event (YYYY-MM-DD).
//  Time               – start time of the event (HH:MM).
//  VIPPriceCents      – per-seat price for VIP rows, in cents.
//  StandardPriceCents – per-seat price for standard rows, in cents.
//  TotalSeats         – declared capacity of the event.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Event struct {
	ID                 uint64    // events.id
	Name               string    // events.name (unique)
	VenueID            uint64    // events.venue_id
	CategoryID         uint64    // events.category_id
	Date               string    // events.event_date
	Time               string    // events.event_time
	VIPPriceCents      uint32    // events.vip_price_cents
	StandardPriceCents uint32    // events.standard_price_cents
	TotalSeats         uint32    // events.total_seats
	CreatedAt          time.Time // events.created_at
	UpdatedAt          time.Time // events.updated_at
}

// Venue is a named location hosting events.  Venues are created on
// demand when an event referencing a new venue name is added.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique venue name.
//  CreatedAt – creation timestamp.
type Venue struct {
	ID        uint64    // venues.id
	Name      string    // venues.name (unique)
	CreatedAt time.Time // venues.created_at
}

// Category groups events for browsing (e.g. "Movie", "Concert").
// Like venues, categories are upserted by name when events are
// created.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique category name.
//  CreatedAt – creation timestamp.
type Category struct {
	ID        uint64    // categories.id
	Name      string    // categories.name (unique)
	CreatedAt time.Time // categories.created_at
}
