package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinematick/internal/model"
)

// EventRepo provides persistence for events and their venue and
// category references.  Venues and categories are upserted by name
// when events are created, mirroring how the original dataset merges
// them.  All timestamp columns are stored in UTC.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// EventDetail is the read shape for browse endpoints: the event row
// joined with its venue and category names.
type EventDetail struct {
	ID                 uint64 `json:"id"`
	Name               string `json:"name"`
	Venue              string `json:"venue"`
	Category           string `json:"category"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	VIPPriceCents      uint32 `json:"vip_price_cents"`
	StandardPriceCents uint32 `json:"standard_price_cents"`
	TotalSeats         uint32 `json:"total_seats"`
}

// Create inserts an event along with its venue and category,
// creating either by name when missing.  The whole operation runs in
// one transaction so a failed event insert never leaves stray venue
// rows visible with a partially created event.  Returns
// ErrEventExists when the name is already taken.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event, venueName, categoryName string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	venueID, err := upsertNamedTx(ctx, tx, "venues", venueName)
	if err != nil {
		return err
	}
	categoryID, err := upsertNamedTx(ctx, tx, "categories", categoryName)
	if err != nil {
		return err
	}

	const q = `INSERT INTO events
	           (name, venue_id, category_id, event_date, event_time,
	            vip_price_cents, standard_price_cents, total_seats)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, ev.Name, venueID, categoryID, ev.Date, ev.Time,
		ev.VIPPriceCents, ev.StandardPriceCents, ev.TotalSeats)
	if err != nil {
		if isDuplicate(err) {
			return ErrEventExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	ev.ID = uint64(id)
	ev.VenueID = venueID
	ev.CategoryID = categoryID
	return nil
}

// upsertNamedTx inserts a row into a (id, name) table if the name is
// new and returns the row id either way.  Table names are fixed
// compile-time strings, never user input.
func upsertNamedTx(ctx context.Context, tx *sql.Tx, table, name string) (uint64, error) {
	name = strings.TrimSpace(name)
	if _, err := tx.ExecContext(ctx, "INSERT IGNORE INTO "+table+" (name) VALUES (?)", name); err != nil {
		return 0, err
	}
	var id uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByName fetches an event by its unique name.  Returns
// ErrEventNotFound when no row matches.
func (r *EventRepo) GetByName(ctx context.Context, name string) (*model.Event, error) {
	const q = `SELECT id, name, venue_id, category_id, event_date, event_time,
	                  vip_price_cents, standard_price_cents, total_seats, created_at, updated_at
	           FROM events WHERE name = ?`
	var ev model.Event
	err := r.db.QueryRowContext(ctx, q, name).Scan(
		&ev.ID, &ev.Name, &ev.VenueID, &ev.CategoryID, &ev.Date, &ev.Time,
		&ev.VIPPriceCents, &ev.StandardPriceCents, &ev.TotalSeats, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// GetDetailByName returns the joined browse shape for one event.
func (r *EventRepo) GetDetailByName(ctx context.Context, name string) (*EventDetail, error) {
	const q = `SELECT e.id, e.name, v.name, c.name, e.event_date, e.event_time,
	                  e.vip_price_cents, e.standard_price_cents, e.total_seats
	           FROM events e
	           JOIN venues v ON v.id = e.venue_id
	           JOIN categories c ON c.id = e.category_id
	           WHERE e.name = ?`
	var d EventDetail
	err := r.db.QueryRowContext(ctx, q, name).Scan(
		&d.ID, &d.Name, &d.Venue, &d.Category, &d.Date, &d.Time,
		&d.VIPPriceCents, &d.StandardPriceCents, &d.TotalSeats,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all events joined with venue and category names,
// optionally filtered by category name (case-insensitive).  Events
// are ordered by date then name for stable output.
func (r *EventRepo) List(ctx context.Context, category string) ([]EventDetail, error) {
	q := `SELECT e.id, e.name, v.name, c.name, e.event_date, e.event_time,
	             e.vip_price_cents, e.standard_price_cents, e.total_seats
	      FROM events e
	      JOIN venues v ON v.id = e.venue_id
	      JOIN categories c ON c.id = e.category_id`
	args := []interface{}{}
	if strings.TrimSpace(category) != "" {
		q += " WHERE LOWER(c.name) = LOWER(?)"
		args = append(args, strings.TrimSpace(category))
	}
	q += " ORDER BY e.event_date, e.name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]EventDetail, 0)
	for rows.Next() {
		var d EventDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.Venue, &d.Category, &d.Date, &d.Time,
			&d.VIPPriceCents, &d.StandardPriceCents, &d.TotalSeats); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListCategories returns all category names sorted alphabetically.
func (r *EventRepo) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// EventPatch is an explicit set of optional event fields for partial
// updates.  Each present field is validated and applied individually;
// there is no dynamic field map, so the update surface is closed.
type EventPatch struct {
	Date               *string
	Time               *string
	Venue              *string
	Category           *string
	VIPPriceCents      *uint32
	StandardPriceCents *uint32
	TotalSeats         *uint32
}

// Empty reports whether the patch carries no fields.
func (p *EventPatch) Empty() bool {
	return p.Date == nil && p.Time == nil && p.Venue == nil && p.Category == nil &&
		p.VIPPriceCents == nil && p.StandardPriceCents == nil && p.TotalSeats == nil
}

// Update applies a patch to the named event.  Venue and category
// changes upsert the referenced name.  Returns ErrEventNotFound when
// the event does not exist.  The caller is responsible for resizing
// the inventory index when TotalSeats changes.
func (r *EventRepo) Update(ctx context.Context, name string, patch *EventPatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	if patch.Date != nil {
		sets = append(sets, "event_date = ?")
		args = append(args, *patch.Date)
	}
	if patch.Time != nil {
		sets = append(sets, "event_time = ?")
		args = append(args, *patch.Time)
	}
	if patch.Venue != nil {
		id, err := upsertNamedTx(ctx, tx, "venues", *patch.Venue)
		if err != nil {
			return err
		}
		sets = append(sets, "venue_id = ?")
		args = append(args, id)
	}
	if patch.Category != nil {
		id, err := upsertNamedTx(ctx, tx, "categories", *patch.Category)
		if err != nil {
			return err
		}
		sets = append(sets, "category_id = ?")
		args = append(args, id)
	}
	if patch.VIPPriceCents != nil {
		sets = append(sets, "vip_price_cents = ?")
		args = append(args, *patch.VIPPriceCents)
	}
	if patch.StandardPriceCents != nil {
		sets = append(sets, "standard_price_cents = ?")
		args = append(args, *patch.StandardPriceCents)
	}
	if patch.TotalSeats != nil {
		sets = append(sets, "total_seats = ?")
		args = append(args, *patch.TotalSeats)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, name)
	res, err := tx.ExecContext(ctx, "UPDATE events SET "+strings.Join(sets, ", ")+" WHERE name = ?", args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish "no row" from "row unchanged".
		var id uint64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM events WHERE name = ?", name).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListAll returns every event row without joins.  Used at startup to
// register events in the inventory index.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT id, name, venue_id, category_id, event_date, event_time,
	                  vip_price_cents, standard_price_cents, total_seats, created_at, updated_at
	           FROM events`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.VenueID, &ev.CategoryID, &ev.Date, &ev.Time,
			&ev.VIPPriceCents, &ev.StandardPriceCents, &ev.TotalSeats, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// isDuplicate reports whether err is a MySQL duplicate-key error
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
