package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinematick/internal/model"
)

// BookingRepo is the durable booking ledger.  A booking row plus its
// booking_seats rows are written together in one transaction; seats
// are stored one row per seat (not a serialized blob) so the held set
// can be rebuilt with a single indexed query at startup.  Cancelled
// bookings keep their rows; cancellation is a status change.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given
// database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts a booking and its seats as one transaction.  The
// booking must carry a pre-generated id, resolved user and event ids
// and a non-empty seat list.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
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

	const q = `INSERT INTO bookings (id, user_id, event_id, status, total_cents) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, b.ID, b.UserID, b.EventID, b.Status, b.TotalCents); err != nil {
		return err
	}

	// Bulk insert the seats; position preserves the request order.
	query := `INSERT INTO booking_seats (booking_id, position, seat_label, tier, price_cents) VALUES `
	args := make([]interface{}, 0, len(b.Seats)*5)
	for i, s := range b.Seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, b.ID, i, s.Label, s.Tier, s.PriceCents)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a booking with its seats, joined user email and
// event name.  Returns ErrBookingNotFound when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT b.id, b.user_id, u.email, b.event_id, e.name, b.status, b.total_cents,
	                  b.created_at, b.updated_at
	           FROM bookings b
	           JOIN users u ON u.id = b.user_id
	           JOIN events e ON e.id = b.event_id
	           WHERE b.id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.UserEmail, &b.EventID, &b.EventName, &b.Status, &b.TotalCents,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	const seatQ = `SELECT seat_label, tier, price_cents
	               FROM booking_seats WHERE booking_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, seatQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s model.BookingSeat
		if err := rows.Scan(&s.Label, &s.Tier, &s.PriceCents); err != nil {
			return nil, err
		}
		b.Seats = append(b.Seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

// MarkCancelled flips a booking from CONFIRMED to CANCELLED.  It
// returns false when the booking was not in CONFIRMED state anymore
// (a concurrent cancel won) and ErrBookingNotFound when no row with
// the id exists at all.
func (r *BookingRepo) MarkCancelled(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.StatusCancelled, id, model.StatusConfirmed)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 1 {
		return true, nil
	}
	var status string
	err = r.db.QueryRowContext(ctx, "SELECT status FROM bookings WHERE id = ?", id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrBookingNotFound
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// BookingSummary is the read shape for a user's booking list: the
// booking joined with event, venue and date information, matching
// what the original "my bookings" view displays.
type BookingSummary struct {
	ID         string   `json:"booking_id"`
	EventName  string   `json:"event"`
	Venue      string   `json:"venue"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Seats      []string `json:"seats"`
	TotalCents uint32   `json:"total_cents"`
	Status     string   `json:"status"`
}

// ListByUser returns booking summaries for a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingSummary, error) {
	const q = `SELECT b.id, e.name, v.name, e.event_date, e.event_time, b.total_cents, b.status
	           FROM bookings b
	           JOIN events e ON e.id = b.event_id
	           JOIN venues v ON v.id = e.venue_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingSummary, 0)
	index := make(map[string]int)
	for rows.Next() {
		var s BookingSummary
		if err := rows.Scan(&s.ID, &s.EventName, &s.Venue, &s.Date, &s.Time, &s.TotalCents, &s.Status); err != nil {
			return nil, err
		}
		s.Seats = []string{}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	// Populate seats for all bookings in a single query.
	ids := make([]interface{}, 0, len(out))
	placeholders := ""
	for i, s := range out {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		ids = append(ids, s.ID)
	}
	seatQ := `SELECT booking_id, seat_label FROM booking_seats
	          WHERE booking_id IN (` + placeholders + `) ORDER BY booking_id, position`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid, label string
		if err := srows.Scan(&bid, &label); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			out[idx].Seats = append(out[idx].Seats, label)
		}
	}
	return out, srows.Err()
}

// HeldSeats returns the seat labels of all CONFIRMED bookings for an
// event.  Used once at startup to hydrate the inventory index; at
// runtime the in-memory index is authoritative.
func (r *BookingRepo) HeldSeats(ctx context.Context, eventID uint64) ([]string, error) {
	const q = `SELECT bs.seat_label
	           FROM booking_seats bs
	           JOIN bookings b ON b.id = bs.booking_id
	           WHERE b.event_id = ? AND b.status = ?`
	rows, err := r.db.QueryContext(ctx, q, eventID, model.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		out = append(out, label)
	}
	return out, rows.Err()
}
