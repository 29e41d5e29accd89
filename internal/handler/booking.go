package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinematick/internal/booking"
	"github.com/iliyamo/cinematick/internal/inventory"
	"github.com/iliyamo/cinematick/internal/repository"
)

// BookingHandler exposes the booking transaction endpoints: book,
// cancel, quote, the per-event seat map and the caller's booking
// history.
type BookingHandler struct {
	Coord    *booking.Coordinator
	Users    *repository.UserRepo
	Bookings *repository.BookingRepo
}

func NewBookingHandler(coord *booking.Coordinator, users *repository.UserRepo, bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Coord: coord, Users: users, Bookings: bookings}
}

// ----- DTOs -----

type bookReq struct {
	Event string   `json:"event"`
	Seats []string `json:"seats"`
}
type cancelReq struct {
	BookingID string `json:"booking_id"`
}
type quoteReq struct {
	Event string   `json:"event"`
	Seats []string `json:"seats"`
}

// Book reserves seats for the authenticated user and commits the
// booking. 409 carries the conflicting seats or the remaining
// capacity so clients can re-render the seat map.
func (h *BookingHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Event == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event required"})
	}
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	b, err := h.Coord.Book(ctx, user, req.Event, req.Seats)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":  b.ID,
		"event":       b.EventName,
		"seats":       b.SeatLabels(),
		"total_cents": b.TotalCents,
		"status":      b.Status,
	})
}

// Cancel releases a booking's seats and marks it cancelled. Admins
// may cancel any booking.
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req cancelReq
	if err := c.Bind(&req); err != nil || req.BookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id required"})
	}
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Coord.Cancel(ctx, req.BookingID, uid, isAdmin(c)); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_id": req.BookingID, "status": "CANCELLED"})
}

// Quote prices a seat selection without reserving anything.
func (h *BookingHandler) Quote(c echo.Context) error {
	var req quoteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Event == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q, err := h.Coord.Quote(ctx, req.Event, req.Seats)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// BookedSeats returns the currently held seat labels for an event.
// The snapshot is point-in-time; a seat shown free here can still be
// taken by the time a booking request lands.
func (h *BookingHandler) BookedSeats(c echo.Context) error {
	name := c.Param("name")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Coord.BookedSeats(ctx, name)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": name, "booked_seats": seats})
}

// MyBookings lists the authenticated user's bookings, newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// bookingError maps coordinator and inventory errors onto HTTP
// responses. Conflicts name the unavailable seats; capacity failures
// carry both the requested and remaining counts.
func bookingError(c echo.Context, err error) error {
	var (
		conflict  *inventory.ConflictError
		capacity  *inventory.CapacityError
		invalid   *booking.InvalidSeatError
		duplicate *booking.DuplicateSeatError
		persist   *booking.PersistenceError
	)
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seats unavailable", "unavailable": conflict.Seats})
	case errors.As(err, &capacity):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "not enough seats",
			"requested": capacity.Requested,
			"remaining": capacity.Remaining,
		})
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, booking.ErrNoSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats requested"})
	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &duplicate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, inventory.ErrEventNotRegistered):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.As(err, &persist), errors.Is(err, booking.ErrInventoryInconsistency):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking storage failure"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
