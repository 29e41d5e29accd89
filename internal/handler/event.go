package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinematick/internal/inventory"
	"github.com/iliyamo/cinematick/internal/model"
	"github.com/iliyamo/cinematick/internal/repository"
)

// EventHandler exposes event browsing for everyone and event
// management for admins. Creating or resizing an event also registers
// or resizes its entry in the inventory index so bookings see the
// change immediately.
type EventHandler struct {
	Events *repository.EventRepo
	Inv    *inventory.Store
}

func NewEventHandler(events *repository.EventRepo, inv *inventory.Store) *EventHandler {
	return &EventHandler{Events: events, Inv: inv}
}

// ----- DTOs -----

type createEventReq struct {
	Name               string `json:"name"`
	Venue              string `json:"venue"`
	Category           string `json:"category"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	VIPPriceCents      uint32 `json:"vip_price_cents"`
	StandardPriceCents uint32 `json:"standard_price_cents"`
	TotalSeats         uint32 `json:"total_seats"`
}

type patchEventReq struct {
	Date               *string `json:"date"`
	Time               *string `json:"time"`
	Venue              *string `json:"venue"`
	Category           *string `json:"category"`
	VIPPriceCents      *uint32 `json:"vip_price_cents"`
	StandardPriceCents *uint32 `json:"standard_price_cents"`
	TotalSeats         *uint32 `json:"total_seats"`
}

// maxGridSeats is the number of labels on the seat grid; an event
// cannot sell more seats than the grid has.
const maxGridSeats = uint32(model.LastRow-model.FirstRow+1) * model.SeatsPerRow

// Create registers a new event. Venue and category are created by
// name when unknown. Admin only.
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Venue) == "" || strings.TrimSpace(req.Category) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/venue/category required"})
	}
	if req.Date == "" || req.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date/time required"})
	}
	if req.TotalSeats == 0 || req.TotalSeats > maxGridSeats {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats out of range"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := &model.Event{
		Name:               req.Name,
		Date:               req.Date,
		Time:               req.Time,
		VIPPriceCents:      req.VIPPriceCents,
		StandardPriceCents: req.StandardPriceCents,
		TotalSeats:         req.TotalSeats,
	}
	if err := h.Events.Create(ctx, ev, req.Venue, req.Category); err != nil {
		if errors.Is(err, repository.ErrEventExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	h.Inv.Register(ev.ID, int(ev.TotalSeats), nil)

	return c.JSON(http.StatusCreated, echo.Map{"id": ev.ID, "name": ev.Name})
}

// Patch partially updates an event. A capacity change is applied to
// the inventory index first so it can be rejected when it would drop
// below the number of seats already sold; the database row only
// changes after the index accepted the new size.
func (h *EventHandler) Patch(c echo.Context) error {
	name := c.Param("name")
	var req patchEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	patch := &repository.EventPatch{
		Date:               req.Date,
		Time:               req.Time,
		Venue:              req.Venue,
		Category:           req.Category,
		VIPPriceCents:      req.VIPPriceCents,
		StandardPriceCents: req.StandardPriceCents,
		TotalSeats:         req.TotalSeats,
	}
	if patch.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}
	if req.TotalSeats != nil && (*req.TotalSeats == 0 || *req.TotalSeats > maxGridSeats) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats out of range"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.TotalSeats != nil {
		if err := h.Inv.Resize(ev.ID, int(*req.TotalSeats)); err != nil {
			if errors.Is(err, inventory.ErrCapacityBelowHeld) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "total_seats below seats already booked"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resize failed"})
		}
	}

	if err := h.Events.Update(ctx, name, patch); err != nil {
		if req.TotalSeats != nil {
			// Put the index back; the row kept its old capacity.
			_ = h.Inv.Resize(ev.ID, int(ev.TotalSeats))
		}
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"name": name, "updated": true})
}

// List returns all events, optionally filtered by ?category=.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx, c.QueryParam("category"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Get returns one event by name together with its live remaining
// capacity from the inventory index.
func (h *EventHandler) Get(c echo.Context) error {
	name := c.Param("name")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Events.GetDetailByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	remaining, err := h.Inv.Remaining(d.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "inventory lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": d, "remaining_seats": remaining})
}

// Categories returns all known category names.
func (h *EventHandler) Categories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Events.ListCategories(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}
