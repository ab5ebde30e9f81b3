package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/service"
)

// TicketHandler exposes ticket issuance and lifecycle endpoints.  Seat
// uniqueness and the cancellation cutoff are enforced in the service.
type TicketHandler struct {
	Svc *service.TicketService
}

func NewTicketHandler(svc *service.TicketService) *TicketHandler {
	return &TicketHandler{Svc: svc}
}

type ticketItemReq struct {
	SeatNumber string          `json:"seatNumber"`
	FareClass  string          `json:"fareClass"`
	Passenger  model.Passenger `json:"passenger"`
	Price      float64         `json:"price"`
	Status     string          `json:"status"`
}

func (r ticketItemReq) input() service.TicketInput {
	return service.TicketInput{
		SeatNumber: r.SeatNumber,
		FareClass:  r.FareClass,
		Passenger:  r.Passenger,
		Price:      r.Price,
		Status:     r.Status,
	}
}

type createTicketReq struct {
	BookingID string `json:"bookingId"`
	FlightID  string `json:"flightId"`
	ticketItemReq
}

// Create issues one ticket.
func (h *TicketHandler) Create(c echo.Context) error {
	var req createTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	bookingID, err := getObjectID(req.BookingID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bookingId"})
	}
	flightID, err := getObjectID(req.FlightID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}
	if req.SeatNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatNumber required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ticket, err := h.Svc.Create(ctx, bookingID, flightID, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

type createBatchReq struct {
	BookingID string          `json:"bookingId"`
	FlightID  string          `json:"flightId"`
	Tickets   []ticketItemReq `json:"tickets"`
}

// CreateBatch issues several tickets atomically: either every ticket
// in the request is valid and inserted, or none are.
func (h *TicketHandler) CreateBatch(c echo.Context) error {
	var req createBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	bookingID, err := getObjectID(req.BookingID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bookingId"})
	}
	flightID, err := getObjectID(req.FlightID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}
	if len(req.Tickets) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tickets required"})
	}
	inputs := make([]service.TicketInput, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		if t.SeatNumber == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatNumber required"})
		}
		inputs = append(inputs, t.input())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tickets, err := h.Svc.CreateBatch(ctx, bookingID, flightID, inputs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"items": tickets, "count": len(tickets)})
}

// Get returns one ticket.
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticket, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

type updateTicketReq struct {
	SeatNumber string           `json:"seatNumber"`
	Status     string           `json:"status"`
	Price      *float64         `json:"price"`
	Passenger  *model.Passenger `json:"passenger"`
}

// Update reassigns a seat, corrects a price or moves the ticket
// through its status transitions.
func (h *TicketHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatNumber == "" && req.Status == "" && req.Price == nil && req.Passenger == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ticket, err := h.Svc.Update(ctx, id, service.UpdateTicketParams{
		SeatNumber: req.SeatNumber,
		Status:     req.Status,
		Price:      req.Price,
		Passenger:  req.Passenger,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// Delete hard-deletes a ticket.  Admin only; the cancellation cutoff
// does not apply here.
func (h *TicketHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CanCancel reports whether the ticket is still inside the
// cancellation window, with the hours remaining until departure.
func (h *TicketHandler) CanCancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	check, err := h.Svc.CanCancel(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, check)
}

// AvailableSeats derives a flight's remaining capacity from its
// non-cancelled ticket count.
func (h *TicketHandler) AvailableSeats(c echo.Context) error {
	flightID, err := pathID(c, "flightId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	avail, err := h.Svc.AvailableSeats(ctx, flightID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, avail)
}

// BookedSeats lists the occupied seat numbers on a flight with the
// passenger each belongs to.
func (h *TicketHandler) BookedSeats(c echo.Context) error {
	flightID, err := pathID(c, "flightId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Svc.BookedSeats(ctx, flightID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": seats, "count": len(seats)})
}

// ListByBooking returns every ticket issued against one booking.
func (h *TicketHandler) ListByBooking(c echo.Context) error {
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bookingId"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Svc.ListByBooking(ctx, bookingID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tickets, "count": len(tickets)})
}

// Stats returns per-status ticket counts for a flight.
func (h *TicketHandler) Stats(c echo.Context) error {
	flightID, err := pathID(c, "flightId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Svc.Stats(ctx, flightID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}
