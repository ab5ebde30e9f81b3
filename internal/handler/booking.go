package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP.  All the
// seat-inventory rules live in the service; the handler only binds,
// authorizes and translates errors.
type BookingHandler struct {
	Svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

type createBookingReq struct {
	FlightID  string `json:"flightId"`
	Quantity  int    `json:"quantity"`
	FareClass string `json:"fareClass"`
	PromoCode string `json:"promoCode"`
}

// Create books seats on a flight for the authenticated user.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	flightID, err := getObjectID(req.FlightID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	booking, err := h.Svc.Create(ctx, service.CreateBookingParams{
		UserID:    uid,
		FlightID:  flightID,
		Quantity:  req.Quantity,
		FareClass: req.FareClass,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// Get returns a booking.  Customers may only read their own.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booking, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if !isAdmin(c) {
		uid, err := getUserID(c)
		if err != nil || booking.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	return c.JSON(http.StatusOK, booking)
}

type updateBookingReq struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// Update transitions a booking's status or payment status.
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if !isAdmin(c) {
		// Customers can cancel their own booking; anything else is an
		// admin operation.
		uid, uidErr := getUserID(c)
		if uidErr != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		current, err := h.Svc.Get(ctx, id)
		if err != nil {
			return fail(c, err)
		}
		if current.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		if req.Status != model.BookingStatusCancelled || req.PaymentStatus != "" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only cancellation is allowed"})
		}
	}

	booking, err := h.Svc.Update(ctx, id, service.UpdateBookingParams{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Delete removes an unpaid pending booking and restores its seats.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if !isAdmin(c) {
		uid, uidErr := getUserID(c)
		if uidErr != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		current, err := h.Svc.Get(ctx, id)
		if err != nil {
			return fail(c, err)
		}
		if current.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMine pages through the caller's own bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	filter, httpErr := h.bindFilter(c)
	if httpErr != nil {
		return httpErr
	}
	filter.UserID = uid
	return h.list(c, filter)
}

// Search is the admin view across all bookings.
func (h *BookingHandler) Search(c echo.Context) error {
	filter, httpErr := h.bindFilter(c)
	if httpErr != nil {
		return httpErr
	}
	var err error
	if filter.UserID, err = queryID(c, "userId"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid userId"})
	}
	return h.list(c, filter)
}

// Stats aggregates counts by status / payment status plus the revenue
// from successfully paid bookings.
func (h *BookingHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *BookingHandler) bindFilter(c echo.Context) (repository.BookingFilter, error) {
	var filter repository.BookingFilter
	var err error
	if filter.FlightID, err = queryID(c, "flightId"); err != nil {
		return filter, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}
	filter.Status = c.QueryParam("status")
	filter.PaymentStatus = c.QueryParam("paymentStatus")
	if s := c.QueryParam("from"); s != "" {
		if filter.From, err = time.Parse(time.RFC3339, s); err != nil {
			return filter, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
		}
	}
	if s := c.QueryParam("to"); s != "" {
		if filter.To, err = time.Parse(time.RFC3339, s); err != nil {
			return filter, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
		}
	}
	if s := c.QueryParam("minPrice"); s != "" {
		if filter.MinPrice, err = strconv.ParseFloat(s, 64); err != nil {
			return filter, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid minPrice"})
		}
	}
	if s := c.QueryParam("maxPrice"); s != "" {
		if filter.MaxPrice, err = strconv.ParseFloat(s, 64); err != nil {
			return filter, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid maxPrice"})
		}
	}
	return filter, nil
}

func (h *BookingHandler) list(c echo.Context, filter repository.BookingFilter) error {
	page := bindPage(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	bookings, pagination, err := h.Svc.Search(ctx, filter, page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      bookings,
		"pagination": pagination,
	})
}
