package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/repository"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/service"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/utils"
)

// PaymentHandler records payment attempts against bookings.  There is
// no real gateway behind it; an admin (or a webhook acting as one)
// settles the payment by updating its status, which also flips the
// owning booking's payment status.
type PaymentHandler struct {
	Payments *repository.PaymentRepo
	Bookings *service.BookingService
}

func NewPaymentHandler(p *repository.PaymentRepo, b *service.BookingService) *PaymentHandler {
	return &PaymentHandler{Payments: p, Bookings: b}
}

type createPaymentReq struct {
	BookingID string `json:"bookingId"`
	Method    string `json:"method"`
}

func validMethod(m string) bool {
	switch m {
	case model.PaymentMethodCard, model.PaymentMethodBank, model.PaymentMethodEWallet:
		return true
	}
	return false
}

// Create opens a pending payment for the caller's own booking.  The
// amount is always the booking's total; clients cannot choose what to
// pay.
func (h *PaymentHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	bookingID, err := getObjectID(req.BookingID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bookingId"})
	}
	if !validMethod(req.Method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment method"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	booking, err := h.Bookings.Get(ctx, bookingID)
	if err != nil {
		return fail(c, err)
	}
	if booking.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if booking.Status != model.BookingStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not payable"})
	}
	if booking.PaymentStatus == model.PaymentStatusSuccess {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already paid"})
	}

	p := &model.Payment{
		BookingID: bookingID,
		UserID:    uid,
		Amount:    booking.TotalPrice,
		Method:    req.Method,
		Status:    model.PaymentStatusPending,
	}
	if err := h.Payments.Insert(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create payment failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Get returns one payment.  Customers may only read their own.
func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !isAdmin(c) {
		uid, err := getUserID(c)
		if err != nil || p.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	return c.JSON(http.StatusOK, p)
}

// ListMine pages through the caller's payment history.
func (h *PaymentHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page := bindPage(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payments, total, err := h.Payments.ListByUser(ctx, uid, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":      payments,
		"pagination": utils.NewPagination(page, total),
	})
}

// ListByBooking returns every payment attempt against one booking.
func (h *PaymentHandler) ListByBooking(c echo.Context) error {
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bookingId"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !isAdmin(c) {
		uid, uidErr := getUserID(c)
		if uidErr != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		booking, err := h.Bookings.Get(ctx, bookingID)
		if err != nil {
			return fail(c, err)
		}
		if booking.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	payments, err := h.Payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": payments, "count": len(payments)})
}

type settlePaymentReq struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

// Settle marks a payment success or failed.  A successful settlement
// propagates to the booking's payment status so the booking can then
// be confirmed.
func (h *PaymentHandler) Settle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req settlePaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != model.PaymentStatusSuccess && req.Status != model.PaymentStatusFailed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be success or failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.Status != model.PaymentStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment already settled"})
	}

	p, err = h.Payments.UpdateStatus(ctx, id, req.Status, req.TransactionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if req.Status == model.PaymentStatusSuccess {
		if _, err := h.Bookings.Update(ctx, p.BookingID, service.UpdateBookingParams{
			PaymentStatus: model.PaymentStatusSuccess,
		}); err != nil {
			return fail(c, err)
		}
	}
	return c.JSON(http.StatusOK, p)
}
