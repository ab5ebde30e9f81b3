// Package service implements the booking and ticketing business rules
// on top of the repository layer.  Failures surface as *Error values
// carrying a stable machine-readable code, a human message and the
// HTTP status the presentation layer should map them to.
package service

import (
	"fmt"
	"net/http"
)

// Error is a domain error.  Handlers match on Code, never on the
// message text.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string { return e.Message }

var (
	ErrUserNotFound    = &Error{Code: "USER_NOT_FOUND", Message: "user not found", Status: http.StatusNotFound}
	ErrFlightNotFound  = &Error{Code: "FLIGHT_NOT_FOUND", Message: "flight not found", Status: http.StatusNotFound}
	ErrBookingNotFound = &Error{Code: "BOOKING_NOT_FOUND", Message: "booking not found", Status: http.StatusNotFound}
	ErrTicketNotFound  = &Error{Code: "TICKET_NOT_FOUND", Message: "ticket not found", Status: http.StatusNotFound}
	ErrPromoNotFound   = &Error{Code: "PROMO_NOT_FOUND", Message: "promo code not found", Status: http.StatusNotFound}

	ErrInvalidQuantity = &Error{Code: "INVALID_QUANTITY", Message: "quantity must be at least 1", Status: http.StatusBadRequest}
	ErrInvalidPrice    = &Error{Code: "INVALID_PRICE", Message: "price must be greater than zero", Status: http.StatusBadRequest}
	ErrInvalidStatus   = &Error{Code: "INVALID_STATUS", Message: "unknown status value", Status: http.StatusBadRequest}

	ErrInsufficientSeats = &Error{Code: "INSUFFICIENT_SEATS", Message: "not enough available seats", Status: http.StatusBadRequest}
	ErrFareUnavailable   = &Error{Code: "FARE_CLASS_UNAVAILABLE", Message: "flight does not sell this fare class", Status: http.StatusBadRequest}

	// ErrSeatRace is returned when the guarded seat decrement matched
	// zero documents: seats were consumed concurrently after the
	// availability read.  The booking insert has been compensated.
	ErrSeatRace = &Error{Code: "SEAT_INVENTORY_CONFLICT", Message: "seat inventory changed, please retry", Status: http.StatusConflict}

	ErrBookingTerminal = &Error{Code: "BOOKING_TERMINAL", Message: "booking is already confirmed or cancelled", Status: http.StatusBadRequest}
	ErrPaymentRequired = &Error{Code: "PAYMENT_REQUIRED", Message: "must pay before confirmation", Status: http.StatusBadRequest}
	ErrBookingPaid     = &Error{Code: "BOOKING_PAID", Message: "paid bookings cannot be deleted", Status: http.StatusBadRequest}

	ErrSeatBooked        = &Error{Code: "SEAT_ALREADY_BOOKED", Message: "seat is already booked", Status: http.StatusBadRequest}
	ErrTicketUsed        = &Error{Code: "TICKET_USED", Message: "used tickets cannot be cancelled", Status: http.StatusBadRequest}
	ErrInvalidTransition = &Error{Code: "INVALID_TRANSITION", Message: "ticket status transition not allowed", Status: http.StatusBadRequest}

	ErrPromoUnusable = &Error{Code: "PROMO_UNUSABLE", Message: "promo code is inactive, expired or exhausted", Status: http.StatusBadRequest}
)

// DuplicateSeatError reports a seat number repeated within one batch.
func DuplicateSeatError(seat string) *Error {
	return &Error{
		Code:    "DUPLICATE_SEAT_IN_BATCH",
		Message: fmt.Sprintf("duplicate seat number %q in batch", seat),
		Status:  http.StatusBadRequest,
	}
}

// CancelWindowError reports a cancellation attempt inside the 24-hour
// cutoff, including how many hours remain before departure.
func CancelWindowError(hoursLeft float64) *Error {
	return &Error{
		Code:    "CANCEL_WINDOW_CLOSED",
		Message: fmt.Sprintf("cannot cancel ticket: only allowed before 24h from departure, %.1fh left", hoursLeft),
		Status:  http.StatusBadRequest,
	}
}
