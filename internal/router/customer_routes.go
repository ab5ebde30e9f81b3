package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/handler"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/middleware"
)

// RegisterCustomer wires the endpoints an authenticated customer uses:
// the booking lifecycle, ticket reads, payments and the promo validity
// check.  All routes require a valid access token; both roles may call
// them, since an admin is also a customer of the API.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, t *handler.TicketHandler, p *handler.PaymentHandler, promo *handler.PromoHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))

	// Bookings.  Creation debits the flight's seat counter; deletion is
	// only allowed while the booking is pending and unpaid.
	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.ListMine)
	g.GET("/bookings/:id", b.Get)
	g.PATCH("/bookings/:id", b.Update)
	g.DELETE("/bookings/:id", b.Delete)

	// Tickets.  Customers read their tickets and check the cancellation
	// window; issuance and mutation are admin operations.
	g.GET("/tickets/:id", t.Get)
	g.GET("/tickets/:id/can-cancel", t.CanCancel)
	g.GET("/bookings/:bookingId/tickets", t.ListByBooking)
	g.GET("/flights/:flightId/available-seats", t.AvailableSeats)
	g.GET("/flights/:flightId/booked-seats", t.BookedSeats)

	// Payments.
	g.POST("/payments", p.Create)
	g.GET("/payments", p.ListMine)
	g.GET("/payments/:id", p.Get)
	g.GET("/bookings/:bookingId/payments", p.ListByBooking)

	// Promo pre-check before checkout.
	g.GET("/promo-codes/:code/validate", promo.Validate)
}
