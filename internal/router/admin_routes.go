package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/handler"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/middleware"
)

// RegisterAdmin wires the management surface: fleet reference data,
// the flight schedule, ticket issuance, booking oversight, payment
// settlement and promo codes.  Everything here demands the ADMIN role.
func RegisterAdmin(e *echo.Echo, f *handler.FlightHandler, fleet *handler.FleetHandler, b *handler.BookingHandler, t *handler.TicketHandler, p *handler.PaymentHandler, promo *handler.PromoHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	// Fleet reference data.
	g.POST("/airlines", fleet.CreateAirline)
	g.PATCH("/airlines/:id", fleet.UpdateAirline)
	g.DELETE("/airlines/:id", fleet.DeleteAirline)
	g.POST("/airports", fleet.CreateAirport)
	g.PATCH("/airports/:id", fleet.UpdateAirport)
	g.DELETE("/airports/:id", fleet.DeleteAirport)
	g.POST("/aircraft", fleet.CreateAircraft)
	g.PATCH("/aircraft/:id", fleet.UpdateAircraft)
	g.DELETE("/aircraft/:id", fleet.DeleteAircraft)

	// Schedule.  Deleting a flight is refused while non-cancelled
	// bookings still reference it.
	g.POST("/flights", f.Create)
	g.PATCH("/flights/:id", f.Update)
	g.DELETE("/flights/:id", f.Delete)

	// Booking oversight across all users.
	g.GET("/bookings", b.Search)
	g.GET("/bookings/stats", b.Stats)
	g.PATCH("/bookings/:id", b.Update)
	g.DELETE("/bookings/:id", b.Delete)

	// Ticket issuance and lifecycle.
	g.POST("/tickets", t.Create)
	g.POST("/tickets/batch", t.CreateBatch)
	g.PATCH("/tickets/:id", t.Update)
	g.DELETE("/tickets/:id", t.Delete)
	g.GET("/flights/:flightId/ticket-stats", t.Stats)

	// Payment settlement stands in for a gateway webhook.
	g.PATCH("/payments/:id", p.Settle)

	// Promo codes.
	g.POST("/promo-codes", promo.Create)
	g.GET("/promo-codes", promo.List)
	g.PATCH("/promo-codes/:id", promo.Update)
	g.DELETE("/promo-codes/:id", promo.Delete)
}
