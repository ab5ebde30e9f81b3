// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking transitions to
// confirmed.  It contains enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID    string  `json:"booking_id"`
	UserID       string  `json:"user_id"`
	FlightID     string  `json:"flight_id"`
	FlightNumber string  `json:"flight_number"`
	Quantity     int     `json:"quantity"`
	FareClass    string  `json:"fare_class,omitempty"`
	TotalPrice   float64 `json:"total_price"`
	ConfirmedAt  string  `json:"confirmed_at"`
}
