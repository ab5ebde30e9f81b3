package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status values.  Confirmed and Cancelled are terminal: once a
// booking reaches either state no further mutation is allowed.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Payment status values shared by bookings and payment documents.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Booking represents a customer's reservation of Quantity seats on one
// flight, prior to individual seat and passenger assignment.  Creating
// a booking debits the flight's availableSeats counter; cancelling or
// deleting it while pending restores the same quantity.
type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	FlightID      primitive.ObjectID `bson:"flightId" json:"flightId"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	FareClass     string             `bson:"fareClass,omitempty" json:"fareClass,omitempty"`
	Status        string             `bson:"status" json:"status"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice"`
	PromoCode     string             `bson:"promoCode,omitempty" json:"promoCode,omitempty"`
	BookingTime   time.Time          `bson:"bookingTime" json:"bookingTime"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Terminal reports whether the booking can still be mutated.
func (b *Booking) Terminal() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusCancelled
}
