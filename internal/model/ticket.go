package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ticket status values.  A cancelled ticket frees its seat number for
// reissue; used tickets are terminal.
const (
	TicketStatusUnused    = "unused"
	TicketStatusUsed      = "used"
	TicketStatusCancelled = "cancelled"
)

// Passenger holds the identity details embedded in a ticket.  One
// passenger record per ticket; tickets are never shared.
type Passenger struct {
	FullName       string    `bson:"fullName" json:"fullName"`
	Email          string    `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber    string    `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	DateOfBirth    time.Time `bson:"dateOfBirth" json:"dateOfBirth"`
	Nationality    string    `bson:"nationality" json:"nationality"`
	PassportNumber string    `bson:"passportNumber" json:"passportNumber"`
}

// Ticket is one seat assignment for one passenger, derived from a
// booking.  No two non-cancelled tickets on the same flight may share a
// seat number.
type Ticket struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BookingID  primitive.ObjectID `bson:"bookingId" json:"bookingId"`
	FlightID   primitive.ObjectID `bson:"flightId" json:"flightId"`
	SeatNumber string             `bson:"seatNumber" json:"seatNumber"`
	FareClass  string             `bson:"fareClass,omitempty" json:"fareClass,omitempty"`
	Passenger  Passenger          `bson:"passenger" json:"passenger"`
	Price      float64            `bson:"price" json:"price"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the ticket still occupies its seat.
func (t *Ticket) Active() bool { return t.Status != TicketStatusCancelled }
