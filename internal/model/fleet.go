package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Airline is admin reference data referenced by flights.
type Airline struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Code      string             `bson:"code" json:"code"` // IATA carrier code, e.g. "VN"
	Country   string             `bson:"country,omitempty" json:"country,omitempty"`
	LogoURL   string             `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SeatClassCapacity is the configured cabin size for one class on an
// aircraft.  Flight fare options must not offer more seats than this.
type SeatClassCapacity struct {
	Class    string `bson:"class" json:"class"`
	Capacity int    `bson:"capacity" json:"capacity"`
}

// Aircraft describes an airframe operated by an airline.
type Aircraft struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	AirlineID    primitive.ObjectID  `bson:"airlineId" json:"airlineId"`
	Model        string              `bson:"model" json:"model"`
	Registration string              `bson:"registration" json:"registration"`
	Capacity     int                 `bson:"capacity" json:"capacity"`
	ClassSeats   []SeatClassCapacity `bson:"classSeats,omitempty" json:"classSeats,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Airport is admin reference data for departure and arrival points.
type Airport struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Code      string             `bson:"code" json:"code"` // IATA airport code, e.g. "SGN"
	City      string             `bson:"city" json:"city"`
	Country   string             `bson:"country" json:"country"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
