package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fare class names used inside a flight's fare options.
const (
	FareClassEconomy  = "economy"
	FareClassBusiness = "business"
	FareClassFirst    = "first"
)

// FareOption is a priced seating class embedded in a flight document.
// Each class keeps its own seat counter so a flight can sell economy
// and business inventory independently.
type FareOption struct {
	Class          string   `bson:"class" json:"class"`
	Price          float64  `bson:"price" json:"price"`
	AvailableSeats int      `bson:"availableSeats" json:"availableSeats"`
	Perks          []string `bson:"perks,omitempty" json:"perks,omitempty"`
}

// Flight is the single source of truth for seat capacity.  The flat
// AvailableSeats counter is debited by booking creation through a
// guarded conditional update and must never go negative.
type Flight struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FlightNumber   string             `bson:"flightNumber" json:"flightNumber"`
	AirlineID      primitive.ObjectID `bson:"airlineId" json:"airlineId"`
	AircraftID     primitive.ObjectID `bson:"aircraftId" json:"aircraftId"`
	DepartureID    primitive.ObjectID `bson:"departureAirportId" json:"departureAirportId"`
	ArrivalID      primitive.ObjectID `bson:"arrivalAirportId" json:"arrivalAirportId"`
	DepartureTime  time.Time          `bson:"departureTime" json:"departureTime"`
	ArrivalTime    time.Time          `bson:"arrivalTime" json:"arrivalTime"`
	Duration       int                `bson:"duration" json:"duration"` // minutes
	Price          float64            `bson:"price" json:"price"`       // base fare
	AvailableSeats int                `bson:"availableSeats" json:"availableSeats"`
	FareOptions    []FareOption       `bson:"fareOptions,omitempty" json:"fareOptions,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FareByClass returns the fare option for the given class name, or nil
// when the flight does not sell that class.
func (f *Flight) FareByClass(class string) *FareOption {
	for i := range f.FareOptions {
		if f.FareOptions[i].Class == class {
			return &f.FareOptions[i]
		}
	}
	return nil
}
