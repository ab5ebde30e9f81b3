package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used across the repositories.
const (
	ColUsers         = "users"
	ColRefreshTokens = "refresh_tokens"
	ColFlights       = "flights"
	ColAircraft      = "aircraft"
	ColAirlines      = "airlines"
	ColAirports      = "airports"
	ColBookings      = "bookings"
	ColTickets       = "tickets"
	ColPayments      = "payments"
	ColPromoCodes    = "promo_codes"
)

// Open connects to MongoDB and verifies the connection with a ping.
func Open(uri, name string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client.Database(name), nil
}

// EnsureIndexes creates the unique and lookup indexes the application
// relies on.  Index creation is idempotent so this runs on every boot.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		ColUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		ColRefreshTokens: {
			{Keys: bson.D{{Key: "tokenHash", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		ColFlights: {
			{Keys: bson.D{{Key: "flightNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "departureAirportId", Value: 1}, {Key: "arrivalAirportId", Value: 1}, {Key: "departureTime", Value: 1}}},
		},
		ColBookings: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "flightId", Value: 1}}},
		},
		ColTickets: {
			{Keys: bson.D{{Key: "flightId", Value: 1}, {Key: "seatNumber", Value: 1}}},
			{Keys: bson.D{{Key: "bookingId", Value: 1}}},
		},
		ColPayments: {
			{Keys: bson.D{{Key: "bookingId", Value: 1}}},
		},
		ColPromoCodes: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		},
	}

	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
