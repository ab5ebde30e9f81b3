package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/database"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
)

// TicketRepo provides access to the tickets collection.  Seat
// uniqueness and capacity queries always exclude cancelled tickets: a
// cancelled ticket frees its seat for reissue.
type TicketRepo struct {
	col *mongo.Collection
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *mongo.Database) *TicketRepo {
	return &TicketRepo{col: db.Collection(database.ColTickets)}
}

// Insert stores a single ticket document.
func (r *TicketRepo) Insert(ctx context.Context, t *model.Ticket) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, t)
	return err
}

// InsertMany bulk-inserts a pre-validated batch of tickets as one
// unit and returns the number of inserted documents.
func (r *TicketRepo) InsertMany(ctx context.Context, tickets []model.Ticket) (int, error) {
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(tickets))
	for i := range tickets {
		if tickets[i].ID.IsZero() {
			tickets[i].ID = primitive.NewObjectID()
		}
		tickets[i].CreatedAt = now
		tickets[i].UpdatedAt = now
		docs = append(docs, tickets[i])
	}
	res, err := r.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// GetByID loads a ticket, returning ErrNotFound when absent.
func (r *TicketRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Ticket, error) {
	var t model.Ticket
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update applies a partial $set update with a timestamp refresh and
// returns the updated document.
func (r *TicketRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Ticket, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t model.Ticket
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete hard-deletes a ticket (admin operation, not a cancellation).
func (r *TicketRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SeatTaken reports whether a non-cancelled ticket already holds the
// seat on the flight.  exclude skips a ticket id (the ticket being
// updated) and may be the zero ObjectID.
func (r *TicketRepo) SeatTaken(ctx context.Context, flightID primitive.ObjectID, seatNumber string, exclude primitive.ObjectID) (bool, error) {
	q := bson.M{
		"flightId":   flightID,
		"seatNumber": seatNumber,
		"status":     bson.M{"$ne": model.TicketStatusCancelled},
	}
	if !exclude.IsZero() {
		q["_id"] = bson.M{"$ne": exclude}
	}
	n, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TakenSeats returns the set of seat numbers held by non-cancelled
// tickets on the flight.
func (r *TicketRepo) TakenSeats(ctx context.Context, flightID primitive.ObjectID) (map[string]bool, error) {
	opts := options.Find().SetProjection(bson.M{"seatNumber": 1})
	cursor, err := r.col.Find(ctx, bson.M{
		"flightId": flightID,
		"status":   bson.M{"$ne": model.TicketStatusCancelled},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		SeatNumber string `bson:"seatNumber"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(rows))
	for _, row := range rows {
		taken[row.SeatNumber] = true
	}
	return taken, nil
}

// CountActive counts non-cancelled tickets on the flight.
func (r *TicketRepo) CountActive(ctx context.Context, flightID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"flightId": flightID,
		"status":   bson.M{"$ne": model.TicketStatusCancelled},
	})
}

// BookedSeat is the seat-map projection of one active ticket.
type BookedSeat struct {
	SeatNumber string `bson:"seatNumber" json:"seatNumber"`
	Passenger  string `bson:"passengerName" json:"passengerName"`
	Status     string `bson:"status" json:"status"`
}

// BookedSeats projects seat number, passenger name and status for all
// non-cancelled tickets on the flight, sorted by seat number.
func (r *TicketRepo) BookedSeats(ctx context.Context, flightID primitive.ObjectID) ([]BookedSeat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"flightId": flightID,
			"status":   bson.M{"$ne": model.TicketStatusCancelled},
		}}},
		{{Key: "$project", Value: bson.M{
			"seatNumber":    1,
			"status":        1,
			"passengerName": "$passenger.fullName",
		}}},
		{{Key: "$sort", Value: bson.M{"seatNumber": 1}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	seats := []BookedSeat{}
	if err := cursor.All(ctx, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

// ListByBooking returns every ticket issued against a booking.
func (r *TicketRepo) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]model.Ticket, error) {
	cursor, err := r.col.Find(ctx, bson.M{"bookingId": bookingID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []model.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// StatusCounts groups tickets on a flight by status.
func (r *TicketRepo) StatusCounts(ctx context.Context, flightID primitive.ObjectID) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"flightId": flightID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}
