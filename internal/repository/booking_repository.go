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
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/utils"
)

// BookingRepo provides CRUD and aggregate reads for bookings.
type BookingRepo struct {
	col *mongo.Collection
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *mongo.Database) *BookingRepo {
	return &BookingRepo{col: db.Collection(database.ColBookings)}
}

// Insert stores a new booking document.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, b)
	return err
}

// GetByID loads a booking, returning ErrNotFound when absent.
func (r *BookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Booking, error) {
	var b model.Booking
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Update applies a partial $set update with a timestamp refresh and
// returns the updated document.
func (r *BookingRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Booking, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b model.Booking
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a booking document and returns it, so the caller can
// restore the flight's seat count from the deleted quantity.
func (r *BookingRepo) Delete(ctx context.Context, id primitive.ObjectID) (*model.Booking, error) {
	var b model.Booking
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CountActiveByFlight counts non-cancelled bookings referencing a
// flight.  Used to refuse flight deletion while bookings remain.
func (r *BookingRepo) CountActiveByFlight(ctx context.Context, flightID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"flightId": flightID,
		"status":   bson.M{"$ne": model.BookingStatusCancelled},
	})
}

// BookingFilter captures the booking search parameters.  Zero values
// mean "no constraint".
type BookingFilter struct {
	UserID        primitive.ObjectID
	FlightID      primitive.ObjectID
	Status        string
	PaymentStatus string
	From          time.Time
	To            time.Time
	MinPrice      float64
	MaxPrice      float64
}

func (f BookingFilter) query() bson.M {
	q := bson.M{}
	if !f.UserID.IsZero() {
		q["userId"] = f.UserID
	}
	if !f.FlightID.IsZero() {
		q["flightId"] = f.FlightID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		q["paymentStatus"] = f.PaymentStatus
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		rng := bson.M{}
		if !f.From.IsZero() {
			rng["$gte"] = f.From
		}
		if !f.To.IsZero() {
			rng["$lte"] = f.To
		}
		q["bookingTime"] = rng
	}
	if f.MinPrice > 0 || f.MaxPrice > 0 {
		rng := bson.M{}
		if f.MinPrice > 0 {
			rng["$gte"] = f.MinPrice
		}
		if f.MaxPrice > 0 {
			rng["$lte"] = f.MaxPrice
		}
		q["totalPrice"] = rng
	}
	return q
}

// Search returns bookings matching the filter, newest first, with the
// total match count for pagination.
func (r *BookingRepo) Search(ctx context.Context, filter BookingFilter, page utils.PageRequest) ([]model.Booking, int64, error) {
	q := filter.query()
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "bookingTime", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	bookings := []model.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// BookingStats aggregates booking counts grouped by status and payment
// status plus the summed revenue of successfully paid bookings.
type BookingStats struct {
	ByStatus        map[string]int64 `json:"byStatus"`
	ByPaymentStatus map[string]int64 `json:"byPaymentStatus"`
	Revenue         float64          `json:"revenue"`
}

// Stats runs the grouping aggregations for the admin dashboard.
func (r *BookingRepo) Stats(ctx context.Context) (*BookingStats, error) {
	stats := &BookingStats{
		ByStatus:        map[string]int64{},
		ByPaymentStatus: map[string]int64{},
	}

	byStatus, err := r.groupCount(ctx, "$status")
	if err != nil {
		return nil, err
	}
	stats.ByStatus = byStatus

	byPayment, err := r.groupCount(ctx, "$paymentStatus")
	if err != nil {
		return nil, err
	}
	stats.ByPaymentStatus = byPayment

	// Revenue: sum totalPrice over successfully paid bookings.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paymentStatus": model.PaymentStatusSuccess}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$totalPrice"}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rev []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rev); err != nil {
		return nil, err
	}
	if len(rev) > 0 {
		stats.Revenue = rev[0].Revenue
	}
	return stats, nil
}

func (r *BookingRepo) groupCount(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
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
