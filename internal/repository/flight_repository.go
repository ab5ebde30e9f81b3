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

// FlightRepo provides access to the flights collection.  The seat
// counter mutations use guarded conditional updates so the counter can
// never be driven below zero, even under concurrent bookings.
type FlightRepo struct {
	col *mongo.Collection
}

// NewFlightRepo returns a new FlightRepo bound to the given database.
func NewFlightRepo(db *mongo.Database) *FlightRepo {
	return &FlightRepo{col: db.Collection(database.ColFlights)}
}

// Create inserts a new flight, returning ErrDuplicate when the flight
// number is already taken.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, f); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID loads a flight by id, returning ErrNotFound when absent.
func (r *FlightRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Flight, error) {
	var f model.Flight
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Update applies a partial $set update and returns the new document.
func (r *FlightRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Flight, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var f model.Flight
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &f, nil
}

// Delete removes a flight document.
func (r *FlightRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementSeats subtracts qty from the flight's availableSeats only
// when at least qty seats remain at write time.  When fareClass is
// non-empty the matching fare option's counter is debited under the
// same guard.  ErrSeatConflict is returned when the guard matched no
// document, i.e. the seats were consumed concurrently.
func (r *FlightRepo) DecrementSeats(ctx context.Context, id primitive.ObjectID, qty int, fareClass string) error {
	filter := bson.M{
		"_id":            id,
		"availableSeats": bson.M{"$gte": qty},
	}
	inc := bson.M{"availableSeats": -qty}
	if fareClass != "" {
		filter["fareOptions"] = bson.M{"$elemMatch": bson.M{
			"class":          fareClass,
			"availableSeats": bson.M{"$gte": qty},
		}}
		inc["fareOptions.$.availableSeats"] = -qty
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$inc": inc,
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrSeatConflict
	}
	return nil
}

// IncrementSeats restores qty seats to the flight (and fare option when
// given).  It mirrors an earlier decrement so no upper guard is needed.
func (r *FlightRepo) IncrementSeats(ctx context.Context, id primitive.ObjectID, qty int, fareClass string) error {
	filter := bson.M{"_id": id}
	inc := bson.M{"availableSeats": qty}
	if fareClass != "" {
		filter["fareOptions.class"] = fareClass
		inc["fareOptions.$.availableSeats"] = qty
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$inc": inc,
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FlightFilter captures the search parameters of the public flight
// search endpoint.  Zero values mean "no constraint".
type FlightFilter struct {
	AirlineID   primitive.ObjectID
	DepartureID primitive.ObjectID
	ArrivalID   primitive.ObjectID
	DateFrom    time.Time
	DateTo      time.Time
	MaxPrice    float64
	MinSeats    int
}

func (f FlightFilter) query() bson.M {
	q := bson.M{}
	if !f.AirlineID.IsZero() {
		q["airlineId"] = f.AirlineID
	}
	if !f.DepartureID.IsZero() {
		q["departureAirportId"] = f.DepartureID
	}
	if !f.ArrivalID.IsZero() {
		q["arrivalAirportId"] = f.ArrivalID
	}
	if !f.DateFrom.IsZero() || !f.DateTo.IsZero() {
		rng := bson.M{}
		if !f.DateFrom.IsZero() {
			rng["$gte"] = f.DateFrom
		}
		if !f.DateTo.IsZero() {
			rng["$lte"] = f.DateTo
		}
		q["departureTime"] = rng
	}
	if f.MaxPrice > 0 {
		q["price"] = bson.M{"$lte": f.MaxPrice}
	}
	if f.MinSeats > 0 {
		q["availableSeats"] = bson.M{"$gte": f.MinSeats}
	}
	return q
}

// Search returns flights matching the filter sorted by departure time,
// along with the total match count for pagination.
func (r *FlightRepo) Search(ctx context.Context, filter FlightFilter, page utils.PageRequest) ([]model.Flight, int64, error) {
	q := filter.query()
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "departureTime", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	flights := []model.Flight{}
	if err := cursor.All(ctx, &flights); err != nil {
		return nil, 0, err
	}
	return flights, total, nil
}
