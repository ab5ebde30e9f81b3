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

// AirlineRepo provides CRUD for the airlines collection.
type AirlineRepo struct{ col *mongo.Collection }

// NewAirlineRepo returns a new AirlineRepo bound to the given database.
func NewAirlineRepo(db *mongo.Database) *AirlineRepo {
	return &AirlineRepo{col: db.Collection(database.ColAirlines)}
}

func (r *AirlineRepo) Create(ctx context.Context, a *model.Airline) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *AirlineRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Airline, error) {
	var a model.Airline
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AirlineRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Airline, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a model.Airline
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AirlineRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AirlineRepo) List(ctx context.Context, page utils.PageRequest) ([]model.Airline, int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)
	items := []model.Airline{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// AirportRepo provides CRUD for the airports collection.
type AirportRepo struct{ col *mongo.Collection }

// NewAirportRepo returns a new AirportRepo bound to the given database.
func NewAirportRepo(db *mongo.Database) *AirportRepo {
	return &AirportRepo{col: db.Collection(database.ColAirports)}
}

func (r *AirportRepo) Create(ctx context.Context, a *model.Airport) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *AirportRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Airport, error) {
	var a model.Airport
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AirportRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Airport, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a model.Airport
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AirportRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches airports by IATA code, city or country.  An empty
// term lists everything alphabetically.
func (r *AirportRepo) Search(ctx context.Context, term string, page utils.PageRequest) ([]model.Airport, int64, error) {
	q := bson.M{}
	if term != "" {
		rx := primitive.Regex{Pattern: term, Options: "i"}
		q["$or"] = bson.A{
			bson.M{"code": rx},
			bson.M{"city": rx},
			bson.M{"country": rx},
			bson.M{"name": rx},
		}
	}
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)
	items := []model.Airport{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// AircraftRepo provides CRUD for the aircraft collection.
type AircraftRepo struct{ col *mongo.Collection }

// NewAircraftRepo returns a new AircraftRepo bound to the given database.
func NewAircraftRepo(db *mongo.Database) *AircraftRepo {
	return &AircraftRepo{col: db.Collection(database.ColAircraft)}
}

func (r *AircraftRepo) Create(ctx context.Context, a *model.Aircraft) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *AircraftRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Aircraft, error) {
	var a model.Aircraft
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AircraftRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Aircraft, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a model.Aircraft
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AircraftRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AircraftRepo) List(ctx context.Context, airlineID primitive.ObjectID, page utils.PageRequest) ([]model.Aircraft, int64, error) {
	q := bson.M{}
	if !airlineID.IsZero() {
		q["airlineId"] = airlineID
	}
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "model", Value: 1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)
	items := []model.Aircraft{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
