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

// PromoRepo provides access to the promo_codes collection.  Redeeming
// a code is a single guarded update so the usage limit cannot be
// overrun by concurrent requests.
type PromoRepo struct {
	col *mongo.Collection
}

// NewPromoRepo returns a new PromoRepo bound to the given database.
func NewPromoRepo(db *mongo.Database) *PromoRepo {
	return &PromoRepo{col: db.Collection(database.ColPromoCodes)}
}

// Create inserts a new promo code, returning ErrDuplicate when the
// code is already registered.
func (r *PromoRepo) Create(ctx context.Context, p *model.PromoCode) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// GetByCode loads a promo code by its (uppercased) code string.
func (r *PromoRepo) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var p model.PromoCode
	err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies a partial $set update and returns the new document.
func (r *PromoRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.PromoCode, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p model.PromoCode
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a promo code document.
func (r *PromoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns promo codes, newest first, with the total count.
func (r *PromoRepo) List(ctx context.Context, page utils.PageRequest) ([]model.PromoCode, int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)
	codes := []model.PromoCode{}
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

// Redeem increments a code's usedCount only while the code is active,
// inside its validity window and under its usage limit, all checked at
// write time.  ErrSeatConflict-style semantics: ErrConflict is
// returned when the guard matched no document and the code exists;
// ErrNotFound when there is no such code at all.
func (r *PromoRepo) Redeem(ctx context.Context, code string) (*model.PromoCode, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"code":      code,
		"isActive":  true,
		"validFrom": bson.M{"$lte": now},
		"validTo":   bson.M{"$gte": now},
		"$expr": bson.M{"$or": bson.A{
			bson.M{"$lte": bson.A{"$maxUses", 0}},
			bson.M{"$lt": bson.A{"$usedCount", "$maxUses"}},
		}},
	}
	update := bson.M{
		"$inc": bson.M{"usedCount": 1},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p model.PromoCode
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// The guard filter does not tell us whether the code is missing
		// or merely unusable, so look it up once more.
		if _, getErr := r.GetByCode(ctx, code); errors.Is(getErr, ErrNotFound) {
			return nil, ErrNotFound
		} else if getErr != nil {
			return nil, getErr
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
