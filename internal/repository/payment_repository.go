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

// PaymentRepo provides access to the payments collection.
type PaymentRepo struct {
	col *mongo.Collection
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *mongo.Database) *PaymentRepo {
	return &PaymentRepo{col: db.Collection(database.ColPayments)}
}

// Insert stores a new payment attempt.
func (r *PaymentRepo) Insert(ctx context.Context, p *model.Payment) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, p)
	return err
}

// GetByID loads a payment, returning ErrNotFound when absent.
func (r *PaymentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Payment, error) {
	var p model.Payment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStatus transitions a payment's status, setting paidAt when the
// payment succeeds, and returns the updated document.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, transactionID string) (*model.Payment, error) {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if transactionID != "" {
		set["transactionId"] = transactionID
	}
	if status == model.PaymentStatusSuccess {
		set["paidAt"] = time.Now().UTC()
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p model.Payment
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns the user's payments, newest first, with the total
// count for pagination.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, page utils.PageRequest) ([]model.Payment, int64, error) {
	q := bson.M{"userId": userID}
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)
	payments := []model.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListByBooking returns all payment attempts against a booking.
func (r *PaymentRepo) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]model.Payment, error) {
	cursor, err := r.col.Find(ctx, bson.M{"bookingId": bookingID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	payments := []model.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}
