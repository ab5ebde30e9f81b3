package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/database"
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/model"
)

// TokenRepo persists hashed refresh tokens.  Only the SHA-256 hash of
// a token is ever written; validation is done by hash lookup.
type TokenRepo struct {
	col *mongo.Collection
}

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *mongo.Database) *TokenRepo {
	return &TokenRepo{col: db.Collection(database.ColRefreshTokens)}
}

// StoreRefresh saves a refresh token hash for the user.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID primitive.ObjectID, hash string, exp time.Time) error {
	_, err := r.col.InsertOne(ctx, model.RefreshToken{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

// ValidateRefresh returns the owning user id when the hash matches an
// unexpired, unrevoked token.  Any other case yields ErrNotFound.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, hash string) (primitive.ObjectID, error) {
	var t model.RefreshToken
	err := r.col.FindOne(ctx, bson.M{
		"tokenHash": hash,
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
		"revokedAt": bson.M{"$exists": false},
	}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, ErrNotFound
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return t.UserID, nil
}

// RevokeByHash marks a single token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, hash string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"tokenHash": hash},
		bson.M{"$set": bson.M{"revokedAt": time.Now().UTC()}},
	)
	return err
}

// RevokeAllForUser revokes every active token owned by the user,
// logging them out of all sessions.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"userId": userID, "revokedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"revokedAt": time.Now().UTC()}},
	)
	return err
}
