package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role names stored in the users collection and embedded in JWT claims.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User represents an account document in the `users` collection.  The
// password is stored only as a bcrypt hash; the json tag hides it so a
// user document can be returned directly from handlers.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	FullName     string             `bson:"fullName" json:"fullName"`
	PhoneNumber  string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RefreshToken models an entry in the `refresh_tokens` collection.  Each
// refresh token belongs to a user and contains metadata for expiry and
// revocation.  The plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	TokenHash string             `bson:"tokenHash" json:"-"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	RevokedAt *time.Time         `bson:"revokedAt,omitempty" json:"revokedAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
