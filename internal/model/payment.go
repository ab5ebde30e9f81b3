package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment method names accepted by the payments endpoints.
const (
	PaymentMethodCard    = "card"
	PaymentMethodBank    = "bank_transfer"
	PaymentMethodEWallet = "e_wallet"
)

// Payment records one payment attempt against a booking.  Status uses
// the shared payment status values; marking a payment successful also
// flips the owning booking's paymentStatus.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BookingID     primitive.ObjectID `bson:"bookingId" json:"bookingId"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Amount        float64            `bson:"amount" json:"amount"`
	Method        string             `bson:"method" json:"method"`
	Status        string             `bson:"status" json:"status"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaidAt        *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
