package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PromoCode is an admin-managed discount code.  Codes are stored
// uppercased and must be unique.  UsedCount is incremented through a
// guarded update so a code can never exceed MaxUses.
type PromoCode struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code            string             `bson:"code" json:"code"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	DiscountPercent float64            `bson:"discountPercent" json:"discountPercent"`
	MaxUses         int                `bson:"maxUses" json:"maxUses"`
	UsedCount       int                `bson:"usedCount" json:"usedCount"`
	ValidFrom       time.Time          `bson:"validFrom" json:"validFrom"`
	ValidTo         time.Time          `bson:"validTo" json:"validTo"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Usable reports whether the code can be applied at the given moment.
// It checks the active flag, the validity window and the usage limit.
func (p *PromoCode) Usable(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidTo) {
		return false
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return false
	}
	return true
}

// Discount returns the total after applying the percentage discount.
func (p *PromoCode) Discount(total float64) float64 {
	if p.DiscountPercent <= 0 {
		return total
	}
	discounted := total * (1 - p.DiscountPercent/100)
	if discounted < 0 {
		return 0
	}
	return discounted
}
