package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validPromo() PromoCode {
	return PromoCode{
		Code:            "SUMMER20",
		DiscountPercent: 20,
		MaxUses:         100,
		ValidFrom:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:         time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		IsActive:        true,
	}
}

func TestPromoUsable(t *testing.T) {
	inWindow := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	p := validPromo()
	assert.True(t, p.Usable(inWindow))

	inactive := validPromo()
	inactive.IsActive = false
	assert.False(t, inactive.Usable(inWindow))

	early := validPromo()
	assert.False(t, early.Usable(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))

	late := validPromo()
	assert.False(t, late.Usable(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)))

	exhausted := validPromo()
	exhausted.UsedCount = exhausted.MaxUses
	assert.False(t, exhausted.Usable(inWindow))

	// MaxUses <= 0 means unlimited.
	unlimited := validPromo()
	unlimited.MaxUses = 0
	unlimited.UsedCount = 10000
	assert.True(t, unlimited.Usable(inWindow))
}

func TestPromoDiscount(t *testing.T) {
	p := validPromo()
	assert.InDelta(t, 80.0, p.Discount(100), 0.001)
	assert.InDelta(t, 0.0, p.Discount(0), 0.001)

	full := validPromo()
	full.DiscountPercent = 100
	assert.InDelta(t, 0.0, full.Discount(250), 0.001)
}
