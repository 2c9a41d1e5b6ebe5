package model

import (
	"time"

	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Discount is a coupon definition with a validity window, usage limit and
// min-purchase/max-discount caps. UsageCount never exceeds UsageLimit when
// a limit is set.
type Discount struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Code            string         `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	Type            DiscountType   `gorm:"type:varchar(20);not null" json:"type"`
	Value           float64        `gorm:"not null" json:"value"`
	MinimumPurchase float64        `gorm:"default:0" json:"minimum_purchase"`
	MaxDiscount     *float64       `json:"max_discount,omitempty"`
	ValidFrom       time.Time      `gorm:"not null" json:"valid_from"`
	ValidUntil      time.Time      `gorm:"not null" json:"valid_until"`
	UsageLimit      *int           `json:"usage_limit,omitempty"`
	UsageCount      int            `gorm:"default:0" json:"usage_count"`
	IsActive        bool           `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Discount) TableName() string {
	return "discounts"
}

// AmountFor computes the discount amount for a cart total, clamped to
// MaxDiscount when present. It assumes applicability has been checked.
func (d *Discount) AmountFor(cartTotal float64) float64 {
	var amount float64
	switch d.Type {
	case DiscountTypePercentage:
		amount = cartTotal * d.Value / 100
	case DiscountTypeFixed:
		amount = d.Value
	}
	if d.MaxDiscount != nil && amount > *d.MaxDiscount {
		amount = *d.MaxDiscount
	}
	if amount > cartTotal {
		amount = cartTotal
	}
	return amount
}
