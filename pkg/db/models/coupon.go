package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Coupon is a discount code, optionally scoped to a pet type or category.
type Coupon struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Code                  string              `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	Description           *string             `gorm:"column:description"`
	DiscountType          enums.DiscountType  `gorm:"column:discount_type;not null"`
	Value                 decimal.Decimal     `gorm:"column:value;type:numeric(12,2);not null"`
	MinSubtotal           decimal.NullDecimal `gorm:"column:min_subtotal;type:numeric(12,2)"`
	ApplicablePetType     *string             `gorm:"column:applicable_pet_type"`
	ApplicableCategory    *string             `gorm:"column:applicable_category"`
	ApplicableSubcategory *string             `gorm:"column:applicable_subcategory"`
	StartDate             *time.Time          `gorm:"column:start_date"`
	EndDate               *time.Time          `gorm:"column:end_date"`
	Active                bool                `gorm:"column:active;not null"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
