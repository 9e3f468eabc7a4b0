package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one (user, product, variant) line of a cart with the price
// captured when the line was first added.
type CartItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:cart_items_user_id_idx"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariantID  *string         `gorm:"column:variant_id"`
	Quantity   int             `gorm:"column:quantity;not null"`
	PriceAtAdd decimal.Decimal `gorm:"column:price_at_add;type:numeric(12,2);not null"`
	Product    *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Variant returns the variant id or the empty string.
func (c *CartItem) Variant() string {
	if c == nil || c.VariantID == nil {
		return ""
	}
	return *c.VariantID
}

// LineTotal is price snapshot times quantity.
func (c *CartItem) LineTotal() decimal.Decimal {
	return c.PriceAtAdd.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
