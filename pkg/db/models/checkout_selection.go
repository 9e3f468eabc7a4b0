package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// CheckoutSelection is a user's single mutable checkout draft. The cached
// totals are null until first computed.
type CheckoutSelection struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex:checkout_selections_user_key"`
	AddressID      *uuid.UUID           `gorm:"column:address_id;type:uuid"`
	DeliveryOption enums.DeliveryOption `gorm:"column:delivery_option;not null"`
	PaymentMethod  enums.PaymentMethod  `gorm:"column:payment_method;not null"`
	Subtotal       decimal.NullDecimal  `gorm:"column:subtotal;type:numeric(12,2)"`
	ShippingFee    decimal.NullDecimal  `gorm:"column:shipping_fee;type:numeric(12,2)"`
	Total          decimal.NullDecimal  `gorm:"column:total;type:numeric(12,2)"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *CheckoutSelection) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// HasTotals reports whether all cached totals are present.
func (s *CheckoutSelection) HasTotals() bool {
	return s != nil && s.Subtotal.Valid && s.ShippingFee.Valid && s.Total.Valid
}
