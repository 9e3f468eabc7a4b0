package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/address"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/cart"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// SelectionInput is a partial update of the draft; nil fields are left alone.
type SelectionInput struct {
	AddressID      *uuid.UUID `json:"addressId"`
	DeliveryOption *string    `json:"deliveryOption"`
	PaymentMethod  *string    `json:"paymentMethod"`
}

type SelectionDTO struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"userId"`
	AddressID      *uuid.UUID           `json:"addressId,omitempty"`
	DeliveryOption enums.DeliveryOption `json:"deliveryOption"`
	PaymentMethod  enums.PaymentMethod  `json:"paymentMethod"`
	Subtotal       decimal.NullDecimal  `json:"subtotal"`
	ShippingFee    decimal.NullDecimal  `json:"shippingFee"`
	Total          decimal.NullDecimal  `json:"total"`
}

func SelectionFromModel(sel *models.CheckoutSelection) SelectionDTO {
	return SelectionDTO{
		ID:             sel.ID,
		UserID:         sel.UserID,
		AddressID:      sel.AddressID,
		DeliveryOption: sel.DeliveryOption,
		PaymentMethod:  sel.PaymentMethod,
		Subtotal:       sel.Subtotal,
		ShippingFee:    sel.ShippingFee,
		Total:          sel.Total,
	}
}

// ReviewDTO is the final pre-placement summary.
type ReviewDTO struct {
	Selection      SelectionDTO         `json:"selection"`
	Address        address.DTO          `json:"address"`
	Items          []cart.CartLine      `json:"items"`
	DeliveryOption enums.DeliveryOption `json:"deliveryOption"`
	PaymentMethod  enums.PaymentMethod  `json:"paymentMethod"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	ShippingFee    decimal.Decimal      `json:"shippingFee"`
	Total          decimal.Decimal      `json:"total"`
}
