package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Input is the admin create/update payload. Active defaults to true.
type Input struct {
	Code                  string           `json:"code" validate:"required,max=64"`
	Description           *string          `json:"description,omitempty"`
	DiscountType          string           `json:"discountType" validate:"required"`
	Value                 decimal.Decimal  `json:"value"`
	MinSubtotal           *decimal.Decimal `json:"minSubtotal,omitempty"`
	ApplicablePetType     *string          `json:"applicablePetType,omitempty"`
	ApplicableCategory    *string          `json:"applicableCategory,omitempty"`
	ApplicableSubcategory *string          `json:"applicableSubcategory,omitempty"`
	StartDate             *time.Time       `json:"startDate,omitempty"`
	EndDate               *time.Time       `json:"endDate,omitempty"`
	Active                *bool            `json:"active,omitempty"`
}

type DTO struct {
	ID                    uuid.UUID          `json:"id"`
	Code                  string             `json:"code"`
	Description           *string            `json:"description,omitempty"`
	DiscountType          enums.DiscountType `json:"discountType"`
	Value                 decimal.Decimal    `json:"value"`
	MinSubtotal           *decimal.Decimal   `json:"minSubtotal,omitempty"`
	ApplicablePetType     *string            `json:"applicablePetType,omitempty"`
	ApplicableCategory    *string            `json:"applicableCategory,omitempty"`
	ApplicableSubcategory *string            `json:"applicableSubcategory,omitempty"`
	StartDate             *time.Time         `json:"startDate,omitempty"`
	EndDate               *time.Time         `json:"endDate,omitempty"`
	Active                bool               `json:"active"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

func FromModel(c *models.Coupon) DTO {
	dto := DTO{
		ID:                    c.ID,
		Code:                  c.Code,
		Description:           c.Description,
		DiscountType:          c.DiscountType,
		Value:                 c.Value,
		ApplicablePetType:     c.ApplicablePetType,
		ApplicableCategory:    c.ApplicableCategory,
		ApplicableSubcategory: c.ApplicableSubcategory,
		StartDate:             c.StartDate,
		EndDate:               c.EndDate,
		Active:                c.Active,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
	if c.MinSubtotal.Valid {
		v := c.MinSubtotal.Decimal
		dto.MinSubtotal = &v
	}
	return dto
}

// ValidateRequest asks whether a code applies to a basket.
type ValidateRequest struct {
	Code        string          `json:"code" validate:"required"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	PetType     *string         `json:"petType,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Subcategory *string         `json:"subcategory,omitempty"`
}

// Validation is the outcome of a coupon check. Reason is set when Valid is false.
type Validation struct {
	Valid    bool            `json:"valid"`
	Reason   string          `json:"reason,omitempty"`
	Discount decimal.Decimal `json:"discount"`
	Coupon   *DTO            `json:"coupon,omitempty"`
}
