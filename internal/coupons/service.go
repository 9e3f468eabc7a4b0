package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Service manages discount codes.
type Service interface {
	List(ctx context.Context) ([]DTO, error)
	Create(ctx context.Context, input Input) (*DTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Validate(ctx context.Context, req ValidateRequest) (*Validation, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) List(ctx context.Context) ([]DTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list coupons")
	}
	out := make([]DTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input Input) (*DTO, error) {
	coupon := &models.Coupon{}
	if err := input.apply(coupon); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, mapWriteError(err, "create coupon")
	}
	dto := FromModel(coupon)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}
	if err := input.apply(coupon); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, coupon); err != nil {
		return nil, mapWriteError(err, "update coupon")
	}
	dto := FromModel(coupon)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete coupon")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Coupon not found")
	}
	return nil
}

// Validate checks the code against the basket. A coupon that does not apply
// is reported in the result, not as an error.
func (s *service) Validate(ctx context.Context, req ValidateRequest) (*Validation, error) {
	coupon, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("Coupon not found"), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}
	if reason := rejection(coupon, req, s.now()); reason != "" {
		return invalid(reason), nil
	}
	dto := FromModel(coupon)
	return &Validation{
		Valid:    true,
		Discount: Discount(coupon, req.Subtotal),
		Coupon:   &dto,
	}, nil
}

func invalid(reason string) *Validation {
	return &Validation{Reason: reason, Discount: decimal.Zero}
}

func rejection(c *models.Coupon, req ValidateRequest, now time.Time) string {
	switch {
	case !c.Active:
		return "Coupon is inactive"
	case c.StartDate != nil && now.Before(*c.StartDate):
		return "Coupon not started yet"
	case c.EndDate != nil && now.After(*c.EndDate):
		return "Coupon expired"
	case c.MinSubtotal.Valid && req.Subtotal.LessThan(c.MinSubtotal.Decimal):
		return "Minimum order not met"
	case mismatch(c.ApplicablePetType, req.PetType):
		return "Not applicable for pet type"
	case mismatch(c.ApplicableCategory, req.Category):
		return "Not applicable for category"
	case mismatch(c.ApplicableSubcategory, req.Subcategory):
		return "Not applicable for subcategory"
	}
	return ""
}

// mismatch only rejects when both the coupon scope and the basket value are set.
func mismatch(scope, value *string) bool {
	if scope == nil || value == nil {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(*scope), strings.TrimSpace(*value))
}

// Discount is rounded to whole rupees for percentage coupons and never
// exceeds the subtotal.
func Discount(c *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	if c.DiscountType == enums.DiscountTypePercent {
		discount = subtotal.Mul(c.Value).Div(hundred).Round(0)
	} else {
		discount = c.Value
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

func (in Input) apply(c *models.Coupon) error {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Coupon code is required")
	}
	discountType, err := enums.ParseDiscountType(in.DiscountType)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Discount type must be PERCENT or FIXED")
	}
	if in.Value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Coupon value cannot be negative")
	}
	if discountType == enums.DiscountTypePercent && in.Value.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Percentage discount cannot exceed 100")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "End date must be after start date")
	}

	c.Code = code
	c.Description = in.Description
	c.DiscountType = discountType
	c.Value = in.Value
	c.MinSubtotal = decimal.NullDecimal{}
	if in.MinSubtotal != nil {
		c.MinSubtotal = decimal.NewNullDecimal(*in.MinSubtotal)
	}
	c.ApplicablePetType = in.ApplicablePetType
	c.ApplicableCategory = in.ApplicableCategory
	c.ApplicableSubcategory = in.ApplicableSubcategory
	c.StartDate = in.StartDate
	c.EndDate = in.EndDate
	c.Active = in.Active == nil || *in.Active
	return nil
}

func mapWriteError(err error, msg string) error {
	if db.IsUniqueViolation(err, CodeKey) {
		return pkgerrors.New(pkgerrors.CodeConflict, "Coupon code already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
