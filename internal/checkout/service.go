package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/address"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/cart"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

type addressLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
}

type cartReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
}

type userResolver interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
}

// Charge is what a gateway payment should collect for a user.
type Charge struct {
	UserID uuid.UUID
	Totals
}

// Service manages the per-user checkout draft.
type Service interface {
	SaveSelection(ctx context.Context, email string, input SelectionInput) (*SelectionDTO, error)
	Review(ctx context.Context, email string) (*ReviewDTO, error)
	ChargeTotals(ctx context.Context, email string) (*Charge, error)
}

type ServiceParams struct {
	Repo      *Repository
	Addresses addressLoader
	Cart      cartReader
	Users     userResolver
	Fees      Fees
	Logger    *logger.Logger
}

type service struct {
	repo      *Repository
	addresses addressLoader
	cart      cartReader
	users     userResolver
	fees      Fees
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("checkout repository required")
	case params.Addresses == nil:
		return nil, fmt.Errorf("address loader required")
	case params.Cart == nil:
		return nil, fmt.Errorf("cart reader required")
	case params.Users == nil:
		return nil, fmt.Errorf("user resolver required")
	}
	fees := params.Fees
	if fees.Standard.IsZero() && fees.Express.IsZero() {
		fees = DefaultFees
	}
	return &service{
		repo:      params.Repo,
		addresses: params.Addresses,
		cart:      params.Cart,
		users:     params.Users,
		fees:      fees,
		logg:      params.Logger,
	}, nil
}

func (s *service) SaveSelection(ctx context.Context, email string, input SelectionInput) (*SelectionDTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	lookup, err := s.repo.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load checkout selection")
	}
	sel := lookup.Selection
	if !lookup.Found {
		sel = &models.CheckoutSelection{
			UserID:         user.ID,
			DeliveryOption: enums.DeliveryStandard,
			PaymentMethod:  enums.PaymentMethodCOD,
		}
	}

	if input.AddressID != nil {
		addr, err := s.addresses.FindByID(ctx, *input.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}
		if !addr.OwnedBy(user.ID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Address does not belong to user")
		}
		id := addr.ID
		sel.AddressID = &id
	}

	deliveryChanged := false
	if input.DeliveryOption != nil {
		option, err := enums.ParseDeliveryOption(*input.DeliveryOption)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid delivery option: "+*input.DeliveryOption)
		}
		sel.DeliveryOption = option
		deliveryChanged = true
	}

	if input.PaymentMethod != nil {
		method, err := enums.ParsePaymentMethod(*input.PaymentMethod)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid payment method: "+*input.PaymentMethod)
		}
		sel.PaymentMethod = method
	}

	if deliveryChanged || !sel.HasTotals() {
		items, err := s.cart.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(items) > 0 {
			ComputeTotals(items, sel.DeliveryOption, s.fees).Apply(sel)
		}
	}

	if err := s.repo.Save(ctx, sel); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save checkout selection")
	}
	dto := SelectionFromModel(sel)
	return &dto, nil
}

// Review validates the draft against the current cart and refreshes the
// cached totals. Repeated calls without cart or delivery changes store the
// same totals.
func (s *service) Review(ctx context.Context, email string) (*ReviewDTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	lookup, err := s.repo.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load checkout selection")
	}
	if !lookup.Found {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "No checkout selection found. Please complete checkout steps.")
	}
	sel := lookup.Selection

	addr, err := s.selectedAddress(ctx, sel, user.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sel.DeliveryOption.String()) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "No delivery option selected. Please choose delivery method.")
	}
	if strings.TrimSpace(sel.PaymentMethod.String()) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "No payment method selected. Please choose payment method.")
	}

	items, err := s.cart.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Your cart is empty. Please add items before checkout.")
	}

	totals := ComputeTotals(items, sel.DeliveryOption, s.fees)
	totals.Apply(sel)
	if err := s.repo.Save(ctx, sel); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save checkout selection")
	}

	lines := make([]cart.CartLine, 0, len(items))
	for i := range items {
		lines = append(lines, cart.LineFromModel(&items[i]))
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id": user.ID.String(),
			"items":   len(lines),
			"total":   totals.Total.StringFixed(2),
		})
		s.logg.Info(logCtx, "checkout.review")
	}

	return &ReviewDTO{
		Selection:      SelectionFromModel(sel),
		Address:        address.FromModel(addr),
		Items:          lines,
		DeliveryOption: sel.DeliveryOption,
		PaymentMethod:  sel.PaymentMethod,
		Subtotal:       totals.Subtotal,
		ShippingFee:    totals.ShippingFee,
		Total:          totals.Total,
	}, nil
}

// ChargeTotals returns the cached totals, computing and storing them from the
// cart when the draft has none yet.
func (s *service) ChargeTotals(ctx context.Context, email string) (*Charge, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	lookup, err := s.repo.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load checkout selection")
	}
	if !lookup.Found {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "No checkout selection found. Please complete checkout steps.")
	}
	sel := lookup.Selection
	if _, err := s.selectedAddress(ctx, sel, user.ID); err != nil {
		return nil, err
	}
	if totals, ok := CachedTotals(sel); ok {
		return &Charge{UserID: user.ID, Totals: totals}, nil
	}

	items, err := s.cart.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Your cart is empty. Please add items before checkout.")
	}
	totals := ComputeTotals(items, sel.DeliveryOption, s.fees)
	totals.Apply(sel)
	if err := s.repo.Save(ctx, sel); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save checkout selection")
	}
	return &Charge{UserID: user.ID, Totals: totals}, nil
}

func (s *service) selectedAddress(ctx context.Context, sel *models.CheckoutSelection, userID uuid.UUID) (*models.Address, error) {
	if sel.AddressID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "No address selected. Please select a delivery address.")
	}
	addr, err := s.addresses.FindByID(ctx, *sel.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Selected address not found. Please select a valid address.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	if !addr.OwnedBy(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Address does not belong to user.")
	}
	return addr, nil
}
