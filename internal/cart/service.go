package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

// Service exposes the shopper's cart. Concurrent updates of the same line are
// last write wins.
type Service interface {
	GetCart(ctx context.Context, email string) ([]CartLine, error)
	AddToCart(ctx context.Context, email string, productID uuid.UUID, quantity int, variantID string) (*CartLine, error)
	UpdateQuantity(ctx context.Context, email string, productID uuid.UUID, quantity int, variantID string) (*CartLine, error)
	RemoveItem(ctx context.Context, email string, productID uuid.UUID, variantID string) error
	Clear(ctx context.Context, email string) error
}

type service struct {
	repo     CartRepository
	products productLoader
	users    userResolver
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, products productLoader, users userResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user resolver required")
	}
	return &service{repo: repo, products: products, users: users}, nil
}

func (s *service) GetCart(ctx context.Context, email string) ([]CartLine, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	lines := make([]CartLine, 0, len(items))
	for i := range items {
		lines = append(lines, LineFromModel(&items[i]))
	}
	return lines, nil
}

func (s *service) AddToCart(ctx context.Context, email string, productID uuid.UUID, quantity int, variantID string) (*CartLine, error) {
	variantID = strings.TrimSpace(variantID)
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	useVariant := variantID != "" && product.HasVariants()
	if useVariant {
		v, ok := product.Variant(variantID)
		if !ok || v.Stock <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Product variant is out of stock")
		}
	} else if !product.InStock || product.StockQuantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Product is out of stock")
	}

	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be at least 1")
	}

	lookup, err := s.repo.FindLine(ctx, user.ID, product.ID, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	item := lookup.Item
	if !lookup.Found {
		item = &models.CartItem{
			UserID:     user.ID,
			ProductID:  product.ID,
			VariantID:  optionalVariant(variantID),
			PriceAtAdd: product.UnitPrice(variantID),
			Quantity:   0,
		}
	}

	ceiling := product.StockQuantity
	if useVariant {
		ceiling = product.AvailableStock(variantID)
	}
	newQty := item.Quantity + quantity
	if newQty > ceiling {
		return nil, stockExceeded(ceiling)
	}

	item.Quantity = newQty
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart line")
	}
	item.Product = product
	line := LineFromModel(item)
	return &line, nil
}

func (s *service) UpdateQuantity(ctx context.Context, email string, productID uuid.UUID, quantity int, variantID string) (*CartLine, error) {
	variantID = strings.TrimSpace(variantID)
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	lookup, err := s.repo.FindLine(ctx, user.ID, product.ID, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	if !lookup.Found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	item := lookup.Item

	ceiling := product.StockQuantity
	stockVariant := variantID
	if stockVariant == "" {
		stockVariant = item.Variant()
	}
	if stockVariant != "" && product.HasVariants() {
		if v, ok := product.Variant(stockVariant); ok {
			ceiling = v.Stock
		}
	}
	if !product.InStock || ceiling <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Product is out of stock")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be at least 1")
	}
	if quantity > ceiling {
		return nil, stockExceeded(ceiling)
	}

	item.Quantity = quantity
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart line")
	}
	item.Product = product
	line := LineFromModel(item)
	return &line, nil
}

// RemoveItem deletes the (product, variant) line. A variant request with no
// matching line falls back to the product's variant-less line.
func (s *service) RemoveItem(ctx context.Context, email string, productID uuid.UUID, variantID string) error {
	variantID = strings.TrimSpace(variantID)
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return err
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}

	lookup, err := s.repo.FindLine(ctx, user.ID, product.ID, variantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	if !lookup.Found && variantID != "" {
		lookup, err = s.repo.FindLine(ctx, user.ID, product.ID, "")
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}
	}
	if !lookup.Found {
		return nil
	}
	if err := s.repo.Delete(ctx, lookup.Item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, email string) error {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByUser(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func stockExceeded(available int) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("Stock limit exceeded. Available: %d", available)).
		WithDetails(map[string]any{"available": available})
}

func optionalVariant(variantID string) *string {
	if variantID == "" {
		return nil
	}
	return &variantID
}
