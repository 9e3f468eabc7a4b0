package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/pagination"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type userResolver interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
}

type ServiceParams struct {
	Repo     *Repository
	Products productLoader
	Users    userResolver
	Logger   *logger.Logger
}

// Service manages a user's liked products.
type Service interface {
	List(ctx context.Context, email string, params pagination.Params) (Page, error)
	Count(ctx context.Context, email string) (int64, error)
	Add(ctx context.Context, email string, productID uuid.UUID) error
	Remove(ctx context.Context, email string, productID uuid.UUID) error
}

type service struct {
	repo     *Repository
	products productLoader
	users    userResolver
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user resolver is required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		users:    params.Users,
		logg:     params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, email string, params pagination.Params) (Page, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return Page{}, err
	}
	page, err := s.repo.ListItems(ctx, user.ID, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return page, nil
}

func (s *service) Count(ctx context.Context, email string) (int64, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.Count(ctx, user.ID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count wishlist")
	}
	return count, nil
}

// Add is idempotent: liking a product twice keeps one row.
func (s *service) Add(ctx context.Context, email string, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Product ID is required")
	}
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.repo.AddItem(ctx, user.ID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist item")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, email string, productID uuid.UUID) error {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return err
	}
	deleted, err := s.repo.RemoveItem(ctx, user.ID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id":      user.ID.String(),
			"product_id":   productID.String(),
			"deleted_rows": deleted,
		})
		s.logg.Debug(logCtx, "wishlist item removed")
	}
	return nil
}
