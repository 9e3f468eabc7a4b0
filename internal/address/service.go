package address

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

type Service interface {
	List(ctx context.Context, email string) ([]DTO, error)
	Create(ctx context.Context, email string, input Input) (*DTO, error)
	Update(ctx context.Context, email string, id uuid.UUID, input Input) (*DTO, error)
	Delete(ctx context.Context, email string, id uuid.UUID) error
}

type userResolver interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	DB    txRunner
	Repo  *Repository
	Users userResolver
}

type service struct {
	db    txRunner
	repo  *Repository
	users userResolver
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, fmt.Errorf("database client is required")
	case params.Repo == nil:
		return nil, fmt.Errorf("address repository is required")
	case params.Users == nil:
		return nil, fmt.Errorf("user resolver is required")
	}
	return &service{db: params.DB, repo: params.Repo, users: params.Users}, nil
}

func (s *service) List(ctx context.Context, email string) ([]DTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	out := make([]DTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, email string, input Input) (*DTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	addr := &models.Address{UserID: user.ID}
	input.apply(addr)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, addr); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
		}
		return s.syncDefault(ctx, repo, addr)
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(addr)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, email string, id uuid.UUID, input Input) (*DTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	var addr *models.Address
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := loadOwned(ctx, repo, id, user.ID)
		if err != nil {
			return err
		}
		input.apply(existing)
		if err := repo.Save(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
		}
		addr = existing
		return s.syncDefault(ctx, repo, existing)
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(addr)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, email string, id uuid.UUID) error {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return err
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := loadOwned(ctx, repo, id, user.ID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
		}
		return nil
	})
}

func (s *service) syncDefault(ctx context.Context, repo *Repository, addr *models.Address) error {
	if !addr.IsDefault {
		return nil
	}
	if err := repo.ClearDefault(ctx, addr.UserID, addr.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default address")
	}
	return nil
}

// loadOwned fetches an address and enforces that it belongs to userID.
func loadOwned(ctx context.Context, repo *Repository, id, userID uuid.UUID) (*models.Address, error) {
	addr, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	if !addr.OwnedBy(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "address belongs to another user")
	}
	return addr, nil
}

func validateInput(input Input) error {
	if input.AddressType != "" && !input.AddressType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "addressType must be Home, Work or Other")
	}
	if len(strings.TrimSpace(input.Pincode)) != 6 {
		return pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 characters")
	}
	return nil
}
