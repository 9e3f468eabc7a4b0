package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

// Service resolves the email-keyed identity used by every customer endpoint
// and manages profile data.
type Service interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
	Profile(ctx context.Context, email string) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, email string, input ProfileUpdate) (*ProfileDTO, error)
	ListCustomers(ctx context.Context) ([]UserSummaryDTO, error)
}

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	ListCustomerSummaries(ctx context.Context) ([]UserSummaryDTO, error)
}

type service struct {
	repo userStore
}

func NewService(repo userStore) (Service, error) {
	if repo == nil {
		return nil, errors.New("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Resolve(ctx context.Context, email string) (*models.User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) Profile(ctx context.Context, email string) (*ProfileDTO, error) {
	user, err := s.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	return ProfileFromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, email string, input ProfileUpdate) (*ProfileDTO, error) {
	user, err := s.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			user.Name = name
		}
	}
	if input.Phone != nil {
		raw := strings.TrimSpace(*input.Phone)
		if normalized, ok := NormalizeIndianPhone(raw); ok {
			raw = normalized
		}
		user.Phone = &raw
	}
	if input.DateOfBirth != nil && strings.TrimSpace(*input.DateOfBirth) != "" {
		dob, err := time.Parse(dateLayout, strings.TrimSpace(*input.DateOfBirth))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "dateOfBirth must be YYYY-MM-DD")
		}
		user.DateOfBirth = &dob
	}
	if input.Gender != nil {
		if gender := strings.TrimSpace(*input.Gender); gender != "" {
			user.Gender = &gender
		}
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save profile")
	}
	return ProfileFromModel(user), nil
}

func (s *service) ListCustomers(ctx context.Context) ([]UserSummaryDTO, error) {
	rows, err := s.repo.ListCustomerSummaries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return rows, nil
}
