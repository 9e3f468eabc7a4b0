package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/products"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50

	msgAlreadyReviewed = "You have already reviewed this product"
	msgNotEligible     = "You can only review products you have purchased and received"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type userResolver interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
}

// Service handles verified-purchase product reviews.
type Service interface {
	Create(ctx context.Context, email string, input CreateInput) (*DTO, error)
	ProductReviews(ctx context.Context, productID uuid.UUID, page, size int) (*Page, error)
	Stats(ctx context.Context, productID uuid.UUID) (*Stats, error)
	EligibleProducts(ctx context.Context, email string) ([]products.DTO, error)
	UserReviews(ctx context.Context, email string) ([]DTO, error)
	MarkHelpful(ctx context.Context, reviewID uuid.UUID) error
}

type ServiceParams struct {
	DB       txRunner
	Repo     *Repository
	Products productLoader
	Users    userResolver
	Logger   *logger.Logger
}

type service struct {
	db       txRunner
	repo     *Repository
	products productLoader
	users    userResolver
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Repo == nil:
		return nil, fmt.Errorf("review repository required")
	case params.Products == nil:
		return nil, fmt.Errorf("product loader required")
	case params.Users == nil:
		return nil, fmt.Errorf("user resolver required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		products: params.Products,
		users:    params.Users,
		logg:     params.Logger,
	}, nil
}

// Create stores a review for a product the user has received. The newest
// delivered order containing the product is linked as proof of purchase.
func (s *service) Create(ctx context.Context, email string, input CreateInput) (*DTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Rating must be between 1 and 5")
	}
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	orderID, err := s.checkEligibility(ctx, user.ID, product.ID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:             user.ID,
		ProductID:          product.ID,
		OrderID:            orderID,
		Rating:             input.Rating,
		Title:              trimmed(input.Title),
		Comment:            trimmed(input.Comment),
		IsVerifiedPurchase: true,
		IsActive:           true,
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, review); err != nil {
			if db.IsUniqueViolation(err, ActiveReviewKey) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, msgAlreadyReviewed)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
		}
		if err := repo.RefreshProductRating(ctx, product.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refresh product rating")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithUserID(ctx, user.ID.String()), map[string]any{
			"product_id": product.ID.String(),
			"rating":     review.Rating,
		})
		s.logg.Info(logCtx, "review.created")
	}

	dto := fromRow(reviewRow{
		ID:                 review.ID,
		UserID:             user.ID,
		UserName:           user.Name,
		ProductID:          product.ID,
		ProductName:        product.Name,
		OrderID:            review.OrderID,
		Rating:             review.Rating,
		Title:              review.Title,
		Comment:            review.Comment,
		IsVerifiedPurchase: review.IsVerifiedPurchase,
		HelpfulCount:       review.HelpfulCount,
		CreatedAt:          review.CreatedAt,
		UpdatedAt:          review.UpdatedAt,
	})
	return &dto, nil
}

// checkEligibility returns the order that qualifies the user to review the product.
func (s *service) checkEligibility(ctx context.Context, userID, productID uuid.UUID) (*uuid.UUID, error) {
	exists, err := s.repo.HasActive(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing review")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, msgAlreadyReviewed)
	}
	orderID, err := s.repo.LatestDeliveredOrder(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load delivered order")
	}
	if orderID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, msgNotEligible)
	}
	return orderID, nil
}

func (s *service) ProductReviews(ctx context.Context, productID uuid.UUID, page, size int) (*Page, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	rows, total, err := s.repo.ListByProduct(ctx, productID, page, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return &Page{
		Reviews:    fromRows(rows),
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (s *service) Stats(ctx context.Context, productID uuid.UUID) (*Stats, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	buckets, err := s.repo.Distribution(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "review distribution")
	}
	stats := buildStats(buckets)
	return &stats, nil
}

func (s *service) EligibleProducts(ctx context.Context, email string) ([]products.DTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.EligibleProducts(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list eligible products")
	}
	out := make([]products.DTO, 0, len(rows))
	for i := range rows {
		out = append(out, products.FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UserReviews(ctx context.Context, email string) ([]DTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user reviews")
	}
	return fromRows(rows), nil
}

func (s *service) MarkHelpful(ctx context.Context, reviewID uuid.UUID) error {
	if err := s.repo.IncrementHelpful(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark review helpful")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
