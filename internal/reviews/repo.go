package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// ActiveReviewKey is the partial unique index guarding one active review per user and product.
const ActiveReviewKey = "reviews_active_user_product_key"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit("User").Create(review).Error
}

// HasActive reports whether the user already has a live review of the product.
func (r *Repository) HasActive(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND product_id = ? AND is_active = ?", userID, productID, true).
		Count(&count).Error
	return count > 0, err
}

// LatestDeliveredOrder returns the newest delivered order of the user that
// contains the product, or nil when there is none.
func (r *Repository) LatestDeliveredOrder(ctx context.Context, userID, productID uuid.UUID) (*uuid.UUID, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.id").
		Where("orders.user_id = ? AND orders.status = ?", userID, enums.OrderStatusDelivered).
		Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.product_id = ?)", productID).
		Order("orders.created_at DESC").
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order.ID, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// IncrementHelpful bumps the counter in place; it returns gorm.ErrRecordNotFound
// when the review does not exist.
func (r *Repository) IncrementHelpful(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"helpful_count": gorm.Expr("helpful_count + 1"),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type reviewRow struct {
	ID                 uuid.UUID  `gorm:"column:id"`
	UserID             uuid.UUID  `gorm:"column:user_id"`
	UserName           string     `gorm:"column:user_name"`
	ProductID          uuid.UUID  `gorm:"column:product_id"`
	ProductName        string     `gorm:"column:product_name"`
	OrderID            *uuid.UUID `gorm:"column:order_id"`
	Rating             int        `gorm:"column:rating"`
	Title              *string    `gorm:"column:title"`
	Comment            *string    `gorm:"column:comment"`
	IsVerifiedPurchase bool       `gorm:"column:is_verified_purchase"`
	HelpfulCount       int        `gorm:"column:helpful_count"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func listQuery() squirrel.SelectBuilder {
	return db.QB.
		Select(
			"r.id", "r.user_id", "r.product_id", "r.order_id", "r.rating", "r.title", "r.comment",
			"r.is_verified_purchase", "r.helpful_count", "r.created_at", "r.updated_at",
			"u.name AS user_name", "p.name AS product_name",
		).
		From("reviews r").
		Join("users u ON u.id = r.user_id").
		Join("products p ON p.id = r.product_id").
		Where(squirrel.Eq{"r.is_active": true}).
		OrderBy("r.created_at DESC", "r.id DESC")
}

// ListByProduct pages through a product's active reviews.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, page, size int) ([]reviewRow, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ? AND is_active = ?", productID, true).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var rows []reviewRow
	query := listQuery().
		Where(squirrel.Eq{"r.product_id": productID}).
		Limit(uint64(size)).
		Offset(uint64(page * size))
	if err := db.ScanSQL(ctx, r.db, query, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]reviewRow, error) {
	var rows []reviewRow
	err := db.ScanSQL(ctx, r.db, listQuery().Where(squirrel.Eq{"r.user_id": userID}), &rows)
	return rows, err
}

type ratingBucket struct {
	Rating int
	Count  int64
}

// Distribution counts active reviews per star rating.
func (r *Repository) Distribution(ctx context.Context, productID uuid.UUID) ([]ratingBucket, error) {
	query := db.QB.
		Select("rating", "COUNT(*) AS count").
		From("reviews").
		Where(squirrel.Eq{"product_id": productID, "is_active": true}).
		GroupBy("rating").
		OrderBy("rating")
	var rows []ratingBucket
	err := db.ScanSQL(ctx, r.db, query, &rows)
	return rows, err
}

// EligibleProducts lists products from the user's delivered orders that the
// user has not reviewed yet.
func (r *Repository) EligibleProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where(`id IN (
  SELECT oi.product_id FROM order_items oi
  JOIN orders o ON o.id = oi.order_id
  WHERE o.user_id = ? AND o.status = ?
)`, userID, enums.OrderStatusDelivered).
		Where("NOT EXISTS (SELECT 1 FROM reviews r WHERE r.product_id = products.id AND r.user_id = ? AND r.is_active = ?)", userID, true).
		Order("name").
		Find(&rows).Error
	return rows, err
}

const ratingRefreshSQL = `UPDATE products SET
  average_rating = COALESCE((SELECT AVG(r.rating) FROM reviews r WHERE r.product_id = products.id AND r.is_active = ?), 0),
  review_count = (SELECT COUNT(*) FROM reviews r WHERE r.product_id = products.id AND r.is_active = ?)`

// RefreshProductRating recomputes the cached rating columns of one product.
func (r *Repository) RefreshProductRating(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(ratingRefreshSQL+" WHERE id = ?", true, true, productID).Error
}

// RefreshAllRatings recomputes every product's cached rating and reports how many rows were touched.
func (r *Repository) RefreshAllRatings(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(ratingRefreshSQL, true, true)
	return res.RowsAffected, res.Error
}
