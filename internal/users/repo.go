package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Repository exposes user persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail returns gorm.ErrRecordNotFound when no user matches.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail reports whether an account already uses email.
func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *Repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// IncrementTotalOrders bumps the order counter in place.
func (r *Repository) IncrementTotalOrders(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("total_orders", gorm.Expr("total_orders + ?", 1)).Error
}

// ListCustomerSummaries returns every non-admin account with its order and
// wishlist counts, newest first.
func (r *Repository) ListCustomerSummaries(ctx context.Context) ([]UserSummaryDTO, error) {
	var rows []struct {
		models.User
		OrderCount    int64
		WishlistCount int64
	}
	orders := r.db.Model(&models.Order{}).Select("COUNT(*)").Where("orders.user_id = users.id")
	wishlist := r.db.Model(&models.WishlistItem{}).Select("COUNT(*)").Where("wishlist_items.user_id = users.id")
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*, (?) AS order_count, (?) AS wishlist_count", orders, wishlist).
		Where("users.role <> ?", enums.UserRoleAdmin).
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]UserSummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, UserSummaryDTO{
			ID:            row.ID,
			Name:          row.Name,
			Email:         row.Email,
			Phone:         row.Phone,
			Role:          row.Role,
			CreatedAt:     row.CreatedAt,
			MemberSince:   row.MemberSince,
			IsActive:      row.IsActive,
			OrderCount:    row.OrderCount,
			WishlistCount: row.WishlistCount,
			LoyaltyPoints: row.LoyaltyPoints,
		})
	}
	return out, nil
}
