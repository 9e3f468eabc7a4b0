package wishlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts the like and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	item := &models.WishlistItem{UserID: userID, ProductID: productID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item).Error
}

// RemoveItem deletes by key only, so it also works after the product row is gone.
func (r *Repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	return res.RowsAffected, res.Error
}

func (r *Repository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListItems returns the user's liked products newest first.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, params pagination.Params) (Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return Page{}, err
	}

	selectColumns := []string{
		"wi.id AS wishlist_id",
		"wi.created_at AS wishlist_created_at",
		"p.id AS product_id",
		"p.name",
		"p.image_url",
		"p.price",
		"p.stock_quantity",
		"p.in_stock",
		"p.category",
		"p.brand",
	}

	query := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN products p ON p.id = wi.product_id").
		Where("wi.user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(wi.created_at < ?) OR (wi.created_at = ? AND wi.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []itemRecord
	err = query.Order("wi.created_at DESC").
		Order("wi.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&records).Error
	if err != nil {
		return Page{}, err
	}

	rows, next := pagination.Trim(records, params.Limit, func(rec itemRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: rec.WishlistCreatedAt, ID: rec.WishlistID}
	})
	items := make([]ItemDTO, 0, len(rows))
	for _, rec := range rows {
		items = append(items, rec.toDTO())
	}
	return Page{Items: items, NextCursor: next}, nil
}

type itemRecord struct {
	WishlistID        uuid.UUID       `gorm:"column:wishlist_id"`
	WishlistCreatedAt time.Time       `gorm:"column:wishlist_created_at"`
	ProductID         uuid.UUID       `gorm:"column:product_id"`
	Name              string          `gorm:"column:name"`
	ImageURL          *string         `gorm:"column:image_url"`
	Price             decimal.Decimal `gorm:"column:price"`
	StockQuantity     int             `gorm:"column:stock_quantity"`
	InStock           bool            `gorm:"column:in_stock"`
	Category          string          `gorm:"column:category"`
	Brand             *string         `gorm:"column:brand"`
}

func (r itemRecord) toDTO() ItemDTO {
	return ItemDTO{
		ProductID:     r.ProductID,
		ProductName:   r.Name,
		ProductImage:  r.ImageURL,
		ProductPrice:  r.Price,
		CreatedAt:     r.WishlistCreatedAt,
		InStock:       r.InStock && r.StockQuantity > 0,
		StockQuantity: r.StockQuantity,
		Category:      r.Category,
		Brand:         r.Brand,
	}
}
