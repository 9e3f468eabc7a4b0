package orders

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/pagination"
)

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

// Create inserts the order together with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error) {
	var rows []models.Order
	err := r.withItems(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// ListPage returns orders newest first using a (created_at, id) cursor.
func (r *Repository) ListPage(ctx context.Context, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	q := r.withItems(ctx)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Order
	err = q.Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	page, next := pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return page, next, nil
}

// UpdateFields applies a partial update to a single order.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type statisticsRow struct {
	TotalOrders     int64
	PendingOrders   int64
	ShippedOrders   int64
	DeliveredOrders int64
	TotalRevenue    decimal.NullDecimal
}

func (r *Repository) Statistics(ctx context.Context) (*Statistics, error) {
	query := db.QB.
		Select("COUNT(*) AS total_orders").
		Column(countStatus(enums.OrderStatusPending, "pending_orders")).
		Column(countStatus(enums.OrderStatusShipped, "shipped_orders")).
		Column(countStatus(enums.OrderStatusDelivered, "delivered_orders")).
		Column("COALESCE(SUM(total), 0) AS total_revenue").
		From("orders")

	var row statisticsRow
	if err := db.ScanSQL(ctx, r.db, query, &row); err != nil {
		return nil, err
	}
	stats := &Statistics{
		TotalOrders:     row.TotalOrders,
		PendingOrders:   row.PendingOrders,
		ShippedOrders:   row.ShippedOrders,
		DeliveredOrders: row.DeliveredOrders,
		TotalRevenue:    decimal.Zero,
	}
	if row.TotalRevenue.Valid {
		stats.TotalRevenue = row.TotalRevenue.Decimal
	}
	return stats, nil
}

func countStatus(status enums.OrderStatus, alias string) squirrel.Sqlizer {
	return squirrel.Expr("COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS "+alias, string(status))
}

func (r *Repository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("product_name ASC")
	})
}
