package products

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/pagination"
)

// ErrVersionConflict is returned when a guarded product write finds the row
// changed since it was read.
var ErrVersionConflict = errors.New("product version changed concurrently")

// Repository wires together all product-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product with its extra attributes.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Attributes", func(tx *gorm.DB) *gorm.DB { return tx.Order("key ASC") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindForUpdate re-reads the product holding a row lock until the
// surrounding transaction ends. Sqlite ignores the locking clause.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// Update writes every column of the product, guarded by its version.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	expected := product.Version
	product.Version = expected + 1
	res := r.db.WithContext(ctx).
		Model(product).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(product)
	if res.Error != nil {
		product.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		product.Version = expected
		return ErrVersionConflict
	}
	return nil
}

// SaveStock persists the stock columns and variants of a product read under
// lock, failing with ErrVersionConflict when another writer got there first.
func (r *Repository) SaveStock(ctx context.Context, product *models.Product) error {
	expected := product.Version
	product.Version = expected + 1
	res := r.db.WithContext(ctx).
		Model(product).
		Where("version = ?", expected).
		Select("stock_quantity", "in_stock", "metadata", "version", "updated_at").
		Updates(product)
	if res.Error != nil {
		product.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		product.Version = expected
		return ErrVersionConflict
	}
	return nil
}

// Deactivate hides a product from the storefront; order history keeps
// referencing it.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "version": gorm.Expr("version + 1")}).Error
}

// DetachFromShoppers drops cart lines and wishlist entries for the product.
func (r *Repository) DetachFromShoppers(ctx context.Context, id uuid.UUID) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return conn.Where("product_id = ?", id).Delete(&models.WishlistItem{}).Error
}

// ReplaceAttributes swaps the full attribute set of a product.
func (r *Repository) ReplaceAttributes(ctx context.Context, productID uuid.UUID, attrs map[string]string) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("product_id = ?", productID).Delete(&models.ProductAttribute{}).Error; err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]models.ProductAttribute, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.ProductAttribute{ProductID: productID, Key: k, Value: attrs[k]})
	}
	return conn.Create(&rows).Error
}

func (r *Repository) SetImage(ctx context.Context, id uuid.UUID, url, key string) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"image_url": url, "image_key": key}).Error
}

// Search runs the storefront browse query. Rows are ordered newest first and
// paged with a (created_at, id) cursor.
func (r *Repository) Search(ctx context.Context, input ListInput) ([]models.Product, string, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := db.QB.Select("*").From("products").Where(squirrel.Eq{"is_active": true})
	query = applyFilters(query, input.Filters)
	if cursor != nil {
		query = query.Where(squirrel.Or{
			squirrel.Lt{"created_at": cursor.CreatedAt},
			squirrel.And{squirrel.Eq{"created_at": cursor.CreatedAt}, squirrel.Lt{"id": cursor.ID}},
		})
	}
	query = query.OrderBy("created_at DESC", "id DESC").Limit(uint64(pageSize + 1))

	var rows []models.Product
	if err := db.ScanSQL(ctx, r.db, query, &rows); err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func applyFilters(query squirrel.SelectBuilder, f ListFilters) squirrel.SelectBuilder {
	if v := strings.TrimSpace(f.Category); v != "" {
		query = query.Where(squirrel.Eq{"LOWER(category)": strings.ToLower(v)})
	}
	if v := strings.TrimSpace(f.Subcategory); v != "" {
		query = query.Where(squirrel.Eq{"LOWER(subcategory)": strings.ToLower(v)})
	}
	if f.Type != nil {
		query = query.Where(squirrel.Eq{"type": string(*f.Type)})
	}
	if v := strings.TrimSpace(f.PetType); v != "" {
		query = query.Where(squirrel.Eq{"LOWER(pet_type)": strings.ToLower(v)})
	}
	if v := strings.TrimSpace(f.Brand); v != "" {
		query = query.Where(squirrel.Eq{"LOWER(brand)": strings.ToLower(v)})
	}
	if f.InStock != nil {
		query = query.Where(squirrel.Eq{"in_stock": *f.InStock})
	}
	if v := strings.TrimSpace(f.Query); v != "" {
		pattern := "%" + strings.ToLower(v) + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"LOWER(name)": pattern},
			squirrel.Like{"LOWER(brand)": pattern},
			squirrel.Like{"LOWER(category)": pattern},
		})
	}
	return query
}

type categoryRow struct {
	Category     string
	Subcategory  *string
	ProductCount int
}

// Categories groups active products by category and subcategory.
func (r *Repository) Categories(ctx context.Context) ([]CategorySummary, error) {
	query := db.QB.
		Select("category", "subcategory", "COUNT(*) AS product_count").
		From("products").
		Where(squirrel.Eq{"is_active": true}).
		GroupBy("category", "subcategory").
		OrderBy("category ASC", "subcategory ASC")

	var rows []categoryRow
	if err := db.ScanSQL(ctx, r.db, query, &rows); err != nil {
		return nil, err
	}

	out := []CategorySummary{}
	index := map[string]int{}
	for _, row := range rows {
		name := strings.TrimSpace(row.Category)
		if name == "" {
			name = defaultCategoryName
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategorySummary{Name: name, Subcategories: []string{}})
		}
		out[i].ProductCount += row.ProductCount
		if row.Subcategory != nil && strings.TrimSpace(*row.Subcategory) != "" {
			out[i].Subcategories = append(out[i].Subcategories, *row.Subcategory)
		}
	}
	return out, nil
}
