package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Product is a catalog entry. Typed subtype attributes and variants live in
// Metadata; anything else the storefront needs goes to Attributes.
type Product struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name             string              `gorm:"column:name;not null"`
	Description      *string             `gorm:"column:description"`
	ShortDescription *string             `gorm:"column:short_description"`
	Price            decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice    decimal.NullDecimal `gorm:"column:original_price;type:numeric(12,2)"`
	Category         string              `gorm:"column:category;not null;index:products_category_idx"`
	Subcategory      *string             `gorm:"column:subcategory"`
	Brand            *string             `gorm:"column:brand"`
	Type             enums.ProductType   `gorm:"column:type;not null"`
	PetType          *string             `gorm:"column:pet_type"`
	Weight           decimal.NullDecimal `gorm:"column:weight;type:numeric(10,3)"`
	WeightUnit       *string             `gorm:"column:weight_unit"`
	StockQuantity    int                 `gorm:"column:stock_quantity;not null"`
	InStock          bool                `gorm:"column:in_stock;not null"`
	IsActive         bool                `gorm:"column:is_active;not null"`
	ImageURL         *string             `gorm:"column:image_url"`
	ImageKey         *string             `gorm:"column:image_key"`
	AverageRating    float64             `gorm:"column:average_rating;not null;default:0"`
	ReviewCount      int                 `gorm:"column:review_count;not null;default:0"`
	Metadata         ProductMetadata     `gorm:"column:metadata;type:jsonb;serializer:json"`
	Version          int                 `gorm:"column:version;not null;default:0"`
	Attributes       []ProductAttribute  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Variant returns the variant with the given id when the product has variants.
func (p *Product) Variant(id string) (*Variant, bool) {
	if p == nil {
		return nil, false
	}
	return p.Metadata.Variant(id)
}

// HasVariants reports whether stock is tracked per variant.
func (p *Product) HasVariants() bool {
	return p != nil && len(p.Metadata.Variants) > 0
}

// UnitPrice resolves the price snapshot for a cart line: the variant price
// when the variant exists and is priced, otherwise the product price.
func (p *Product) UnitPrice(variantID string) decimal.Decimal {
	if variantID != "" {
		if v, ok := p.Variant(variantID); ok && v.Price.Valid {
			return v.Price.Decimal
		}
	}
	return p.Price
}

// AvailableStock is the stock ceiling for the given variant, falling back to
// the product scalar when the variant is unknown.
func (p *Product) AvailableStock(variantID string) int {
	if variantID != "" {
		if v, ok := p.Variant(variantID); ok {
			return v.Stock
		}
	}
	return p.StockQuantity
}

// SyncStock recomputes the scalar stock and in-stock flag. When variants
// exist the scalar is their sum.
func (p *Product) SyncStock() {
	if p.HasVariants() {
		p.StockQuantity = p.Metadata.TotalVariantStock()
	}
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}
	p.InStock = p.StockQuantity > 0
}

// DecrementStock removes qty units, flooring at zero, and keeps the scalar
// in step with the variants. A line without a known variant on a product
// that has variants drains the variants in listed order.
func (p *Product) DecrementStock(variantID string, qty int) {
	if variantID != "" {
		if v, ok := p.Variant(variantID); ok {
			v.Stock = max(v.Stock-qty, 0)
			p.SyncStock()
			return
		}
	}
	if !p.HasVariants() {
		p.StockQuantity = max(p.StockQuantity-qty, 0)
		p.SyncStock()
		return
	}
	for i := range p.Metadata.Variants {
		if qty <= 0 {
			break
		}
		v := &p.Metadata.Variants[i]
		if v.Stock <= 0 {
			continue
		}
		take := min(v.Stock, qty)
		v.Stock -= take
		qty -= take
	}
	p.SyncStock()
}

// ProductAttribute is a bounded free-form key/value pair shown by the storefront.
type ProductAttribute struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:product_attributes_product_key"`
	Key       string    `gorm:"column:key;size:64;not null;uniqueIndex:product_attributes_product_key"`
	Value     string    `gorm:"column:value;size:512;not null"`
}

func (a *ProductAttribute) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
