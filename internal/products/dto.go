package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/pagination"
)

const (
	maxAttributes       = 32
	maxAttributeKeyLen  = 64
	maxAttributeValLen  = 512
	defaultCategoryName = "Uncategorized"
)

// Input is the admin create/update payload. Pointer fields are optional.
type Input struct {
	Name             string                 `json:"name" validate:"required"`
	Description      *string                `json:"description,omitempty"`
	ShortDescription *string                `json:"shortDescription,omitempty"`
	Price            decimal.Decimal        `json:"price"`
	OriginalPrice    *decimal.Decimal       `json:"originalPrice,omitempty"`
	Category         string                 `json:"category"`
	Subcategory      *string                `json:"subcategory,omitempty"`
	Brand            *string                `json:"brand,omitempty"`
	Type             enums.ProductType      `json:"type" validate:"required"`
	PetType          *string                `json:"petType,omitempty"`
	Weight           *decimal.Decimal       `json:"weight,omitempty"`
	WeightUnit       *string                `json:"weightUnit,omitempty"`
	StockQuantity    int                    `json:"stockQuantity" validate:"gte=0"`
	InStock          *bool                  `json:"inStock,omitempty"`
	IsActive         *bool                  `json:"isActive,omitempty"`
	ImageURL         *string                `json:"imageUrl,omitempty"`
	Metadata         models.ProductMetadata `json:"metadata"`
	Attributes       map[string]string      `json:"attributes,omitempty"`
}

// DTO is the public product representation.
type DTO struct {
	ID               uuid.UUID              `json:"id"`
	Name             string                 `json:"name"`
	Description      *string                `json:"description,omitempty"`
	ShortDescription *string                `json:"shortDescription,omitempty"`
	Price            decimal.Decimal        `json:"price"`
	OriginalPrice    *decimal.Decimal       `json:"originalPrice,omitempty"`
	Category         string                 `json:"category"`
	Subcategory      *string                `json:"subcategory,omitempty"`
	Brand            *string                `json:"brand,omitempty"`
	Type             enums.ProductType      `json:"type"`
	PetType          *string                `json:"petType,omitempty"`
	Weight           *decimal.Decimal       `json:"weight,omitempty"`
	WeightUnit       *string                `json:"weightUnit,omitempty"`
	StockQuantity    int                    `json:"stockQuantity"`
	InStock          bool                   `json:"inStock"`
	IsActive         bool                   `json:"isActive"`
	ImageURL         *string                `json:"imageUrl,omitempty"`
	AverageRating    float64                `json:"averageRating"`
	ReviewCount      int                    `json:"reviewCount"`
	Metadata         models.ProductMetadata `json:"metadata"`
	Attributes       map[string]string      `json:"attributes,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// StockInfo explains whether a product can currently be bought.
type StockInfo struct {
	ProductID     uuid.UUID `json:"productId"`
	ProductName   string    `json:"productName"`
	InStock       bool      `json:"inStock"`
	StockQuantity int       `json:"stockQuantity"`
	IsActive      bool      `json:"isActive"`
	Available     bool      `json:"available"`
	Status        string    `json:"status"`
}

type CategorySummary struct {
	Name          string   `json:"name"`
	ProductCount  int      `json:"productCount"`
	Subcategories []string `json:"subcategories"`
}

// ListFilters are the browse endpoint query knobs.
type ListFilters struct {
	Category    string
	Subcategory string
	Type        *enums.ProductType
	PetType     string
	Brand       string
	Query       string
	InStock     *bool
}

type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

type ListResult struct {
	Products   []DTO  `json:"products"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func FromModel(p *models.Product) DTO {
	dto := DTO{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		Category:         p.Category,
		Subcategory:      p.Subcategory,
		Brand:            p.Brand,
		Type:             p.Type,
		PetType:          p.PetType,
		WeightUnit:       p.WeightUnit,
		StockQuantity:    p.StockQuantity,
		InStock:          p.InStock,
		IsActive:         p.IsActive,
		ImageURL:         p.ImageURL,
		AverageRating:    p.AverageRating,
		ReviewCount:      p.ReviewCount,
		Metadata:         p.Metadata,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.OriginalPrice.Valid {
		v := p.OriginalPrice.Decimal
		dto.OriginalPrice = &v
	}
	if p.Weight.Valid {
		v := p.Weight.Decimal
		dto.Weight = &v
	}
	if len(p.Attributes) > 0 {
		dto.Attributes = make(map[string]string, len(p.Attributes))
		for _, attr := range p.Attributes {
			dto.Attributes[attr.Key] = attr.Value
		}
	}
	return dto
}

func stockInfoFor(p *models.Product) StockInfo {
	info := StockInfo{
		ProductID:     p.ID,
		ProductName:   p.Name,
		InStock:       p.InStock,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		Available:     true,
		Status:        "In Stock",
	}
	switch {
	case !p.InStock:
		info.Available = false
		info.Status = "Explicitly marked as out of stock"
	case p.StockQuantity <= 0:
		info.Available = false
		info.Status = "Out of stock"
	case !p.IsActive:
		info.Available = false
		info.Status = "Product is inactive"
	}
	return info
}
