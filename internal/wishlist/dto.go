package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is a liked product as the storefront renders it.
type ItemDTO struct {
	ProductID     uuid.UUID       `json:"productId"`
	ProductName   string          `json:"productName"`
	ProductImage  *string         `json:"productImage,omitempty"`
	ProductPrice  decimal.Decimal `json:"productPrice"`
	CreatedAt     time.Time       `json:"createdAt"`
	InStock       bool            `json:"inStock"`
	StockQuantity int             `json:"stockQuantity"`
	Category      string          `json:"category"`
	Brand         *string         `json:"brand,omitempty"`
}

type Page struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

type AddRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
}
