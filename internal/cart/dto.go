package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
)

// ItemRequest is the body of add/update/remove calls.
type ItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"`
	VariantID string    `json:"variantId,omitempty"`
}

// CartLine is one cart row as shown to the shopper.
type CartLine struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"productId"`
	VariantID     *string         `json:"variantId,omitempty"`
	VariantLabel  string          `json:"variantLabel,omitempty"`
	Name          string          `json:"name"`
	ImageURL      *string         `json:"imageUrl,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
	StockQuantity int             `json:"stockQuantity"`
	InStock       bool            `json:"inStock"`
}

func LineFromModel(item *models.CartItem) CartLine {
	line := CartLine{
		ID:        item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		Price:     item.PriceAtAdd,
		LineTotal: item.LineTotal(),
	}
	if p := item.Product; p != nil {
		line.Name = p.Name
		line.ImageURL = p.ImageURL
		line.StockQuantity = p.AvailableStock(item.Variant())
		line.InStock = p.InStock
		if v, ok := p.Variant(item.Variant()); ok {
			line.VariantLabel = v.Label
		}
	}
	return line
}
