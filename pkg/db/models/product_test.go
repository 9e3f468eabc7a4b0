package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

func TestDecrementStockWithoutVariants(t *testing.T) {
	p := &Product{StockQuantity: 5, InStock: true}

	p.DecrementStock("", 3)
	assert.Equal(t, 2, p.StockQuantity)
	assert.True(t, p.InStock)

	p.DecrementStock("", 7)
	assert.Equal(t, 0, p.StockQuantity)
	assert.False(t, p.InStock)
}

func TestDecrementStockVariantKeepsScalarInSync(t *testing.T) {
	p := &Product{
		StockQuantity: 10,
		InStock:       true,
		Metadata: ProductMetadata{Variants: []Variant{
			{ID: "1kg", Stock: 4},
			{ID: "3kg", Stock: 6},
		}},
	}

	p.DecrementStock("1kg", 9)

	v, ok := p.Variant("1kg")
	require.True(t, ok)
	assert.Equal(t, 0, v.Stock)
	assert.Equal(t, 6, p.StockQuantity)
	assert.True(t, p.InStock)
}

func TestDecrementStockWithoutVariantDrainsVariants(t *testing.T) {
	p := &Product{
		StockQuantity: 6,
		InStock:       true,
		Metadata: ProductMetadata{Variants: []Variant{
			{ID: "small", Stock: 2},
			{ID: "large", Stock: 4},
		}},
	}

	p.DecrementStock("", 3)

	small, _ := p.Variant("small")
	large, _ := p.Variant("large")
	assert.Equal(t, 0, small.Stock)
	assert.Equal(t, 3, large.Stock)
	assert.Equal(t, 3, p.StockQuantity)
	assert.Equal(t, p.Metadata.TotalVariantStock(), p.StockQuantity)

	p.DecrementStock("unknown", 10)
	assert.Equal(t, 0, p.StockQuantity)
	assert.False(t, p.InStock)
	assert.Equal(t, 0, p.Metadata.TotalVariantStock())
}

func TestUnitPriceAndAvailableStock(t *testing.T) {
	p := &Product{
		Price:         decimal.NewFromInt(100),
		StockQuantity: 8,
		Metadata: ProductMetadata{Variants: []Variant{
			{ID: "large", Price: decimal.NewNullDecimal(decimal.NewFromInt(180)), Stock: 3},
			{ID: "small", Stock: 5},
		}},
	}

	assert.True(t, p.UnitPrice("large").Equal(decimal.NewFromInt(180)))
	assert.True(t, p.UnitPrice("small").Equal(decimal.NewFromInt(100)))
	assert.True(t, p.UnitPrice("").Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 3, p.AvailableStock("large"))
	assert.Equal(t, 8, p.AvailableStock("missing"))
}

func TestProductMetadataValidate(t *testing.T) {
	valid := ProductMetadata{
		Kind: enums.ProductKindPharmacy,
		Pharmacy: &PharmacyAttributes{
			PrescriptionRequired: true,
			DosageForm:           "tablet",
		},
		Variants: []Variant{{ID: "10", Stock: 2}},
	}
	require.NoError(t, valid.Validate())

	cases := map[string]ProductMetadata{
		"payload without kind": {Food: &FoodAttributes{FoodType: "Veg"}},
		"kind mismatch":        {Kind: enums.ProductKindFood, Accessory: &AccessoryAttrs{}},
		"two payloads":         {Kind: enums.ProductKindFood, Food: &FoodAttributes{}, Accessory: &AccessoryAttrs{}},
		"duplicate variant":    {Variants: []Variant{{ID: "a"}, {ID: "a"}}},
		"negative stock":       {Variants: []Variant{{ID: "a", Stock: -1}}},
		"unknown kind":         {Kind: "toy", Accessory: &AccessoryAttrs{}},
	}
	for name, meta := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, meta.Validate(), ErrInvalidMetadata)
		})
	}
}
