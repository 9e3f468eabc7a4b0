package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Fees are the flat shipping charges per delivery option.
type Fees struct {
	Standard decimal.Decimal
	Express  decimal.Decimal
}

// DefaultFees matches the storefront's published shipping rates.
var DefaultFees = Fees{
	Standard: decimal.NewFromInt(50),
	Express:  decimal.NewFromInt(100),
}

// FeesFromConfig parses the configured fees.
func FeesFromConfig(cfg config.CheckoutConfig) (Fees, error) {
	standard, express, err := cfg.Fees()
	if err != nil {
		return Fees{}, err
	}
	return Fees{Standard: standard, Express: express}, nil
}

// For returns the fee for the delivery option. Anything but express ships
// standard.
func (f Fees) For(option enums.DeliveryOption) decimal.Decimal {
	if option == enums.DeliveryExpress {
		return f.Express
	}
	return f.Standard
}

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
}

// ComputeTotals sums the cart price snapshots and adds the shipping fee.
func ComputeTotals(items []models.CartItem, option enums.DeliveryOption, fees Fees) Totals {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal())
	}
	fee := fees.For(option)
	return Totals{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal.Add(fee),
	}
}

// Apply caches the totals on the selection.
func (t Totals) Apply(sel *models.CheckoutSelection) {
	sel.Subtotal = decimal.NewNullDecimal(t.Subtotal)
	sel.ShippingFee = decimal.NewNullDecimal(t.ShippingFee)
	sel.Total = decimal.NewNullDecimal(t.Total)
}

// CachedTotals reads the totals stored on a selection.
func CachedTotals(sel *models.CheckoutSelection) (Totals, bool) {
	if !sel.HasTotals() {
		return Totals{}, false
	}
	return Totals{
		Subtotal:    sel.Subtotal.Decimal,
		ShippingFee: sel.ShippingFee.Decimal,
		Total:       sel.Total.Decimal,
	}, true
}
