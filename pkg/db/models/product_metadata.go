package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// ProductMetadata holds the subtype attributes of a product. Exactly one of
// Food, Pharmacy or Accessory is set and it matches Kind.
type ProductMetadata struct {
	Kind      enums.ProductKind   `json:"kind,omitempty"`
	Food      *FoodAttributes     `json:"food,omitempty"`
	Pharmacy  *PharmacyAttributes `json:"pharmacy,omitempty"`
	Accessory *AccessoryAttrs     `json:"accessory,omitempty"`
	Variants  []Variant           `json:"variants,omitempty"`
}

type FoodAttributes struct {
	FoodType    string     `json:"foodType,omitempty"`
	Ingredients string     `json:"ingredients,omitempty"`
	Benefits    string     `json:"benefits,omitempty"`
	ServingSize string     `json:"servingSize,omitempty"`
	TreatType   string     `json:"treatType,omitempty"`
	Texture     string     `json:"texture,omitempty"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
}

type Nutrition struct {
	Protein  decimal.NullDecimal `json:"protein"`
	Fat      decimal.NullDecimal `json:"fat"`
	Fiber    decimal.NullDecimal `json:"fiber"`
	Moisture decimal.NullDecimal `json:"moisture"`
	Ash      decimal.NullDecimal `json:"ash"`
	Calories decimal.NullDecimal `json:"calories"`
}

type PharmacyAttributes struct {
	PrescriptionRequired bool       `json:"prescriptionRequired"`
	DosageForm           string     `json:"dosageForm,omitempty"`
	Strength             string     `json:"strength,omitempty"`
	ActiveIngredient     string     `json:"activeIngredient,omitempty"`
	Manufacturer         string     `json:"manufacturer,omitempty"`
	Indications          string     `json:"indications,omitempty"`
	Contraindications    string     `json:"contraindications,omitempty"`
	ExpiryDate           *time.Time `json:"expiryDate,omitempty"`
}

type AccessoryAttrs struct {
	Material  string   `json:"material,omitempty"`
	Scent     string   `json:"scent,omitempty"`
	PackCount int      `json:"packCount,omitempty"`
	Features  []string `json:"features,omitempty"`
}

// Variant is a purchasable size/flavour of a product with its own stock.
type Variant struct {
	ID     string              `json:"id"`
	Label  string              `json:"label,omitempty"`
	Price  decimal.NullDecimal `json:"price"`
	Stock  int                 `json:"stock"`
	Weight string              `json:"weight,omitempty"`
}

var ErrInvalidMetadata = errors.New("invalid product metadata")

// Validate checks the union invariant and the variant list.
func (m ProductMetadata) Validate() error {
	set := 0
	if m.Food != nil {
		set++
	}
	if m.Pharmacy != nil {
		set++
	}
	if m.Accessory != nil {
		set++
	}
	if m.Kind == "" {
		if set != 0 {
			return fmt.Errorf("%w: attributes given without kind", ErrInvalidMetadata)
		}
	} else {
		if !m.Kind.IsValid() {
			return fmt.Errorf("%w: unknown kind %q", ErrInvalidMetadata, m.Kind)
		}
		if set != 1 {
			return fmt.Errorf("%w: exactly one attribute set is required for kind %q", ErrInvalidMetadata, m.Kind)
		}
		switch m.Kind {
		case enums.ProductKindFood:
			if m.Food == nil {
				return fmt.Errorf("%w: kind food requires food attributes", ErrInvalidMetadata)
			}
		case enums.ProductKindPharmacy:
			if m.Pharmacy == nil {
				return fmt.Errorf("%w: kind pharmacy requires pharmacy attributes", ErrInvalidMetadata)
			}
		case enums.ProductKindAccessory:
			if m.Accessory == nil {
				return fmt.Errorf("%w: kind accessory requires accessory attributes", ErrInvalidMetadata)
			}
		}
	}

	seen := make(map[string]struct{}, len(m.Variants))
	for _, v := range m.Variants {
		if v.ID == "" {
			return fmt.Errorf("%w: variant id is required", ErrInvalidMetadata)
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("%w: duplicate variant %q", ErrInvalidMetadata, v.ID)
		}
		seen[v.ID] = struct{}{}
		if v.Stock < 0 {
			return fmt.Errorf("%w: variant %q has negative stock", ErrInvalidMetadata, v.ID)
		}
		if v.Price.Valid && v.Price.Decimal.IsNegative() {
			return fmt.Errorf("%w: variant %q has negative price", ErrInvalidMetadata, v.ID)
		}
	}
	return nil
}

// Variant returns a pointer into the variant list so callers can mutate stock.
func (m *ProductMetadata) Variant(id string) (*Variant, bool) {
	for i := range m.Variants {
		if m.Variants[i].ID == id {
			return &m.Variants[i], true
		}
	}
	return nil, false
}

func (m ProductMetadata) TotalVariantStock() int {
	total := 0
	for _, v := range m.Variants {
		total += v.Stock
	}
	return total
}
