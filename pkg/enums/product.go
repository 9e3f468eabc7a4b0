package enums

import (
	"fmt"
	"strings"
)

// ProductType is the storefront section a product is listed under.
type ProductType string

const (
	ProductTypeDog      ProductType = "Dog"
	ProductTypeCat      ProductType = "Cat"
	ProductTypePharmacy ProductType = "Pharmacy"
	ProductTypeOutlet   ProductType = "Outlet"
)

var validProductTypes = []ProductType{
	ProductTypeDog,
	ProductTypeCat,
	ProductTypePharmacy,
	ProductTypeOutlet,
}

func (p ProductType) String() string {
	return string(p)
}

func (p ProductType) IsValid() bool {
	for _, candidate := range validProductTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductType accepts any casing of the known section names.
func ParseProductType(value string) (ProductType, error) {
	for _, candidate := range validProductTypes {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product type %q", value)
}

// ProductKind discriminates the typed metadata payload of a product.
type ProductKind string

const (
	ProductKindFood      ProductKind = "food"
	ProductKindPharmacy  ProductKind = "pharmacy"
	ProductKindAccessory ProductKind = "accessory"
)

var validProductKinds = []ProductKind{
	ProductKindFood,
	ProductKindPharmacy,
	ProductKindAccessory,
}

func (k ProductKind) String() string {
	return string(k)
}

func (k ProductKind) IsValid() bool {
	for _, candidate := range validProductKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseProductKind(value string) (ProductKind, error) {
	for _, candidate := range validProductKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product kind %q", value)
}
