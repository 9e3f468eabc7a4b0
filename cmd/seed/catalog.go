package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/products"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Insert the starter product catalog, skipping names that already exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, closeFn, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		inserted, err := seedCatalog(ctx, e.db, e.logg, starterCatalog())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d products\n", inserted)
		return nil
	},
}

func seedCatalog(ctx context.Context, client *db.Client, logg *logger.Logger, items []products.Input) (int, error) {
	svc, err := products.NewService(products.ServiceParams{
		DB:     client,
		Repo:   products.NewRepository(client.DB()),
		Logger: logg,
	})
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, item := range items {
		exists, err := productNamed(ctx, client.DB(), item.Name)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}
		if _, err := svc.Create(ctx, item); err != nil {
			return inserted, fmt.Errorf("create %q: %w", item.Name, err)
		}
		inserted++
	}
	return inserted, nil
}

func productNamed(ctx context.Context, conn *gorm.DB, name string) (bool, error) {
	var n int64
	if err := conn.WithContext(ctx).Model(&models.Product{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, fmt.Errorf("lookup product %q: %w", name, err)
	}
	return n > 0, nil
}

func starterCatalog() []products.Input {
	ptr := func(s string) *string { return &s }
	price := decimal.RequireFromString

	return []products.Input{
		{
			Name:          "Chicken & Rice Adult Kibble",
			Price:         price("1299.00"),
			OriginalPrice: decimalPtr(price("1499.00")),
			Category:      "Dog Food",
			Subcategory:   ptr("Dry Food"),
			Brand:         ptr("Pawsome"),
			Type:          enums.ProductTypeDog,
			PetType:       ptr("dog"),
			StockQuantity: 40,
			Metadata: models.ProductMetadata{
				Kind:     enums.ProductKindFood,
				Food:     &models.FoodAttributes{FoodType: "Non-Veg", Ingredients: "chicken, rice, carrots"},
				Variants: []models.Variant{
					{ID: "1kg", Label: "1 kg", Price: decimal.NewNullDecimal(price("1299.00")), Stock: 25, Weight: "1kg"},
					{ID: "3kg", Label: "3 kg", Price: decimal.NewNullDecimal(price("3499.00")), Stock: 15, Weight: "3kg"},
				},
			},
			Attributes: map[string]string{"lifeStage": "Adult"},
		},
		{
			Name:          "Tuna Pate Wet Food",
			Price:         price("89.00"),
			Category:      "Cat Food",
			Subcategory:   ptr("Wet Food"),
			Brand:         ptr("Whisker Co"),
			Type:          enums.ProductTypeCat,
			PetType:       ptr("cat"),
			StockQuantity: 120,
			Metadata: models.ProductMetadata{
				Kind: enums.ProductKindFood,
				Food: &models.FoodAttributes{FoodType: "Non-Veg", Texture: "Pate"},
			},
		},
		{
			Name:          "Tick & Flea Spot-On",
			Price:         price("649.00"),
			Category:      "Pharmacy",
			Subcategory:   ptr("Parasite Control"),
			Type:          enums.ProductTypePharmacy,
			StockQuantity: 30,
			Metadata: models.ProductMetadata{
				Kind:     enums.ProductKindPharmacy,
				Pharmacy: &models.PharmacyAttributes{DosageForm: "Topical", ActiveIngredient: "Fipronil"},
			},
		},
		{
			Name:          "Reflective Nylon Leash",
			Price:         price("399.00"),
			OriginalPrice: decimalPtr(price("599.00")),
			Category:      "Accessories",
			Subcategory:   ptr("Leashes"),
			Type:          enums.ProductTypeOutlet,
			PetType:       ptr("dog"),
			StockQuantity: 18,
			Metadata: models.ProductMetadata{
				Kind:      enums.ProductKindAccessory,
				Accessory: &models.AccessoryAttrs{Material: "Nylon", Features: []string{"reflective", "padded handle"}},
			},
		},
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
