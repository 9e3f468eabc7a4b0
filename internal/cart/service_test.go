package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/products"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/dbtest"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

const shopper = "asha@example.com"

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client := dbtest.Open(t)
	userSvc, err := users.NewService(users.NewRepository(client.DB()))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(client.DB()), products.NewRepository(client.DB()), userSvc)
	require.NoError(t, err)
	dbtest.MustUser(t, client.DB(), shopper)
	return svc, client.DB()
}

func sizedVariants() dbtest.ProductOption {
	return dbtest.WithVariants(
		models.Variant{ID: "1kg", Label: "1 kg", Price: decimal.NewNullDecimal(decimal.RequireFromString("450")), Stock: 3},
		models.Variant{ID: "3kg", Label: "3 kg", Stock: 0},
	)
}

func TestAddToCartSnapshotsPriceAndAccumulates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Chicken Kibble", "100", 5)

	line, err := svc.AddToCart(ctx, shopper, p.ID, 2, "")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(line.Price))

	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", "150").Error)

	line, err = svc.AddToCart(ctx, shopper, p.ID, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, decimal.RequireFromString("100").Equal(line.Price))
	assert.True(t, decimal.RequireFromString("300").Equal(line.LineTotal))

	items, err := svc.GetCart(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chicken Kibble", items[0].Name)
}

func TestAddToCartRejections(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Catnip", "40", 2)
	empty := dbtest.MustProduct(t, conn, "Sold Out", "40", 0)
	sized := dbtest.MustProduct(t, conn, "Salmon Bites", "400", 0, sizedVariants())

	cases := []struct {
		name      string
		productID uuid.UUID
		qty       int
		variant   string
		code      pkgerrors.Code
	}{
		{"zero quantity", p.ID, 0, "", pkgerrors.CodeValidation},
		{"negative quantity", p.ID, -1, "", pkgerrors.CodeValidation},
		{"above stock", p.ID, 3, "", pkgerrors.CodeStateConflict},
		{"out of stock", empty.ID, 1, "", pkgerrors.CodeStateConflict},
		{"variant without stock", sized.ID, 1, "3kg", pkgerrors.CodeStateConflict},
		{"unknown variant", sized.ID, 1, "10kg", pkgerrors.CodeStateConflict},
		{"unknown product", uuid.New(), 1, "", pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddToCart(ctx, shopper, tc.productID, tc.qty, tc.variant)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestAddToCartVariantUsesVariantPriceAndStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Salmon Bites", "400", 0, sizedVariants())

	line, err := svc.AddToCart(ctx, shopper, p.ID, 2, "1kg")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("450").Equal(line.Price))
	assert.Equal(t, "1 kg", line.VariantLabel)

	_, err = svc.AddToCart(ctx, shopper, p.ID, 2, "1kg")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Stock limit exceeded. Available: 3", typed.Message())
}

func TestUpdateQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Chew Toy", "80", 4)

	_, err := svc.UpdateQuantity(ctx, shopper, p.ID, 1, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.AddToCart(ctx, shopper, p.ID, 1, "")
	require.NoError(t, err)

	line, err := svc.UpdateQuantity(ctx, shopper, p.ID, 4, "")
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	_, err = svc.UpdateQuantity(ctx, shopper, p.ID, 5, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.UpdateQuantity(ctx, shopper, p.ID, 0, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRemoveItemFallsBackToPlainLine(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Leash", "250", 3)

	_, err := svc.AddToCart(ctx, shopper, p.ID, 1, "")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, shopper, p.ID, "blue"))
	items, err := svc.GetCart(ctx, shopper)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, svc.RemoveItem(ctx, shopper, p.ID, ""))
}

func TestClearEmptiesCart(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	a := dbtest.MustProduct(t, conn, "Bowl", "120", 3)
	b := dbtest.MustProduct(t, conn, "Brush", "90", 3)
	_, err := svc.AddToCart(ctx, shopper, a.ID, 1, "")
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, shopper, b.ID, 2, "")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, shopper))
	items, err := svc.GetCart(ctx, shopper)
	require.NoError(t, err)
	assert.Empty(t, items)
}
