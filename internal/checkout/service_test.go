package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/address"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/cart"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/dbtest"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

const shopper = "asha@example.com"

type fixture struct {
	svc  Service
	repo *Repository
	conn *gorm.DB
	user *models.User
	addr *models.Address
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	userSvc, err := users.NewService(users.NewRepository(conn))
	require.NoError(t, err)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Addresses: address.NewRepository(conn),
		Cart:      cart.NewRepository(conn),
		Users:     userSvc,
		Fees:      DefaultFees,
	})
	require.NoError(t, err)
	user := dbtest.MustUser(t, conn, shopper)
	return fixture{svc: svc, repo: repo, conn: conn, user: user, addr: dbtest.MustAddress(t, conn, user.ID)}
}

func (f fixture) addLine(t *testing.T, price string, qty int) {
	t.Helper()
	p := dbtest.MustProduct(t, f.conn, "Kibble "+price, price, 10)
	item := &models.CartItem{UserID: f.user.ID, ProductID: p.ID, Quantity: qty, PriceAtAdd: decimal.RequireFromString(price)}
	require.NoError(t, f.conn.Create(item).Error)
}

func strPtr(s string) *string { return &s }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}

func TestComputeTotals(t *testing.T) {
	items := []models.CartItem{{Quantity: 2, PriceAtAdd: decimal.NewFromInt(100)}}

	standard := ComputeTotals(items, enums.DeliveryStandard, DefaultFees)
	assertMoney(t, "200", standard.Subtotal)
	assertMoney(t, "50", standard.ShippingFee)
	assertMoney(t, "250", standard.Total)

	express := ComputeTotals(items, enums.DeliveryExpress, DefaultFees)
	assertMoney(t, "200", express.Subtotal)
	assertMoney(t, "100", express.ShippingFee)
	assertMoney(t, "300", express.Total)
}

func TestSaveSelectionDefaultsAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLine(t, "100", 2)

	sel, err := f.svc.SaveSelection(ctx, shopper, SelectionInput{AddressID: &f.addr.ID})
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStandard, sel.DeliveryOption)
	assert.Equal(t, enums.PaymentMethodCOD, sel.PaymentMethod)
	require.True(t, sel.Total.Valid)
	assertMoney(t, "250", sel.Total.Decimal)

	sel, err = f.svc.SaveSelection(ctx, shopper, SelectionInput{DeliveryOption: strPtr("express"), PaymentMethod: strPtr("upi")})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodUPI, sel.PaymentMethod)
	assertMoney(t, "100", sel.ShippingFee.Decimal)
	assertMoney(t, "300", sel.Total.Decimal)
	require.NotNil(t, sel.AddressID)
	assert.Equal(t, f.addr.ID, *sel.AddressID)
}

func TestSaveSelectionRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := dbtest.MustUser(t, f.conn, "ravi@example.com")
	foreign := dbtest.MustAddress(t, f.conn, other.ID)

	_, err := f.svc.SaveSelection(ctx, shopper, SelectionInput{AddressID: &foreign.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.SaveSelection(ctx, shopper, SelectionInput{DeliveryOption: strPtr("overnight")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.SaveSelection(ctx, shopper, SelectionInput{PaymentMethod: strPtr("barter")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestReviewIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLine(t, "100", 2)
	_, err := f.svc.SaveSelection(ctx, shopper, SelectionInput{AddressID: &f.addr.ID, DeliveryOption: strPtr("express")})
	require.NoError(t, err)

	first, err := f.svc.Review(ctx, shopper)
	require.NoError(t, err)
	second, err := f.svc.Review(ctx, shopper)
	require.NoError(t, err)

	assertMoney(t, "300", first.Total)
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.ShippingFee.Equal(second.ShippingFee))
	assert.Len(t, second.Items, 1)
	assert.Equal(t, f.addr.ID, second.Address.ID)

	lookup, err := f.repo.FindByUser(ctx, f.user.ID)
	require.NoError(t, err)
	cached, ok := CachedTotals(lookup.Selection)
	require.True(t, ok)
	assertMoney(t, "300", cached.Total)
}

func TestReviewStateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Review(ctx, shopper)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.SaveSelection(ctx, shopper, SelectionInput{})
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, shopper)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "missing address")

	_, err = f.svc.SaveSelection(ctx, shopper, SelectionInput{AddressID: &f.addr.ID})
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, shopper)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "empty cart")
}

func TestChargeTotalsFillsMissingTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveSelection(ctx, shopper, SelectionInput{AddressID: &f.addr.ID})
	require.NoError(t, err)
	f.addLine(t, "100", 2)

	charge, err := f.svc.ChargeTotals(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, charge.UserID)
	assertMoney(t, "250", charge.Total)

	lookup, err := f.repo.FindByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, lookup.Selection.HasTotals())
}
