package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/dbtest"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestResolveNormalizesEmail(t *testing.T) {
	svc, repo := newTestService(t)
	user := dbtest.MustUser(t, repo.db, "asha@example.com")

	got, err := svc.Resolve(context.Background(), "  ASHA@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestResolveUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), "nobody@example.com")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Resolve(context.Background(), " ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateProfile(t *testing.T) {
	svc, repo := newTestService(t)
	dbtest.MustUser(t, repo.db, "asha@example.com")

	name := "Asha Rao"
	phone := "+91 98765-43210"
	dob := "1994-03-12"
	blank := " "
	profile, err := svc.UpdateProfile(context.Background(), "asha@example.com", ProfileUpdate{
		Name:        &name,
		Phone:       &phone,
		DateOfBirth: &dob,
		Gender:      &blank,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", profile.Name)
	require.NotNil(t, profile.Phone)
	assert.Equal(t, "+919876543210", *profile.Phone)
	require.NotNil(t, profile.DateOfBirth)
	assert.Equal(t, "1994-03-12", *profile.DateOfBirth)
	assert.Nil(t, profile.Gender)

	bad := "12/03/1994"
	_, err = svc.UpdateProfile(context.Background(), "asha@example.com", ProfileUpdate{DateOfBirth: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListCustomersCountsOrdersAndWishlist(t *testing.T) {
	svc, repo := newTestService(t)
	customer := dbtest.MustUser(t, repo.db, "asha@example.com")
	dbtest.MustAdmin(t, repo.db, "admin@example.com")
	product := dbtest.MustProduct(t, repo.db, "Kibble", "100", 5)

	require.NoError(t, repo.db.Create(&models.WishlistItem{UserID: customer.ID, ProductID: product.ID}).Error)
	require.NoError(t, repo.db.Create(&models.Order{UserID: customer.ID, DeliveryOption: enums.DeliveryStandard, PaymentMethod: enums.PaymentMethodCOD}).Error)
	require.NoError(t, repo.IncrementTotalOrders(context.Background(), customer.ID))

	rows, err := svc.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "asha@example.com", rows[0].Email)
	assert.EqualValues(t, 1, rows[0].OrderCount)
	assert.EqualValues(t, 1, rows[0].WishlistCount)

	reloaded, err := repo.FindByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TotalOrders)
}

func TestNormalizeIndianPhone(t *testing.T) {
	cases := map[string]struct {
		want string
		ok   bool
	}{
		"7892783668":      {"7892783668", true},
		"07892783668":     {"7892783668", true},
		"917892783668":    {"7892783668", true},
		"+91 78927 83668": {"+917892783668", true},
		"+1 415 555 0100": {"", false},
		"12345":           {"", false},
		"(789) 278-3668":  {"7892783668", true},
	}
	for in, tc := range cases {
		got, ok := NormalizeIndianPhone(in)
		assert.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}
