package products

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/dbtest"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/pagination"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/storage"
)

type fakeImages struct {
	puts    []string
	deletes []string
}

func (f *fakeImages) Put(_ context.Context, key, contentType string, body io.Reader, size int64) (*storage.Object, error) {
	_, _ = io.ReadAll(body)
	f.puts = append(f.puts, key)
	return &storage.Object{Key: key, URL: "https://cdn.example.com/" + key, ContentType: contentType, Size: size}, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

func newTestService(t *testing.T) (Service, *db.Client, *fakeImages) {
	t.Helper()
	client := dbtest.Open(t)
	images := &fakeImages{}
	svc, err := NewService(ServiceParams{DB: client, Repo: NewRepository(client.DB()), Images: images})
	require.NoError(t, err)
	return svc, client, images
}

func foodInput(name string) Input {
	return Input{
		Name:          name,
		Price:         decimal.RequireFromString("499.00"),
		Category:      "Dog Food",
		Type:          enums.ProductTypeDog,
		StockQuantity: 10,
		Metadata: models.ProductMetadata{
			Kind: enums.ProductKindFood,
			Food: &models.FoodAttributes{FoodType: "Veg", Ingredients: "rice, pumpkin"},
		},
		Attributes: map[string]string{"lifeStage": "Puppy"},
	}
}

func TestCreateProductWithAttributes(t *testing.T) {
	svc, _, _ := newTestService(t)

	dto, err := svc.Create(context.Background(), foodInput("Puppy Kibble"))
	require.NoError(t, err)
	assert.Equal(t, "Puppy Kibble", dto.Name)
	assert.True(t, dto.InStock)
	assert.True(t, dto.IsActive)
	assert.Equal(t, map[string]string{"lifeStage": "Puppy"}, dto.Attributes)
	require.NotNil(t, dto.Metadata.Food)
	assert.Equal(t, "Veg", dto.Metadata.Food.FoodType)

	fetched, err := svc.Get(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "rice, pumpkin", fetched.Metadata.Food.Ingredients)
}

func TestCreateProductWithVariantsSumsStock(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := foodInput("Chicken Bites")
	in.StockQuantity = 99
	in.Metadata.Variants = []models.Variant{
		{ID: "500g", Stock: 3, Price: decimal.NewNullDecimal(decimal.RequireFromString("250"))},
		{ID: "1kg", Stock: 4},
	}
	dto, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 7, dto.StockQuantity)
	assert.True(t, dto.InStock)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := foodInput("Bad Type")
	in.Type = "Fish"
	_, err := svc.Create(ctx, in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = foodInput("Mismatched")
	in.Metadata.Kind = enums.ProductKindPharmacy
	_, err = svc.Create(ctx, in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = foodInput("Too Many Attributes")
	in.Attributes = map[string]string{}
	for i := 0; i <= maxAttributes; i++ {
		in.Attributes[fmt.Sprintf("k%d", i)] = "v"
	}
	_, err = svc.Create(ctx, in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = foodInput("Long Value")
	in.Attributes = map[string]string{"note": strings.Repeat("x", maxAttributeValLen+1)}
	_, err = svc.Create(ctx, in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateVariantStockResyncsScalar(t *testing.T) {
	svc, client, _ := newTestService(t)
	product := dbtest.MustProduct(t, client.DB(), "Collar", "300", 0, dbtest.WithVariants(
		models.Variant{ID: "S", Stock: 2},
		models.Variant{ID: "M", Stock: 5},
	))

	dto, err := svc.UpdateVariantStock(context.Background(), product.ID, "S", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, dto.StockQuantity)
	assert.True(t, dto.InStock)

	dto, err = svc.UpdateVariantStock(context.Background(), product.ID, "M", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, dto.StockQuantity)
	assert.False(t, dto.InStock)

	_, err = svc.UpdateVariantStock(context.Background(), product.ID, "XL", 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.UpdateVariantStock(context.Background(), product.ID, "S", -1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSaveStockDetectsStaleVersion(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	product := dbtest.MustProduct(t, client.DB(), "Leash", "150", 5)
	ctx := context.Background()

	first, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)

	first.DecrementStock("", 2)
	require.NoError(t, repo.SaveStock(ctx, first))

	stale.DecrementStock("", 1)
	assert.ErrorIs(t, repo.SaveStock(ctx, stale), ErrVersionConflict)

	reloaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.StockQuantity)
	assert.Equal(t, 1, reloaded.Version)
}

func TestListFiltersAndPaging(t *testing.T) {
	svc, client, _ := newTestService(t)
	conn := client.DB()
	dbtest.MustProduct(t, conn, "Salmon Kibble", "500", 4)
	dbtest.MustProduct(t, conn, "Tuna Treats", "120", 0, dbtest.WithCategory("Cat Treats"))
	dbtest.MustProduct(t, conn, "Lamb Kibble", "650", 2)
	hidden := dbtest.MustProduct(t, conn, "Old Kibble", "100", 1)
	require.NoError(t, conn.Model(hidden).Update("is_active", false).Error)

	res, err := svc.List(context.Background(), ListInput{Filters: ListFilters{Query: "KIBBLE"}})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2)

	inStock := true
	res, err = svc.List(context.Background(), ListInput{Filters: ListFilters{InStock: &inStock}})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2)

	res, err = svc.List(context.Background(), ListInput{Filters: ListFilters{Category: "cat treats"}})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Tuna Treats", res.Products[0].Name)

	res, err = svc.List(context.Background(), ListInput{Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2)
	assert.NotEmpty(t, res.NextCursor)

	_, err = svc.List(context.Background(), ListInput{Pagination: pagination.Params{Cursor: "%%%"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCategoriesGroupsActiveProducts(t *testing.T) {
	svc, client, _ := newTestService(t)
	conn := client.DB()
	dbtest.MustProduct(t, conn, "A", "10", 1)
	dbtest.MustProduct(t, conn, "B", "10", 1)
	dbtest.MustProduct(t, conn, "C", "10", 1, dbtest.WithCategory("Cat Food"))

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Cat Food", cats[0].Name)
	assert.Equal(t, 1, cats[0].ProductCount)
	assert.Equal(t, "Dog Food", cats[1].Name)
	assert.Equal(t, 2, cats[1].ProductCount)
}

func TestStockInfo(t *testing.T) {
	svc, client, _ := newTestService(t)
	empty := dbtest.MustProduct(t, client.DB(), "Empty", "10", 0)

	info, err := svc.Stock(context.Background(), empty.ID)
	require.NoError(t, err)
	assert.False(t, info.Available)

	_, err = svc.Stock(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteDeactivatesAndDetaches(t *testing.T) {
	svc, client, _ := newTestService(t)
	conn := client.DB()
	user := dbtest.MustUser(t, conn, "asha@example.com")
	product := dbtest.MustProduct(t, conn, "Ball", "80", 3)
	require.NoError(t, conn.Create(&models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 1, PriceAtAdd: product.Price}).Error)
	require.NoError(t, conn.Create(&models.WishlistItem{UserID: user.ID, ProductID: product.ID}).Error)

	require.NoError(t, svc.Delete(context.Background(), product.ID))

	var cartCount, wishCount int64
	require.NoError(t, conn.Model(&models.CartItem{}).Count(&cartCount).Error)
	require.NoError(t, conn.Model(&models.WishlistItem{}).Count(&wishCount).Error)
	assert.Zero(t, cartCount)
	assert.Zero(t, wishCount)

	dto, err := svc.Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.False(t, dto.IsActive)
}

func TestUploadImageReplacesPrevious(t *testing.T) {
	svc, client, images := newTestService(t)
	product := dbtest.MustProduct(t, client.DB(), "Bed", "900", 1)
	ctx := context.Background()

	first, err := svc.UploadImage(ctx, product.ID, ImageUpload{ContentType: "image/png", Size: 3, Body: strings.NewReader("png")})
	require.NoError(t, err)
	require.NotNil(t, first.ImageURL)
	assert.Contains(t, *first.ImageURL, "products/"+product.ID.String())

	_, err = svc.UploadImage(ctx, product.ID, ImageUpload{ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("jpg")})
	require.NoError(t, err)
	require.Len(t, images.puts, 2)
	assert.Equal(t, []string{images.puts[0]}, images.deletes)

	_, err = svc.UploadImage(ctx, product.ID, ImageUpload{ContentType: "text/plain", Body: strings.NewReader("x")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
