package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/products"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/dbtest"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

const reviewer = "asha@example.com"

func newTestService(t *testing.T) (Service, *gorm.DB, *models.User) {
	t.Helper()
	client := dbtest.Open(t)
	userSvc, err := users.NewService(users.NewRepository(client.DB()))
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     NewRepository(client.DB()),
		Products: products.NewRepository(client.DB()),
		Users:    userSvc,
	})
	require.NoError(t, err)
	user := dbtest.MustUser(t, client.DB(), reviewer)
	return svc, client.DB(), user
}

func TestCreateRequiresDeliveredOrder(t *testing.T) {
	svc, conn, user := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Salmon Treats", "150", 10)
	dbtest.MustOrder(t, conn, user.ID, enums.OrderStatusShipped, p)

	_, err := svc.Create(ctx, reviewer, CreateInput{ProductID: p.ID, Rating: 5})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Contains(t, err.Error(), "purchased and received")

	var count int64
	require.NoError(t, conn.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateLinksLatestDeliveredOrder(t *testing.T) {
	svc, conn, user := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Salmon Treats", "150", 10)
	dbtest.MustOrder(t, conn, user.ID, enums.OrderStatusDelivered, p)
	latest := dbtest.MustOrder(t, conn, user.ID, enums.OrderStatusDelivered, p)

	title := "  Loved it "
	review, err := svc.Create(ctx, reviewer, CreateInput{ProductID: p.ID, Rating: 4, Title: &title})
	require.NoError(t, err)
	assert.True(t, review.IsVerifiedPurchase)
	require.NotNil(t, review.OrderID)
	assert.Equal(t, latest.ID, *review.OrderID)
	require.NotNil(t, review.Title)
	assert.Equal(t, "Loved it", *review.Title)

	var stored models.Product
	require.NoError(t, conn.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 1, stored.ReviewCount)
	assert.InDelta(t, 4.0, stored.AverageRating, 0.001)

	_, err = svc.Create(ctx, reviewer, CreateInput{ProductID: p.ID, Rating: 2})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, reviewer, CreateInput{ProductID: uuid.New(), Rating: 6})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, reviewer, CreateInput{ProductID: uuid.New(), Rating: 3})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestStatsAndListing(t *testing.T) {
	svc, conn, user := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Catnip", "90", 10)
	dbtest.MustOrder(t, conn, user.ID, enums.OrderStatusDelivered, p)
	_, err := svc.Create(ctx, reviewer, CreateInput{ProductID: p.ID, Rating: 5})
	require.NoError(t, err)

	other := dbtest.MustUser(t, conn, "ravi@example.com")
	require.NoError(t, conn.Create(&models.Review{
		UserID: other.ID, ProductID: p.ID, Rating: 3, IsActive: true,
	}).Error)

	stats, err := svc.Stats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalReviews)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	require.Len(t, stats.RatingDistribution, 5)
	assert.Equal(t, int64(1), stats.RatingDistribution[4].Count)
	assert.InDelta(t, 50.0, stats.RatingDistribution[2].Percentage, 0.001)
	assert.Zero(t, stats.RatingDistribution[0].Count)

	page, err := svc.ProductReviews(ctx, p.ID, 0, 1)
	require.NoError(t, err)
	assert.Len(t, page.Reviews, 1)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	mine, err := svc.UserReviews(ctx, reviewer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Catnip", mine[0].ProductName)
}

func TestEligibleProductsExcludesReviewed(t *testing.T) {
	svc, conn, user := newTestService(t)
	ctx := context.Background()
	reviewed := dbtest.MustProduct(t, conn, "Biscuits", "80", 10)
	pending := dbtest.MustProduct(t, conn, "Leash", "300", 10)
	undelivered := dbtest.MustProduct(t, conn, "Collar", "250", 10)
	dbtest.MustOrder(t, conn, user.ID, enums.OrderStatusDelivered, reviewed, pending)
	dbtest.MustOrder(t, conn, user.ID, enums.OrderStatusProcessing, undelivered)

	_, err := svc.Create(ctx, reviewer, CreateInput{ProductID: reviewed.ID, Rating: 5})
	require.NoError(t, err)

	eligible, err := svc.EligibleProducts(ctx, reviewer)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, pending.ID, eligible[0].ID)
}

func TestMarkHelpful(t *testing.T) {
	svc, conn, user := newTestService(t)
	ctx := context.Background()
	p := dbtest.MustProduct(t, conn, "Brush", "120", 10)
	review := &models.Review{UserID: user.ID, ProductID: p.ID, Rating: 4, IsActive: true}
	require.NoError(t, conn.Create(review).Error)

	require.NoError(t, svc.MarkHelpful(ctx, review.ID))
	require.NoError(t, svc.MarkHelpful(ctx, review.ID))

	var stored models.Review
	require.NoError(t, conn.First(&stored, "id = ?", review.ID).Error)
	assert.Equal(t, 2, stored.HelpfulCount)

	err := svc.MarkHelpful(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestBuildStatsEmpty(t *testing.T) {
	stats := buildStats(nil)
	assert.Zero(t, stats.AverageRating)
	assert.Len(t, stats.RatingDistribution, 5)
}
