package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/dbtest"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

func TestSeedCatalogSkipsExistingNames(t *testing.T) {
	client := dbtest.Open(t)
	ctx := context.Background()

	inserted, err := seedCatalog(ctx, client, nil, starterCatalog())
	require.NoError(t, err)
	assert.Equal(t, len(starterCatalog()), inserted)

	inserted, err = seedCatalog(ctx, client, nil, starterCatalog())
	require.NoError(t, err)
	assert.Zero(t, inserted)

	counts, err := tableCounts(ctx, client.DB())
	require.NoError(t, err)
	assert.Contains(t, counts, tableCount{name: "products", rows: int64(len(starterCatalog()))})
}

func TestEnsureAdmin(t *testing.T) {
	client := dbtest.Open(t)
	ctx := context.Background()
	repo := users.NewRepository(client.DB())
	pw := config.PasswordConfig{}

	t.Run("creates account", func(t *testing.T) {
		created, err := ensureAdmin(ctx, repo, pw, " Boss@PetCo.test ", "Boss", "s3cret!pass")
		require.NoError(t, err)
		assert.True(t, created)

		user, err := repo.FindByEmail(ctx, "boss@petco.test")
		require.NoError(t, err)
		assert.Equal(t, enums.UserRoleAdmin, user.Role)
		assert.NotEqual(t, "s3cret!pass", user.PasswordHash)
	})

	t.Run("promotes customer", func(t *testing.T) {
		dbtest.MustUser(t, client.DB(), "walker@petco.test")
		created, err := ensureAdmin(ctx, repo, pw, "walker@petco.test", "", "")
		require.NoError(t, err)
		assert.False(t, created)

		user, err := repo.FindByEmail(ctx, "walker@petco.test")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})

	t.Run("new account needs password", func(t *testing.T) {
		_, err := ensureAdmin(ctx, repo, pw, "nobody@petco.test", "Nobody", "")
		assert.Error(t, err)
	})
}
