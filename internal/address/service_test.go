package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/dbtest"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	client := dbtest.Open(t)
	userSvc, err := users.NewService(users.NewRepository(client.DB()))
	require.NoError(t, err)
	repo := NewRepository(client.DB())
	svc, err := NewService(ServiceParams{DB: client, Repo: repo, Users: userSvc})
	require.NoError(t, err)
	return svc, repo
}

func sampleInput() Input {
	return Input{
		Name:    "Asha",
		Phone:   "9876543210",
		Street:  "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
	}
}

func TestCreateAndListAddresses(t *testing.T) {
	svc, repo := newTestService(t)
	dbtest.MustUser(t, repo.db, "asha@example.com")
	ctx := context.Background()

	first, err := svc.Create(ctx, "asha@example.com", sampleInput())
	require.NoError(t, err)
	assert.Equal(t, enums.AddressTypeHome, first.AddressType)

	in := sampleInput()
	in.AddressType = enums.AddressTypeWork
	in.IsDefault = true
	second, err := svc.Create(ctx, "asha@example.com", in)
	require.NoError(t, err)

	list, err := svc.List(ctx, "asha@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
}

func TestDefaultFlagMovesBetweenAddresses(t *testing.T) {
	svc, repo := newTestService(t)
	dbtest.MustUser(t, repo.db, "asha@example.com")
	ctx := context.Background()

	in := sampleInput()
	in.IsDefault = true
	first, err := svc.Create(ctx, "asha@example.com", in)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "asha@example.com", in)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	svc, repo := newTestService(t)
	dbtest.MustUser(t, repo.db, "asha@example.com")
	dbtest.MustUser(t, repo.db, "ravi@example.com")
	ctx := context.Background()

	created, err := svc.Create(ctx, "asha@example.com", sampleInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, "ravi@example.com", created.ID, sampleInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	err = svc.Delete(ctx, "ravi@example.com", created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	in := sampleInput()
	in.City = "Mysuru"
	updated, err := svc.Update(ctx, "asha@example.com", created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", updated.City)

	require.NoError(t, svc.Delete(ctx, "asha@example.com", created.ID))
	err = svc.Delete(ctx, "asha@example.com", created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Update(ctx, "asha@example.com", uuid.New(), in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, repo := newTestService(t)
	dbtest.MustUser(t, repo.db, "asha@example.com")

	in := sampleInput()
	in.Pincode = "5600"
	_, err := svc.Create(context.Background(), "asha@example.com", in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = sampleInput()
	in.AddressType = "Villa"
	_, err = svc.Create(context.Background(), "asha@example.com", in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), "missing@example.com", sampleInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
