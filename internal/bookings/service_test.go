package bookings

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/dbtest"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/outbox"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/storage"
)

type fakePhotos struct {
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{objects: map[string][]byte{}}
}

func (f *fakePhotos) Put(_ context.Context, key, contentType string, body io.Reader, size int64) (*storage.Object, error) {
	if f.failPut {
		return nil, errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.objects[key] = data
	return &storage.Object{Key: key, URL: f.URL(key), ContentType: contentType, Size: size}, nil
}

func (f *fakePhotos) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakePhotos) URL(key string) string {
	return "https://cdn.test/" + key
}

func newTestService(t *testing.T) (Service, *gorm.DB, *fakePhotos) {
	t.Helper()
	client := dbtest.Open(t)
	photos := newFakePhotos()
	svc, err := NewService(ServiceParams{
		DB:     client,
		Repo:   NewRepository(client.DB()),
		Photos: photos,
		Outbox: outbox.NewService(outbox.NewRepository(client.DB()), nil),
		Now:    func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, client.DB(), photos
}

func validInput() CreateInput {
	return CreateInput{
		PetName:     "Bella",
		OwnerName:   "Asha Rao",
		Phone:       "9876543210",
		ServiceName: "Full Groom",
		ServiceType: "dog-grooming",
	}
}

func strPtr(s string) *string { return &s }

func eventTypes(t *testing.T, conn *gorm.DB) []enums.OutboxEventType {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	out := make([]enums.OutboxEventType, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.EventType)
	}
	return out
}

func TestCreateAppliesDefaultsAndQueuesEvent(t *testing.T) {
	svc, conn, _ := newTestService(t)
	in := validInput()
	in.AddOns = map[string]any{
		"nailTrim": true,
		"petPhoto": "ignored",
		"gps":      map[string]any{"lat": 12.9716, "lng": "77.5946"},
	}
	in.PreferredDate = strPtr("2026-03-14")

	booking, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, enums.BookingStatusPending, booking.Status)
	assert.Equal(t, "Address not provided", booking.Address)
	assert.Equal(t, "unknown", booking.PetType)
	assert.Equal(t, "Not specified", booking.PreferredTime)
	assert.Equal(t, enums.ServiceTypeDogGrooming, booking.ServiceType)
	require.NotNil(t, booking.PreferredDate)
	assert.Equal(t, "2026-03-14", *booking.PreferredDate)
	assert.Equal(t, map[string]any{"nailTrim": true}, booking.AddOns)
	require.NotNil(t, booking.GPSLatitude)
	require.NotNil(t, booking.GPSLongitude)
	assert.Equal(t, "77.5946", booking.GPSLongitude.String())

	assert.Equal(t, []enums.OutboxEventType{enums.EventBookingCreated}, eventTypes(t, conn))
}

func TestCreateValidation(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]func(*CreateInput){
		"pet name":     func(in *CreateInput) { in.PetName = " " },
		"owner name":   func(in *CreateInput) { in.OwnerName = "" },
		"phone":        func(in *CreateInput) { in.Phone = "" },
		"service name": func(in *CreateInput) { in.ServiceName = "" },
		"service type": func(in *CreateInput) { in.ServiceType = "bathing" },
		"status":       func(in *CreateInput) { in.Status = strPtr("DONE") },
		"date":         func(in *CreateInput) { in.PreferredDate = strPtr("14/03/2026") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(ctx, in)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}

	var count int64
	require.NoError(t, conn.Model(&models.ServiceBooking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateStoresInlinePhoto(t *testing.T) {
	svc, _, photos := newTestService(t)
	in := validInput()
	encoded := base64.StdEncoding.EncodeToString([]byte("fake-jpeg"))
	in.PetPhotoBase64 = strPtr("data:image/jpeg;base64," + encoded)
	in.PetPhotoOriginalName = strPtr("bella.jpg")

	booking, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, booking.PetPhotoURL)
	assert.True(t, strings.HasPrefix(*booking.PetPhotoURL, "https://cdn.test/"))
	require.NotNil(t, booking.PetPhotoContentType)
	assert.Equal(t, "image/jpeg", *booking.PetPhotoContentType)
	assert.Len(t, photos.objects, 1)
}

func TestCreateSurvivesPhotoFailure(t *testing.T) {
	svc, _, photos := newTestService(t)
	photos.failPut = true
	in := validInput()
	in.PetPhotoBase64 = strPtr(base64.StdEncoding.EncodeToString([]byte("fake-png")))
	in.PetPhotoContentType = strPtr("image/png")

	booking, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, booking.PetPhotoURL)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()
	booking, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	notes := "Groomer assigned"
	updated, err := svc.UpdateStatus(ctx, booking.ID, StatusUpdate{Status: "confirmed", Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusConfirmed, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)

	// re-confirming is allowed but does not queue a second event
	_, err = svc.UpdateStatus(ctx, booking.ID, StatusUpdate{Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []enums.OutboxEventType{enums.EventBookingCreated, enums.EventBookingConfirmed}, eventTypes(t, conn))

	_, err = svc.UpdateStatus(ctx, booking.ID, StatusUpdate{Status: "PENDING"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	for _, next := range []string{"IN_PROGRESS", "COMPLETED"} {
		_, err = svc.UpdateStatus(ctx, booking.ID, StatusUpdate{Status: next})
		require.NoError(t, err)
	}
	_, err = svc.UpdateStatus(ctx, booking.ID, StatusUpdate{Status: "CANCELLED"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	stored, err := svc.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCompleted, stored.Status)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, notes, *stored.Notes)
}

func TestUpdateStatusErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, uuid.New(), StatusUpdate{Status: "CONFIRMED"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.UpdateStatus(ctx, uuid.New(), StatusUpdate{Status: "bogus"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateStatus(ctx, uuid.New(), StatusUpdate{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListForOwnerFallsBackToEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Email = strPtr("asha@example.com")
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	other := validInput()
	other.Phone = "9000000000"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	stranger := uuid.New()
	rows, err := svc.ListForOwner(ctx, Owner{UserID: &stranger, Email: "ASHA@example.com"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "9876543210", rows[0].Phone)

	rows, err = svc.ListForOwner(ctx, Owner{Phone: "9000000000"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = svc.ListForOwner(ctx, Owner{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListForOwnerByType(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	groom := validInput()
	groom.Email = strPtr("asha@example.com")
	_, err := svc.Create(ctx, groom)
	require.NoError(t, err)

	walk := validInput()
	walk.Email = strPtr("asha@example.com")
	walk.ServiceType = "pet-walking"
	walk.ServiceName = "Evening Walk"
	_, err = svc.Create(ctx, walk)
	require.NoError(t, err)

	rows, err := svc.ListForOwnerByType(ctx, Owner{Email: "asha@example.com"}, "walk")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.ServiceTypePetWalking, rows[0].ServiceType)

	summary, err := svc.PetWalking(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Count)
	assert.Len(t, summary.Bookings, 1)
}

func TestSearchAndStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	second := validInput()
	second.PetName = "Milo"
	second.OwnerName = "Ravi Kumar"
	second.Phone = "9123456780"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, StatusUpdate{Status: "CANCELLED"})
	require.NoError(t, err)

	rows, err := svc.Search(ctx, "milo")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Milo", rows[0].PetName)

	rows, err = svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.ListByStatus(ctx, "cancelled")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Pending)
	assert.EqualValues(t, 1, stats.Cancelled)
	assert.EqualValues(t, 2, stats.Total)

	_, err = svc.ListByDate(ctx, "March 3")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUploadPhotoReplacesAndDeleteCleansUp(t *testing.T) {
	svc, conn, photos := newTestService(t)
	ctx := context.Background()
	booking, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.UploadPhoto(ctx, booking.ID, PhotoUpload{ContentType: "text/plain", Body: bytes.NewReader([]byte("x")), Size: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	updated, err := svc.UploadPhoto(ctx, booking.ID, PhotoUpload{
		OriginalName: "bella.png",
		ContentType:  "image/png",
		Body:         bytes.NewReader([]byte("png-bytes")),
		Size:         9,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.PetPhotoURL)
	require.NotNil(t, updated.PetPhotoOriginalName)
	assert.Equal(t, "bella.png", *updated.PetPhotoOriginalName)

	require.NoError(t, svc.Delete(ctx, booking.ID))
	assert.Len(t, photos.deleted, 1)
	assert.Empty(t, photos.objects)

	var count int64
	require.NoError(t, conn.Model(&models.ServiceBooking{}).Count(&count).Error)
	assert.Zero(t, count)

	err = svc.Delete(ctx, booking.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
