package bookings

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/outbox"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/outbox/payloads"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/storage"
)

const (
	defaultAddress       = "Address not provided"
	defaultPetType       = "unknown"
	defaultPreferredTime = "Not specified"
	maxInlinePhotoBytes  = 5 << 20
)

// addOn keys that are stored in dedicated columns and dropped from add_ons.
var columnAddOns = []string{"petPhoto", "addressDetails", "gps"}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type photoStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Service manages grooming and walking appointments.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*DTO, error)
	List(ctx context.Context) ([]DTO, error)
	Get(ctx context.Context, id uuid.UUID) (*DTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) (*DTO, error)
	ListByStatus(ctx context.Context, status string) ([]DTO, error)
	Upcoming(ctx context.Context) ([]DTO, error)
	ListByDate(ctx context.Context, date string) ([]DTO, error)
	ListForOwner(ctx context.Context, owner Owner) ([]DTO, error)
	ListForOwnerByType(ctx context.Context, owner Owner, keyword string) ([]DTO, error)
	Search(ctx context.Context, term string) ([]DTO, error)
	Stats(ctx context.Context) (*Stats, error)
	PetWalking(ctx context.Context) (*WalkingSummary, error)
	UploadPhoto(ctx context.Context, id uuid.UUID, upload PhotoUpload) (*DTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceParams struct {
	DB     txRunner
	Repo   *Repository
	Photos photoStore
	Outbox outbox.Emitter
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	db     txRunner
	repo   *Repository
	photos photoStore
	outbox outbox.Emitter
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Repo == nil:
		return nil, fmt.Errorf("booking repository required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		photos: params.Photos,
		outbox: params.Outbox,
		logg:   params.Logger,
		now:    now,
	}, nil
}

// Create stores the booking and queues booking.created in one transaction.
// An inline photo that cannot be stored is logged and skipped.
func (s *service) Create(ctx context.Context, input CreateInput) (*DTO, error) {
	booking, err := input.toModel()
	if err != nil {
		return nil, err
	}
	booking.ID = uuid.New()

	if input.PetPhotoBase64 != nil && strings.TrimSpace(*input.PetPhotoBase64) != "" {
		if err := s.storeInlinePhoto(ctx, booking, input); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "pet photo skipped")
		}
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create booking")
		}
		return s.emit(ctx, tx, enums.EventBookingCreated, booking)
	})
	if err != nil {
		if booking.PetPhotoKey != nil {
			s.deletePhoto(ctx, *booking.PetPhotoKey)
		}
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"booking_id":   booking.ID.String(),
			"service_type": booking.ServiceType,
		})
		s.logg.Info(logCtx, "booking.created")
	}
	dto := s.toDTO(booking)
	return &dto, nil
}

func (s *service) storeInlinePhoto(ctx context.Context, booking *models.ServiceBooking, input CreateInput) error {
	if s.photos == nil {
		return errors.New("photo storage unavailable")
	}
	raw := strings.TrimSpace(*input.PetPhotoBase64)
	contentType := ""
	if input.PetPhotoContentType != nil {
		contentType = *input.PetPhotoContentType
	}
	// data URLs carry their own media type
	if header, data, ok := strings.Cut(raw, ","); ok && strings.HasPrefix(header, "data:") {
		raw = data
		if contentType == "" {
			contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
	}
	contentType, err := storage.NormalizeImageContentType(contentType)
	if err != nil {
		return err
	}
	body, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("decode pet photo: %w", err)
	}
	if len(body) > maxInlinePhotoBytes {
		return fmt.Errorf("pet photo exceeds %d bytes", maxInlinePhotoBytes)
	}
	obj, err := s.photos.Put(ctx, storage.PetPhotoKey(booking.ID, contentType), contentType, bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return err
	}
	booking.PetPhotoKey = &obj.Key
	booking.PetPhotoContentType = &contentType
	booking.PetPhotoOriginalName = input.PetPhotoOriginalName
	return nil
}

func (s *service) List(ctx context.Context) ([]DTO, error) {
	return s.list(ctx, Filter{}, newestFirst)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DTO, error) {
	booking, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(booking)
	return &dto, nil
}

// UpdateStatus moves a booking along its lifecycle. Entering CONFIRMED queues
// booking.confirmed for the notification consumer.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) (*DTO, error) {
	if strings.TrimSpace(update.Status) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Status is required")
	}
	next, err := enums.ParseBookingStatus(update.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status value")
	}

	var booking *models.ServiceBooking
	var previous enums.BookingStatus
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
		}
		previous = current.Status
		if !previous.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Cannot change booking status from %s to %s", previous, next)).
				WithDetails(map[string]any{"from": previous, "to": next})
		}

		updates := map[string]any{"status": next}
		if update.Notes != nil {
			updates["notes"] = *update.Notes
			current.Notes = update.Notes
		}
		if err := repo.UpdateFields(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update booking status")
		}
		current.Status = next
		booking = current

		if next == enums.BookingStatusConfirmed && previous != enums.BookingStatusConfirmed {
			return s.emit(ctx, tx, enums.EventBookingConfirmed, current)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"booking_id":      id.String(),
			"previous_status": previous,
			"status":          next,
		})
		s.logg.Info(logCtx, "booking.status_changed")
	}
	dto := s.toDTO(booking)
	return &dto, nil
}

func (s *service) ListByStatus(ctx context.Context, status string) ([]DTO, error) {
	parsed, err := enums.ParseBookingStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status value")
	}
	return s.list(ctx, Filter{Status: parsed}, newestFirst)
}

func (s *service) Upcoming(ctx context.Context) ([]DTO, error) {
	today := s.today()
	return s.list(ctx, Filter{FromDate: &today}, bySchedule)
}

func (s *service) ListByDate(ctx context.Context, date string) ([]DTO, error) {
	day, err := ParseDate(strings.TrimSpace(date))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid date format. Use YYYY-MM-DD")
	}
	return s.list(ctx, Filter{Date: &day}, bySchedule)
}

// ListForOwner tries the account id, then email, then phone, and returns the
// first non-empty match.
func (s *service) ListForOwner(ctx context.Context, owner Owner) ([]DTO, error) {
	for _, f := range owner.filters() {
		rows, err := s.repo.List(ctx, f, newestFirst)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bookings")
		}
		if len(rows) > 0 {
			return s.toDTOs(rows), nil
		}
	}
	return []DTO{}, nil
}

// ListForOwnerByType filters on "<service type> <service name>" containing the keyword.
func (s *service) ListForOwnerByType(ctx context.Context, owner Owner, keyword string) ([]DTO, error) {
	f := Filter{}
	if filters := owner.filters(); len(filters) > 0 {
		f = filters[0]
	}
	f.TypeKeyword = keyword
	return s.list(ctx, f, newestFirst)
}

func (s *service) Search(ctx context.Context, term string) ([]DTO, error) {
	return s.list(ctx, Filter{Term: term}, newestFirst)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "booking stats")
	}
	stats := statsFrom(counts)
	return &stats, nil
}

func (s *service) PetWalking(ctx context.Context) (*WalkingSummary, error) {
	rows, err := s.list(ctx, Filter{ServiceType: enums.ServiceTypePetWalking}, newestFirst)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountByServiceType(ctx, enums.ServiceTypePetWalking)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count walking bookings")
	}
	return &WalkingSummary{Bookings: rows, Count: count}, nil
}

func (s *service) UploadPhoto(ctx context.Context, id uuid.UUID, upload PhotoUpload) (*DTO, error) {
	if s.photos == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "photo storage unavailable")
	}
	contentType, err := storage.NormalizeImageContentType(upload.ContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	booking, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.photos.Put(ctx, storage.PetPhotoKey(booking.ID, contentType), contentType, upload.Body, upload.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload pet photo")
	}
	updates := map[string]any{
		"pet_photo_key":          obj.Key,
		"pet_photo_content_type": contentType,
	}
	if name := strings.TrimSpace(upload.OriginalName); name != "" {
		updates["pet_photo_original_name"] = name
		booking.PetPhotoOriginalName = &name
	}
	if err := s.repo.UpdateFields(ctx, booking.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save pet photo")
	}
	if booking.PetPhotoKey != nil && *booking.PetPhotoKey != obj.Key {
		s.deletePhoto(ctx, *booking.PetPhotoKey)
	}

	booking.PetPhotoKey = &obj.Key
	booking.PetPhotoContentType = &contentType
	dto := s.toDTO(booking)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	booking, err := s.load(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete booking")
	}
	if booking.PetPhotoKey != nil {
		s.deletePhoto(ctx, *booking.PetPhotoKey)
	}
	return nil
}

func (s *service) deletePhoto(ctx context.Context, key string) {
	if s.photos == nil {
		return
	}
	if err := s.photos.Delete(ctx, key); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "photo_key", key), "failed to delete pet photo")
	}
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, b *models.ServiceBooking) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateBooking,
		AggregateID:   b.ID,
		Data: payloads.BookingEvent{
			BookingID:     b.ID,
			OwnerName:     b.OwnerName,
			Email:         b.Email,
			Phone:         b.Phone,
			PetName:       b.PetName,
			ServiceName:   b.ServiceName,
			ServiceType:   b.ServiceType,
			PreferredDate: b.PreferredDate,
			PreferredTime: b.PreferredTime,
			Status:        b.Status,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue booking event")
	}
	return nil
}

func (s *service) list(ctx context.Context, f Filter, order sortOrder) ([]DTO, error) {
	rows, err := s.repo.List(ctx, f, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bookings")
	}
	return s.toDTOs(rows), nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.ServiceBooking, error) {
	booking, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
	}
	return booking, nil
}

func (s *service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) toDTO(b *models.ServiceBooking) DTO {
	var url func(string) string
	if s.photos != nil {
		url = s.photos.URL
	}
	return fromModel(b, url)
}

func (s *service) toDTOs(rows []models.ServiceBooking) []DTO {
	out := make([]DTO, 0, len(rows))
	for i := range rows {
		out = append(out, s.toDTO(&rows[i]))
	}
	return out
}

func (o Owner) filters() []Filter {
	var out []Filter
	if o.UserID != nil {
		out = append(out, Filter{UserID: o.UserID})
	}
	if email := strings.TrimSpace(o.Email); email != "" {
		out = append(out, Filter{Email: email})
	}
	if phone := strings.TrimSpace(o.Phone); phone != "" {
		out = append(out, Filter{Phone: phone})
	}
	return out
}

func (in CreateInput) toModel() (*models.ServiceBooking, error) {
	required := []struct {
		value, message string
	}{
		{in.PetName, "Pet name is required"},
		{in.OwnerName, "Owner name is required"},
		{in.Phone, "Phone number is required"},
		{in.ServiceName, "Service name is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, r.message)
		}
	}
	serviceType, err := enums.ParseServiceType(in.ServiceType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Service type must be one of: cat-grooming, dog-grooming, pet-walking")
	}
	status := enums.BookingStatusPending
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		status, err = enums.ParseBookingStatus(*in.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status value")
		}
	}
	preferredDate, err := optionalDate(in.PreferredDate, "preferredDate")
	if err != nil {
		return nil, err
	}
	dob, err := optionalDate(in.PetDateOfBirth, "petDateOfBirth")
	if err != nil {
		return nil, err
	}

	b := &models.ServiceBooking{
		PetName:                strings.TrimSpace(in.PetName),
		PetType:                orDefault(in.PetType, defaultPetType),
		PetBreed:               trimmed(in.PetBreed),
		PetAge:                 trimmed(in.PetAge),
		PetGender:              trimmed(in.PetGender),
		PetDateOfBirth:         dob,
		UserID:                 in.UserID,
		OwnerName:              strings.TrimSpace(in.OwnerName),
		Phone:                  strings.TrimSpace(in.Phone),
		Email:                  trimmed(in.Email),
		Address:                orDefault(in.Address, defaultAddress),
		AddressType:            trimmed(in.AddressType),
		Area:                   trimmed(in.Area),
		CityStateCountry:       trimmed(in.CityStateCountry),
		HouseNumber:            trimmed(in.HouseNumber),
		Building:               trimmed(in.Building),
		Floor:                  trimmed(in.Floor),
		Landmark:               trimmed(in.Landmark),
		RecipientName:          trimmed(in.RecipientName),
		RecipientContactNumber: trimmed(in.RecipientContactNumber),
		GPSLatitude:            toNull(in.GPSLatitude),
		GPSLongitude:           toNull(in.GPSLongitude),
		ServiceName:            strings.TrimSpace(in.ServiceName),
		ServiceType:            serviceType,
		BasePrice:              decimal.NewNullDecimal(valueOrZero(in.BasePrice)),
		AddOns:                 compactAddOns(in.AddOns),
		TotalAmount:            decimal.NewNullDecimal(valueOrZero(in.TotalAmount)),
		PreferredDate:          preferredDate,
		PreferredTime:          orDefault(in.PreferredTime, defaultPreferredTime),
		SpecialInstructions:    trimmed(in.SpecialInstructions),
		Status:                 status,
	}
	if !b.GPSLatitude.Valid {
		b.GPSLatitude, b.GPSLongitude = gpsFromAddOns(in.AddOns)
	}
	return b, nil
}

// gpsFromAddOns reads {"gps": {"lat": .., "lng": ..}} sent by older clients.
func gpsFromAddOns(addOns map[string]any) (decimal.NullDecimal, decimal.NullDecimal) {
	gps, ok := addOns["gps"].(map[string]any)
	if !ok {
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	return coordinate(gps["lat"]), coordinate(gps["lng"])
}

func coordinate(v any) decimal.NullDecimal {
	switch c := v.(type) {
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(c))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(c))
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(d)
	}
	return decimal.NullDecimal{}
}

func compactAddOns(addOns map[string]any) map[string]any {
	out := make(map[string]any, len(addOns))
	for k, v := range addOns {
		out[k] = v
	}
	for _, k := range columnAddOns {
		delete(out, k)
	}
	return out
}

func optionalDate(value *string, field string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := ParseDate(strings.TrimSpace(*value))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid date format. Use YYYY-MM-DD").
			WithDetails(map[string]any{"field": field})
	}
	return &t, nil
}

func orDefault(v, fallback string) string {
	if t := strings.TrimSpace(v); t != "" {
		return t
	}
	return fallback
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func valueOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
