package bookings

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

const dateLayout = "2006-01-02"

// CreateInput is the public booking form. Dates use YYYY-MM-DD.
type CreateInput struct {
	PetName        string  `json:"petName" validate:"required"`
	PetType        string  `json:"petType"`
	PetBreed       *string `json:"petBreed,omitempty"`
	PetAge         *string `json:"petAge,omitempty"`
	PetGender      *string `json:"petGender,omitempty"`
	PetDateOfBirth *string `json:"petDateOfBirth,omitempty"`

	PetPhotoBase64       *string `json:"petPhotoBase64,omitempty"`
	PetPhotoOriginalName *string `json:"petPhotoOriginalName,omitempty"`
	PetPhotoContentType  *string `json:"petPhotoContentType,omitempty"`

	UserID    *uuid.UUID `json:"userId,omitempty"`
	OwnerName string     `json:"ownerName" validate:"required"`
	Phone     string     `json:"phone" validate:"required"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email"`

	Address                string           `json:"address"`
	AddressType            *string          `json:"addressType,omitempty"`
	Area                   *string          `json:"area,omitempty"`
	CityStateCountry       *string          `json:"cityStateCountry,omitempty"`
	HouseNumber            *string          `json:"houseNumber,omitempty"`
	Building               *string          `json:"building,omitempty"`
	Floor                  *string          `json:"floor,omitempty"`
	Landmark               *string          `json:"landmark,omitempty"`
	RecipientName          *string          `json:"recipientName,omitempty"`
	RecipientContactNumber *string          `json:"recipientContactNumber,omitempty"`
	GPSLatitude            *decimal.Decimal `json:"gpsLatitude,omitempty"`
	GPSLongitude           *decimal.Decimal `json:"gpsLongitude,omitempty"`

	ServiceName string           `json:"serviceName" validate:"required"`
	ServiceType string           `json:"serviceType" validate:"required"`
	BasePrice   *decimal.Decimal `json:"basePrice,omitempty"`
	AddOns      map[string]any   `json:"addOns,omitempty"`
	TotalAmount *decimal.Decimal `json:"totalAmount,omitempty"`

	PreferredDate       *string `json:"preferredDate,omitempty"`
	PreferredTime       string  `json:"preferredTime"`
	SpecialInstructions *string `json:"specialInstructions,omitempty"`
	Status              *string `json:"status,omitempty"`
}

type StatusUpdate struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// PhotoUpload is a pet photo received from a multipart form.
type PhotoUpload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// Owner identifies whose bookings to list; the first non-empty field wins.
type Owner struct {
	UserID *uuid.UUID
	Email  string
	Phone  string
}

type DTO struct {
	ID uuid.UUID `json:"id"`

	PetName              string  `json:"petName"`
	PetType              string  `json:"petType"`
	PetBreed             *string `json:"petBreed,omitempty"`
	PetAge               *string `json:"petAge,omitempty"`
	PetGender            *string `json:"petGender,omitempty"`
	PetDateOfBirth       *string `json:"petDateOfBirth,omitempty"`
	PetPhotoURL          *string `json:"petPhotoUrl,omitempty"`
	PetPhotoOriginalName *string `json:"petPhotoOriginalName,omitempty"`
	PetPhotoContentType  *string `json:"petPhotoContentType,omitempty"`

	UserID    *uuid.UUID `json:"userId,omitempty"`
	OwnerName string     `json:"ownerName"`
	Phone     string     `json:"phone"`
	Email     *string    `json:"email,omitempty"`

	Address                string           `json:"address"`
	AddressType            *string          `json:"addressType,omitempty"`
	Area                   *string          `json:"area,omitempty"`
	CityStateCountry       *string          `json:"cityStateCountry,omitempty"`
	HouseNumber            *string          `json:"houseNumber,omitempty"`
	Building               *string          `json:"building,omitempty"`
	Floor                  *string          `json:"floor,omitempty"`
	Landmark               *string          `json:"landmark,omitempty"`
	RecipientName          *string          `json:"recipientName,omitempty"`
	RecipientContactNumber *string          `json:"recipientContactNumber,omitempty"`
	GPSLatitude            *decimal.Decimal `json:"gpsLatitude,omitempty"`
	GPSLongitude           *decimal.Decimal `json:"gpsLongitude,omitempty"`

	ServiceName string            `json:"serviceName"`
	ServiceType enums.ServiceType `json:"serviceType"`
	BasePrice   decimal.Decimal   `json:"basePrice"`
	AddOns      map[string]any    `json:"addOns,omitempty"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`

	PreferredDate       *string             `json:"preferredDate,omitempty"`
	PreferredTime       string              `json:"preferredTime"`
	SpecialInstructions *string             `json:"specialInstructions,omitempty"`
	Status              enums.BookingStatus `json:"status"`
	Notes               *string             `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats counts bookings per lifecycle status.
type Stats struct {
	Pending    int64 `json:"pending"`
	Confirmed  int64 `json:"confirmed"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	Total      int64 `json:"total"`
}

func statsFrom(counts []statusCount) Stats {
	var s Stats
	for _, c := range counts {
		switch c.Status {
		case enums.BookingStatusPending:
			s.Pending = c.Count
		case enums.BookingStatusConfirmed:
			s.Confirmed = c.Count
		case enums.BookingStatusInProgress:
			s.InProgress = c.Count
		case enums.BookingStatusCompleted:
			s.Completed = c.Count
		case enums.BookingStatusCancelled:
			s.Cancelled = c.Count
		}
	}
	s.Total = s.Pending + s.Confirmed + s.InProgress + s.Completed + s.Cancelled
	return s
}

// WalkingSummary lists pet-walking appointments with their overall count.
type WalkingSummary struct {
	Bookings []DTO `json:"bookings"`
	Count    int64 `json:"count"`
}

func fromModel(b *models.ServiceBooking, photoURL func(string) string) DTO {
	dto := DTO{
		ID:                     b.ID,
		PetName:                b.PetName,
		PetType:                b.PetType,
		PetBreed:               b.PetBreed,
		PetAge:                 b.PetAge,
		PetGender:              b.PetGender,
		PetDateOfBirth:         formatDate(b.PetDateOfBirth),
		PetPhotoOriginalName:   b.PetPhotoOriginalName,
		PetPhotoContentType:    b.PetPhotoContentType,
		UserID:                 b.UserID,
		OwnerName:              b.OwnerName,
		Phone:                  b.Phone,
		Email:                  b.Email,
		Address:                b.Address,
		AddressType:            b.AddressType,
		Area:                   b.Area,
		CityStateCountry:       b.CityStateCountry,
		HouseNumber:            b.HouseNumber,
		Building:               b.Building,
		Floor:                  b.Floor,
		Landmark:               b.Landmark,
		RecipientName:          b.RecipientName,
		RecipientContactNumber: b.RecipientContactNumber,
		GPSLatitude:            fromNull(b.GPSLatitude),
		GPSLongitude:           fromNull(b.GPSLongitude),
		ServiceName:            b.ServiceName,
		ServiceType:            b.ServiceType,
		BasePrice:              b.BasePrice.Decimal,
		AddOns:                 b.AddOns,
		TotalAmount:            b.TotalAmount.Decimal,
		PreferredDate:          formatDate(b.PreferredDate),
		PreferredTime:          b.PreferredTime,
		SpecialInstructions:    b.SpecialInstructions,
		Status:                 b.Status,
		Notes:                  b.Notes,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
	if b.PetPhotoKey != nil && photoURL != nil {
		url := photoURL(*b.PetPhotoKey)
		dto.PetPhotoURL = &url
	}
	return dto
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// ParseDate reads a YYYY-MM-DD date as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, time.UTC)
}

func fromNull(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

func toNull(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}
