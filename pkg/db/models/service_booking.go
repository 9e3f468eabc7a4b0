package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// ServiceBooking is a grooming or walking appointment. Bookings may be made
// by guests, so UserID is optional and lookups fall back to email and phone.
type ServiceBooking struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`

	PetName              string     `gorm:"column:pet_name;not null"`
	PetType              string     `gorm:"column:pet_type;not null"`
	PetBreed             *string    `gorm:"column:pet_breed"`
	PetAge               *string    `gorm:"column:pet_age"`
	PetGender            *string    `gorm:"column:pet_gender"`
	PetDateOfBirth       *time.Time `gorm:"column:pet_date_of_birth;type:date"`
	PetPhotoKey          *string    `gorm:"column:pet_photo_key"`
	PetPhotoOriginalName *string    `gorm:"column:pet_photo_original_name"`
	PetPhotoContentType  *string    `gorm:"column:pet_photo_content_type"`

	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index:service_bookings_user_id_idx"`
	OwnerName string     `gorm:"column:owner_name;not null"`
	Phone     string     `gorm:"column:phone;not null"`
	Email     *string    `gorm:"column:email"`

	Address                string              `gorm:"column:address;not null"`
	AddressType            *string             `gorm:"column:address_type"`
	Area                   *string             `gorm:"column:area"`
	CityStateCountry       *string             `gorm:"column:city_state_country"`
	HouseNumber            *string             `gorm:"column:house_number"`
	Building               *string             `gorm:"column:building"`
	Floor                  *string             `gorm:"column:floor"`
	Landmark               *string             `gorm:"column:landmark"`
	RecipientName          *string             `gorm:"column:recipient_name"`
	RecipientContactNumber *string             `gorm:"column:recipient_contact_number"`
	GPSLatitude            decimal.NullDecimal `gorm:"column:gps_latitude;type:numeric(10,7)"`
	GPSLongitude           decimal.NullDecimal `gorm:"column:gps_longitude;type:numeric(10,7)"`

	ServiceName string              `gorm:"column:service_name;not null"`
	ServiceType enums.ServiceType   `gorm:"column:service_type;not null"`
	BasePrice   decimal.NullDecimal `gorm:"column:base_price;type:numeric(12,2)"`
	AddOns      map[string]any      `gorm:"column:add_ons;type:jsonb;serializer:json"`
	TotalAmount decimal.NullDecimal `gorm:"column:total_amount;type:numeric(12,2)"`

	PreferredDate       *time.Time          `gorm:"column:preferred_date;type:date;index:service_bookings_preferred_date_idx"`
	PreferredTime       string              `gorm:"column:preferred_time;not null"`
	SpecialInstructions *string             `gorm:"column:special_instructions"`
	Status              enums.BookingStatus `gorm:"column:status;not null;index:service_bookings_status_idx"`
	Notes               *string             `gorm:"column:notes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *ServiceBooking) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	if b.Status == "" {
		b.Status = enums.BookingStatusPending
	}
	return nil
}
