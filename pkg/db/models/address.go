package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Address is an entry in a user's address book.
type Address struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:addresses_user_id_idx"`
	Name        string            `gorm:"column:name;not null"`
	Phone       string            `gorm:"column:phone;not null"`
	Street      string            `gorm:"column:street;not null"`
	City        string            `gorm:"column:city;not null"`
	State       string            `gorm:"column:state;not null"`
	Pincode     string            `gorm:"column:pincode;size:6;not null"`
	Landmark    *string           `gorm:"column:landmark"`
	AddressType enums.AddressType `gorm:"column:address_type;not null"`
	IsDefault   bool              `gorm:"column:is_default;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Address) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// OwnedBy reports whether the address belongs to the given user.
func (a *Address) OwnedBy(userID uuid.UUID) bool {
	return a != nil && a.UserID == userID
}
