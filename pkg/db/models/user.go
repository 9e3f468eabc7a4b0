package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// User is a storefront account keyed by email. Users are deactivated, never deleted.
type User struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email              string         `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	Name               string         `gorm:"column:name;not null"`
	PasswordHash       string         `gorm:"column:password_hash;not null"`
	Phone              *string        `gorm:"column:phone"`
	Role               enums.UserRole `gorm:"column:role;not null"`
	DateOfBirth        *time.Time     `gorm:"column:date_of_birth;type:date"`
	Gender             *string        `gorm:"column:gender"`
	MemberSince        time.Time      `gorm:"column:member_since"`
	TotalOrders        int            `gorm:"column:total_orders;not null;default:0"`
	LoyaltyPoints      int            `gorm:"column:loyalty_points;not null;default:0"`
	LastPasswordChange *time.Time     `gorm:"column:last_password_change"`
	IsActive           bool           `gorm:"column:is_active;not null"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	if u.Role == "" {
		u.Role = enums.UserRoleCustomer
	}
	if u.MemberSince.IsZero() {
		u.MemberSince = time.Now().UTC()
	}
	return nil
}

// IsAdmin reports whether the user may access admin routes.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == enums.UserRoleAdmin
}
