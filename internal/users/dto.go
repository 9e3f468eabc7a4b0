package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// ProfileDTO is the customer-facing account view; credentials are never exposed.
type ProfileDTO struct {
	ID                 uuid.UUID      `json:"id"`
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Phone              *string        `json:"phone,omitempty"`
	Role               enums.UserRole `json:"role"`
	DateOfBirth        *string        `json:"dateOfBirth,omitempty"`
	Gender             *string        `json:"gender,omitempty"`
	MemberSince        time.Time      `json:"memberSince"`
	LastPasswordChange *time.Time     `json:"lastPasswordChange,omitempty"`
	TotalOrders        int            `json:"totalOrders"`
	LoyaltyPoints      int            `json:"loyaltyPoints"`
}

// ProfileUpdate carries optional profile edits. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
}

// UserSummaryDTO is one row of the admin customer list.
type UserSummaryDTO struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         *string        `json:"phone,omitempty"`
	Role          enums.UserRole `json:"role"`
	CreatedAt     time.Time      `json:"createdAt"`
	MemberSince   time.Time      `json:"memberSince"`
	IsActive      bool           `json:"isActive"`
	OrderCount    int64          `json:"orderCount"`
	WishlistCount int64          `json:"wishlistCount"`
	LoyaltyPoints int            `json:"loyaltyPoints"`
}

const dateLayout = "2006-01-02"

func ProfileFromModel(u *models.User) *ProfileDTO {
	if u == nil {
		return nil
	}
	dto := &ProfileDTO{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		Role:               u.Role,
		Gender:             u.Gender,
		MemberSince:        u.MemberSince,
		LastPasswordChange: u.LastPasswordChange,
		TotalOrders:        u.TotalOrders,
		LoyaltyPoints:      u.LoyaltyPoints,
	}
	if u.DateOfBirth != nil {
		dob := u.DateOfBirth.Format(dateLayout)
		dto.DateOfBirth = &dob
	}
	return dto
}
