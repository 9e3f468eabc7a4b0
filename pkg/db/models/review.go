package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a customer rating of a product, linked to the delivered order
// that made the reviewer eligible.
type Review struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:reviews_user_id_idx"`
	ProductID          uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index:reviews_product_id_idx"`
	OrderID            *uuid.UUID `gorm:"column:order_id;type:uuid"`
	Rating             int        `gorm:"column:rating;not null"`
	Title              *string    `gorm:"column:title"`
	Comment            *string    `gorm:"column:comment"`
	IsVerifiedPurchase bool       `gorm:"column:is_verified_purchase;not null"`
	IsActive           bool       `gorm:"column:is_active;not null"`
	HelpfulCount       int        `gorm:"column:helpful_count;not null;default:0"`
	User               *User      `gorm:"foreignKey:UserID"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
