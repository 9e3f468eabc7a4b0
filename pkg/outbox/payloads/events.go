package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// OrderPlacedEvent is emitted when checkout converts a cart into an order.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	UserID        uuid.UUID           `json:"user_id"`
	Email         string              `json:"email"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	ItemCount     int                 `json:"item_count"`
	Total         decimal.Decimal     `json:"total"`
}

// OrderPaidEvent is emitted once a gateway payment has been verified.
type OrderPaidEvent struct {
	OrderID           uuid.UUID       `json:"order_id"`
	UserID            uuid.UUID       `json:"user_id"`
	RazorpayOrderID   string          `json:"razorpay_order_id"`
	RazorpayPaymentID string          `json:"razorpay_payment_id"`
	Total             decimal.Decimal `json:"total"`
}

// OrderStatusChangedEvent is emitted by admin status updates.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	UserID         uuid.UUID         `json:"user_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	Status         enums.OrderStatus `json:"status"`
}

// BookingEvent carries the details needed to notify an owner about a booking.
type BookingEvent struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	OwnerName     string              `json:"owner_name"`
	Email         *string             `json:"email,omitempty"`
	Phone         string              `json:"phone"`
	PetName       string              `json:"pet_name"`
	ServiceName   string              `json:"service_name"`
	ServiceType   enums.ServiceType   `json:"service_type"`
	PreferredDate *time.Time          `json:"preferred_date,omitempty"`
	PreferredTime string              `json:"preferred_time"`
	Status        enums.BookingStatus `json:"status"`
}
