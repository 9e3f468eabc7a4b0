package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// ShippingSnapshot is the destination copied from the address book at
// placement time; later address edits do not affect placed orders.
type ShippingSnapshot struct {
	Name        string  `gorm:"column:shipping_name"`
	Phone       string  `gorm:"column:shipping_phone"`
	Street      string  `gorm:"column:shipping_street"`
	City        string  `gorm:"column:shipping_city"`
	State       string  `gorm:"column:shipping_state"`
	Pincode     string  `gorm:"column:shipping_pincode"`
	Landmark    *string `gorm:"column:shipping_landmark"`
	AddressType string  `gorm:"column:shipping_address_type"`
}

// SnapshotFrom copies the shipping fields out of an address.
func SnapshotFrom(a *Address) ShippingSnapshot {
	return ShippingSnapshot{
		Name:        a.Name,
		Phone:       a.Phone,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		Pincode:     a.Pincode,
		Landmark:    a.Landmark,
		AddressType: a.AddressType.String(),
	}
}

type Order struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	Shipping          ShippingSnapshot     `gorm:"embedded"`
	DeliveryOption    enums.DeliveryOption `gorm:"column:delivery_option;not null"`
	PaymentMethod     enums.PaymentMethod  `gorm:"column:payment_method;not null"`
	Status            enums.OrderStatus    `gorm:"column:status;not null;index:orders_status_idx"`
	Subtotal          decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingFee       decimal.Decimal      `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	Total             decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	RazorpayOrderID   *string              `gorm:"column:razorpay_order_id"`
	RazorpayPaymentID *string              `gorm:"column:razorpay_payment_id"`
	PaymentStatus     enums.PaymentStatus  `gorm:"column:payment_status;not null"`
	Items             []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	if o.Status == "" {
		o.Status = enums.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = enums.PaymentStatusUnpaid
	}
	return nil
}

// ContainsProduct reports whether any item references the product.
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:order_items_product_id_idx"`
	VariantID   *string         `gorm:"column:variant_id"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
