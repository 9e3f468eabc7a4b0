package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

type ShippingDTO struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Pincode     string  `json:"pincode"`
	Landmark    *string `json:"landmark,omitempty"`
	AddressType string  `json:"addressType"`
}

type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	VariantID   *string         `json:"variantId,omitempty"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type OrderDTO struct {
	ID                uuid.UUID            `json:"id"`
	UserID            uuid.UUID            `json:"userId"`
	Shipping          ShippingDTO          `json:"shipping"`
	DeliveryOption    enums.DeliveryOption `json:"deliveryOption"`
	PaymentMethod     enums.PaymentMethod  `json:"paymentMethod"`
	Status            enums.OrderStatus    `json:"status"`
	PaymentStatus     enums.PaymentStatus  `json:"paymentStatus"`
	Subtotal          decimal.Decimal      `json:"subtotal"`
	ShippingFee       decimal.Decimal      `json:"shippingFee"`
	Total             decimal.Decimal      `json:"total"`
	RazorpayOrderID   *string              `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID *string              `json:"razorpayPaymentId,omitempty"`
	Items             []ItemDTO            `json:"items"`
	CreatedAt         time.Time            `json:"createdAt"`
}

func FromModel(o *models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemDTO{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			LineTotal:   it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	s := o.Shipping
	return OrderDTO{
		ID:     o.ID,
		UserID: o.UserID,
		Shipping: ShippingDTO{
			Name:        s.Name,
			Phone:       s.Phone,
			Street:      s.Street,
			City:        s.City,
			State:       s.State,
			Pincode:     s.Pincode,
			Landmark:    s.Landmark,
			AddressType: s.AddressType,
		},
		DeliveryOption:    o.DeliveryOption,
		PaymentMethod:     o.PaymentMethod,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		Subtotal:          o.Subtotal,
		ShippingFee:       o.ShippingFee,
		Total:             o.Total,
		RazorpayOrderID:   o.RazorpayOrderID,
		RazorpayPaymentID: o.RazorpayPaymentID,
		Items:             items,
		CreatedAt:         o.CreatedAt,
	}
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// OrderList is one page of the admin order listing.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// Statistics summarises the order book for the admin dashboard.
type Statistics struct {
	TotalOrders     int64           `json:"totalOrders"`
	PendingOrders   int64           `json:"pendingOrders"`
	ShippedOrders   int64           `json:"shippedOrders"`
	DeliveredOrders int64           `json:"deliveredOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

// GatewayReceipt identifies a verified gateway payment.
type GatewayReceipt struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
}
