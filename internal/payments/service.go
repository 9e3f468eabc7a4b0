package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/checkout"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/orders"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/razorpay"
)

const currencyINR = "INR"

type gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
}

type chargeCalculator interface {
	ChargeTotals(ctx context.Context, email string) (*checkout.Charge, error)
}

type onlineOrderPlacer interface {
	PlaceOrderForOnlinePayment(ctx context.Context, email string, receipt *orders.GatewayReceipt) (*orders.OrderDTO, error)
}

type paymentMetrics interface {
	ObservePaymentVerification(outcome string)
}

// CreateOrderResponse is what the browser needs to open the checkout widget.
type CreateOrderResponse struct {
	Key             string          `json:"key"`
	RazorpayOrderID string          `json:"razorpay_order_id"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	Receipt         string          `json:"receipt"`
	Total           decimal.Decimal `json:"total"`
}

type VerifyInput struct {
	Email             string `json:"email"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type VerifyResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Order   *orders.OrderDTO `json:"order"`
}

// Service creates gateway orders and finalizes verified payments.
type Service interface {
	CreateOrder(ctx context.Context, email string) (*CreateOrderResponse, error)
	Verify(ctx context.Context, input VerifyInput) (*VerifyResponse, error)
}

type ServiceParams struct {
	Gateway  gateway
	Checkout chargeCalculator
	Orders   onlineOrderPlacer
	Metrics  paymentMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	gateway  gateway
	checkout chargeCalculator
	orders   onlineOrderPlacer
	metrics  paymentMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Gateway == nil:
		return nil, fmt.Errorf("payment gateway required")
	case params.Checkout == nil:
		return nil, fmt.Errorf("checkout service required")
	case params.Orders == nil:
		return nil, fmt.Errorf("order service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		gateway:  params.Gateway,
		checkout: params.Checkout,
		orders:   params.Orders,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, email string) (*CreateOrderResponse, error) {
	charge, err := s.checkout.ChargeTotals(ctx, email)
	if err != nil {
		return nil, err
	}

	amount := ToPaise(charge.Total)
	receipt := fmt.Sprintf("receipt_%d_%s", s.now().UnixMilli(), charge.UserID)
	created, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amount,
		Currency: currencyINR,
		Receipt:  receipt,
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithUserID(ctx, charge.UserID.String()), "razorpay order creation failed", err)
		}
		return nil, err
	}

	return &CreateOrderResponse{
		Key:             s.gateway.KeyID(),
		RazorpayOrderID: created.ID,
		Amount:          created.Amount,
		Currency:        created.Currency,
		Receipt:         created.Receipt,
		Total:           charge.Total,
	}, nil
}

// Verify checks the gateway signature and only then turns the checkout into a
// paid order. A bad signature leaves the selection and cart untouched.
func (s *service) Verify(ctx context.Context, input VerifyInput) (*VerifyResponse, error) {
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.RazorpayOrderID == "" || input.RazorpayPaymentID == "" || input.RazorpaySignature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields")
	}

	if err := s.gateway.VerifySignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature); err != nil {
		s.observe("invalid_signature")
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"email":             input.Email,
				"razorpay_order_id": input.RazorpayOrderID,
			})
			s.logg.Warn(logCtx, "payment signature rejected")
		}
		return nil, err
	}

	if _, err := s.checkout.ChargeTotals(ctx, input.Email); err != nil {
		s.observe("failed")
		return nil, err
	}

	order, err := s.orders.PlaceOrderForOnlinePayment(ctx, input.Email, &orders.GatewayReceipt{
		RazorpayOrderID:   input.RazorpayOrderID,
		RazorpayPaymentID: input.RazorpayPaymentID,
	})
	if err != nil {
		s.observe("failed")
		return nil, err
	}

	s.observe("verified")
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
			"razorpay_order_id":   input.RazorpayOrderID,
			"razorpay_payment_id": input.RazorpayPaymentID,
		})
		s.logg.Info(logCtx, "payment.verified")
	}
	return &VerifyResponse{
		Success: true,
		Message: "Payment verified and order created successfully",
		Order:   order,
	}, nil
}

// ToPaise converts rupees to the gateway's integer minor unit.
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObservePaymentVerification(outcome)
	}
}
