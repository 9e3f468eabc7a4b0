package razorpay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	rzp "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
)

const (
	defaultBaseURL = "https://api.razorpay.com"
	defaultTimeout = 10 * time.Second
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
)

// Client wraps the Razorpay SDK client with the key pair it was built from.
type Client struct {
	api       *rzp.Client
	keyID     string
	keySecret string
}

// Option configures optional client behavior.
type Option func(*rzp.Client)

// WithHTTPClient overrides the SDK's HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *rzp.Client) {
		if client != nil {
			c.Request.HTTPClient = client
		}
	}
}

// WithBaseURL points the SDK at another API host. The SDK appends the
// version segment itself, so a trailing /v1 is dropped.
func WithBaseURL(baseURL string) Option {
	return func(c *rzp.Client) {
		trimmed := strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(baseURL), "/"), "/v1")
		if trimmed != "" {
			c.Request.BaseURL = trimmed
		}
	}
}

// NewClient builds a client from the key pair issued in the Razorpay dashboard.
func NewClient(keyID, keySecret string, opts ...Option) (*Client, error) {
	keyID = strings.TrimSpace(keyID)
	keySecret = strings.TrimSpace(keySecret)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	api := rzp.NewClient(keyID, keySecret)
	api.Request.HTTPClient = &http.Client{Timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return &Client{api: api, keyID: keyID, keySecret: keySecret}, nil
}

// NewFromConfig builds a client from PETCO_RAZORPAY_* settings.
func NewFromConfig(cfg config.RazorpayConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClient(cfg.KeyID, cfg.KeySecret,
		WithBaseURL(cfg.BaseURL),
		WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

// API returns the underlying SDK client.
func (c *Client) API() *rzp.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// KeyID is the public key handed to the browser checkout widget.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// OrderRequest describes a payable order. Amount is in paise.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
}

// Payload is the body sent to the Orders API. Payments are always captured
// automatically once authorized.
func (r OrderRequest) Payload() map[string]interface{} {
	return map[string]interface{}{
		"amount":          r.Amount,
		"currency":        r.Currency,
		"receipt":         r.Receipt,
		"payment_capture": 1,
	}
}

// Order is the gateway's view of a created order.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// CreateOrder registers a payable order with the gateway.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if c == nil || c.api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay client not configured")
	}
	if req.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	// The SDK has no context support; honor cancellation before the call.
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay order request canceled")
	}

	body, err := c.api.Order.Create(req.Payload(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay order request failed")
	}
	return orderFromBody(body)
}

func orderFromBody(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay order response missing id")
	}
	order := &Order{ID: id}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)
	switch amount := body["amount"].(type) {
	case float64:
		order.Amount = int64(amount)
	case int64:
		order.Amount = amount
	case int:
		order.Amount = int64(amount)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("razorpay order %s has no amount", id))
	}
	return order, nil
}

// VerifySignature checks the checkout callback signature against the key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "razorpay client not configured")
	}
	attrs := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	if !utils.VerifyPaymentSignature(attrs, strings.TrimSpace(signature), c.keySecret) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Payment verification failed: invalid signature")
	}
	return nil
}
