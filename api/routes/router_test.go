package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/orders"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
)

type stubUsers struct {
	users.Service
}

func (stubUsers) Resolve(_ context.Context, email string) (*models.User, error) {
	switch email {
	case "admin@petco.test":
		return &models.User{ID: uuid.New(), Email: email, Role: enums.UserRoleAdmin}, nil
	case "cust@petco.test":
		return &models.User{ID: uuid.New(), Email: email, Role: enums.UserRoleCustomer}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (stubUsers) ListCustomers(context.Context) ([]users.UserSummaryDTO, error) {
	return []users.UserSummaryDTO{}, nil
}

type stubOrders struct {
	orders.Service
	placed int
}

func (s *stubOrders) PlaceOrder(context.Context, string) (*orders.OrderDTO, error) {
	s.placed++
	return &orders.OrderDTO{ID: uuid.New()}, nil
}

func (s *stubOrders) ListUserOrders(context.Context, string) ([]orders.OrderDTO, error) {
	return []orders.OrderDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigins: "http://localhost:3000"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "petco-test", ExpirationMinutes: 60},
	}
}

func newTestRouter(ordersSvc orders.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Params{
		Config: testConfig(),
		Logger: logg,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		Users:  stubUsers{},
		Orders: ordersSvc,
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(&stubOrders{})

	cases := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"liveness", http.MethodGet, "/health/live", http.StatusOK},
		{"readiness without deps", http.MethodGet, "/health/ready", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"user orders", http.MethodGet, "/api/orders/user?email=cust@petco.test", http.StatusOK},
		{"admin users as admin", http.MethodGet, "/api/admin/users?email=admin@petco.test", http.StatusOK},
		{"admin users as customer", http.MethodGet, "/api/admin/users?email=cust@petco.test", http.StatusForbidden},
		{"admin orders anonymous", http.MethodGet, "/api/orders/admin", http.StatusUnauthorized},
		{"coupon admin list as customer", http.MethodGet, "/api/coupons?email=cust@petco.test", http.StatusForbidden},
		{"booking stats as customer", http.MethodGet, "/api/service-bookings/stats?email=cust@petco.test", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/unknown", http.StatusNotFound},
		{"invalid token", http.MethodGet, "/api/orders/user", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.name == "invalid token" {
				req.Header.Set("Authorization", "Bearer garbage")
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			assert.Equal(t, tc.want, resp.Code)
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter(&stubOrders{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}

func TestRouterPlaceOrder(t *testing.T) {
	stub := &stubOrders{}
	router := newTestRouter(stub)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/checkout/place-order?email=cust@petco.test", nil))

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, 1, stub.placed)
}
