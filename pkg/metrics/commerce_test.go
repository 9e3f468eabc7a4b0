package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCommerceMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCommerceMetrics(reg)
	m.ObserveOrderPlaced("cod", decimal.RequireFromString("250.50"))
	m.ObserveOrderPlaced("cod", decimal.RequireFromString("100"))
	m.ObserveCheckoutFailure("")
	m.ObservePaymentVerification("verified")
	m.ObserveOutboxPublish("order.placed", "published")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "petco_checkout_orders_placed_total", map[string]string{"payment_method": "cod"})
	require.NoError(t, err)
	require.Equal(t, float64(2), got)

	got, err = fetchCounterValue(mfs, "petco_checkout_order_value_total", map[string]string{"payment_method": "cod"})
	require.NoError(t, err)
	require.InDelta(t, 350.5, got, 0.001)

	got, err = fetchCounterValue(mfs, "petco_checkout_failures_total", map[string]string{"code": "unknown"})
	require.NoError(t, err)
	require.Equal(t, float64(1), got)

	got, err = fetchCounterValue(mfs, "petco_outbox_publish_total", map[string]string{"event_type": "order.placed", "outcome": "published"})
	require.NoError(t, err)
	require.Equal(t, float64(1), got)
}

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	mf := findMetricFamily(mfs, "petco_http_request_duration_seconds")
	require.NotNil(t, mf)
	require.Len(t, mf.GetMetric(), 1)
	require.True(t, matchesLabels(mf.GetMetric()[0].GetLabel(), map[string]string{
		"method": "GET",
		"route":  "/api/orders/{id}",
		"status": "418",
	}))
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
