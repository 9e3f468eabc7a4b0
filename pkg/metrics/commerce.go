package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CommerceMetrics counts checkout, payment and outbox outcomes.
type CommerceMetrics struct {
	ordersPlaced   *prometheus.CounterVec
	orderRevenue   *prometheus.CounterVec
	checkoutFailed *prometheus.CounterVec
	payments       *prometheus.CounterVec
	outbox         *prometheus.CounterVec
}

// NewCommerceMetrics registers the counters on reg. A nil registerer yields a
// no-op collector so services can be built without Prometheus in tests.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	m := &CommerceMetrics{
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_placed_total",
			Help:      "Orders created by checkout.",
		}, []string{"payment_method"}),
		orderRevenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "order_value_total",
			Help:      "Sum of order totals created by checkout.",
		}, []string{"payment_method"}),
		checkoutFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "failures_total",
			Help:      "Checkout attempts rejected, by error code.",
		}, []string{"code"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "verifications_total",
			Help:      "Gateway payment verifications by outcome.",
		}, []string{"outcome"}),
		outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "publish_total",
			Help:      "Outbox publish attempts by event type and outcome.",
		}, []string{"event_type", "outcome"}),
	}
	reg.MustRegister(m.ordersPlaced, m.orderRevenue, m.checkoutFailed, m.payments, m.outbox)
	return m
}

func (m *CommerceMetrics) ObserveOrderPlaced(paymentMethod string, total decimal.Decimal) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	label := normalizeLabel(paymentMethod)
	m.ordersPlaced.WithLabelValues(label).Inc()
	m.orderRevenue.WithLabelValues(label).Add(total.InexactFloat64())
}

func (m *CommerceMetrics) ObserveCheckoutFailure(code string) {
	if m == nil || m.checkoutFailed == nil {
		return
	}
	m.checkoutFailed.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *CommerceMetrics) ObservePaymentVerification(outcome string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *CommerceMetrics) ObserveOutboxPublish(eventType, outcome string) {
	if m == nil || m.outbox == nil {
		return
	}
	m.outbox.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}
