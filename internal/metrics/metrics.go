// Package metrics exposes storefront counters over the Prometheus text format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the storefront collectors. A nil *Metrics records nothing.
type Metrics struct {
	ordersPlaced    prometheus.Counter
	orderRejections *prometheus.CounterVec
	orderTotals     prometheus.Histogram
	logins          *prometheus.CounterVec
}

// New registers the storefront collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ordersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_placed_total",
			Help:      "Orders persisted by the order ledger.",
		}),
		orderRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_rejections_total",
			Help:      "Order creation requests that were refused, by reason.",
		}, []string{"reason"}),
		orderTotals: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "order_total_amount",
			Help:      "Distribution of order totals.",
			Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "logins_total",
			Help:      "Login attempts, by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) OrderPlaced(total float64) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.orderTotals.Observe(total)
}

func (m *Metrics) OrderRejected(reason string) {
	if m == nil {
		return
	}
	m.orderRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
