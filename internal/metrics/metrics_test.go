package metrics_test

import (
	"testing"

	"storefront/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.OrderPlaced(1350)
	m.OrderPlaced(99)
	m.OrderRejected("validation")
	m.Login("success")
	m.Login("invalid_credentials")
	m.Login("invalid_credentials")

	count, err := testutil.GatherAndCount(reg,
		"storefront_orders_placed_total",
		"storefront_order_rejections_total",
		"storefront_logins_total",
		"storefront_order_total_amount",
	)
	assert.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.OrderPlaced(10)
		m.OrderRejected("validation")
		m.Login("success")
	})
}
