package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for product moderation.
type Metrics struct {
	StatusTransitions *prometheus.CounterVec
	Negotiations      prometheus.Counter
	Deletions         prometheus.Counter
	GatewayFailures   *prometheus.CounterVec
	GatewayDuration   *prometheus.HistogramVec
	BusyProducts      prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_product_status_transitions_total",
			Help: "Product status changes applied, by target status and mode (single, bulk)",
		}, []string{"status", "mode"}),
		Negotiations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refurb_product_negotiations_total",
			Help: "Price negotiations proposed to sellers",
		}),
		Deletions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refurb_products_deleted_total",
			Help: "Products removed by admins",
		}),
		GatewayFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_product_gateway_failures_total",
			Help: "Failed product backend calls, by operation",
		}, []string{"operation"}),
		GatewayDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "refurb_product_gateway_duration_seconds",
			Help:    "Latency of product backend calls, by operation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		BusyProducts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "refurb_products_busy",
			Help: "Products with an operation in flight",
		}),
	}
}

func (m *Metrics) IncrementTransition(status, mode string, n int) {
	m.StatusTransitions.WithLabelValues(status, mode).Add(float64(n))
}

func (m *Metrics) IncrementNegotiation() {
	m.Negotiations.Inc()
}

func (m *Metrics) IncrementDeletion() {
	m.Deletions.Inc()
}

// ObserveGateway records a backend call that started at start.
func (m *Metrics) ObserveGateway(operation string, start time.Time, err error) {
	m.GatewayDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.GatewayFailures.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) SetBusy(n int) {
	m.BusyProducts.Set(float64(n))
}
