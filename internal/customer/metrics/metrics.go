package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for customer management.
type Metrics struct {
	Changes   *prometheus.CounterVec
	Customers *prometheus.GaugeVec
	Reviews   *prometheus.CounterVec
	Busy      prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		Changes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_customer_status_changes_total",
			Help: "Customer status changes by target status",
		}, []string{"status"}),
		Customers: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "refurb_customers",
			Help: "Customers by account status",
		}, []string{"status"}),
		Reviews: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_customer_kyc_reviews_total",
			Help: "KYC document reviews by document and decision",
		}, []string{"document", "decision"}),
		Busy: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "refurb_customer_busy",
			Help: "Customers with an admin action in flight",
		}),
	}
}

// IncrementStatusChange counts n customers moved to status.
func (m *Metrics) IncrementStatusChange(status string, n int) {
	m.Changes.WithLabelValues(status).Add(float64(n))
}

func (m *Metrics) SetCustomers(status string, n int) {
	m.Customers.WithLabelValues(status).Set(float64(n))
}

func (m *Metrics) IncrementReview(document, decision string) {
	m.Reviews.WithLabelValues(document, decision).Inc()
}

func (m *Metrics) SetBusy(n int) {
	m.Busy.Set(float64(n))
}
