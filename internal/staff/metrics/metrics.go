package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the staff registry.
type Metrics struct {
	Changes        *prometheus.CounterVec
	Accounts       *prometheus.GaugeVec
	HashDuration   prometheus.Histogram
	ValidationFail prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Changes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_staff_changes_total",
			Help: "Staff registry mutations by action",
		}, []string{"action"}),
		Accounts: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "refurb_staff_accounts",
			Help: "Staff accounts by status",
		}, []string{"status"}),
		HashDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "refurb_staff_password_hash_duration_seconds",
			Help:    "Duration of bcrypt password hashing",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ValidationFail: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refurb_staff_validation_failures_total",
			Help: "Staff operations rejected by validation",
		}),
	}
}

func (m *Metrics) IncrementChange(action string) {
	m.Changes.WithLabelValues(action).Inc()
}

// SetAccounts records the current active and inactive totals.
func (m *Metrics) SetAccounts(active, inactive int) {
	m.Accounts.WithLabelValues("active").Set(float64(active))
	m.Accounts.WithLabelValues("inactive").Set(float64(inactive))
}

// ObserveHash records the duration of a password hash.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveHash(start time.Time) {
	m.HashDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementValidationFailure() {
	m.ValidationFail.Inc()
}
