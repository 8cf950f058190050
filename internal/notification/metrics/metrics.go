package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks notification volume by kind and how entries leave the log.
type Metrics struct {
	Emitted *prometheus.CounterVec
	Removed *prometheus.CounterVec
	Active  prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_notifications_emitted_total",
			Help: "Notifications appended to the log, by kind",
		}, []string{"kind"}),
		Removed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_notifications_removed_total",
			Help: "Notifications removed from the log, by cause (expired, dismissed, cleared)",
		}, []string{"cause"}),
		Active: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "refurb_notifications_active",
			Help: "Notifications currently in the log",
		}),
	}
}

func (m *Metrics) IncrementEmitted(kind string) {
	m.Emitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) AddRemoved(cause string, n int) {
	m.Removed.WithLabelValues(cause).Add(float64(n))
}

func (m *Metrics) SetActive(n int) {
	m.Active.Set(float64(n))
}
