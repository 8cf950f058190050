package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks payout processing and settlement outcomes.
type Metrics struct {
	Processed       prometheus.Counter
	Settlements     *prometheus.CounterVec
	GateRejections  *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	SettledAmount   prometheus.Counter
	InFlight        prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		Processed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refurb_payments_processed_total",
			Help: "Payouts accepted for processing",
		}),
		Settlements: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_payment_settlements_total",
			Help: "Settlement outcomes by result",
		}, []string{"result"}),
		GateRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refurb_payment_gate_rejections_total",
			Help: "Processing attempts refused by a verification gate",
		}, []string{"gate"}),
		GatewayDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "refurb_payment_gateway_duration_seconds",
			Help:    "Duration of payout network calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		SettledAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refurb_payment_settled_rupees_total",
			Help: "Sum of completed payout amounts",
		}),
		InFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "refurb_payments_awaiting_settlement",
			Help: "Payouts processing and waiting for settlement",
		}),
	}
}

func (m *Metrics) IncrementProcessed() {
	m.Processed.Inc()
}

// ObserveSettlement records a completed or failed settlement.
func (m *Metrics) ObserveSettlement(result string, amount float64) {
	m.Settlements.WithLabelValues(result).Inc()
	if result == "completed" {
		m.SettledAmount.Add(amount)
	}
}

func (m *Metrics) IncrementGateRejection(gate string) {
	m.GateRejections.WithLabelValues(gate).Inc()
}

// ObserveGateway records a payout network call started at start.
func (m *Metrics) ObserveGateway(operation string, start time.Time) {
	m.GatewayDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetInFlight(n int) {
	m.InFlight.Set(float64(n))
}
