package engine

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

// metricSet holds the engine's operational metrics. Metrics are created
// unconditionally and registered only when a registerer is supplied, so the
// hot path never branches on observability config.
type metricSet struct {
	initiated   prometheus.Counter
	completed   prometheus.Counter
	failed      prometheus.Counter
	anomalies   prometheus.Counter
	profit      prometheus.Counter
	dailyVolume prometheus.Gauge
}

func newMetricSet(reg prometheus.Registerer) *metricSet {
	m := &metricSet{
		initiated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flasharb_loans_initiated_total",
			Help: "Loan initiations that passed validation and reached the pair.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flasharb_loans_completed_total",
			Help: "Loans that settled profitably.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flasharb_loans_failed_total",
			Help: "Loan attempts aborted for any reason.",
		}),
		anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flasharb_price_anomalies_total",
			Help: "Hops whose realized output fell below quote by the anomaly threshold.",
		}),
		profit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flasharb_net_profit_total",
			Help: "Cumulative net profit paid to initiators, in base asset units.",
		}),
		dailyVolume: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flasharb_daily_volume_used",
			Help: "Borrowed volume in the current daily window.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.initiated, m.completed, m.failed, m.anomalies, m.profit, m.dailyVolume)
	}
	return m
}

// bigFloat projects a big.Int onto a float64 for gauge/counter export.
// Precision loss past 2^53 is acceptable for monitoring.
func bigFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
