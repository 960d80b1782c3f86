// Package metrics holds the Prometheus collectors for notification dispatch.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes
const (
	OutcomeDelivered    = "delivered"
	OutcomePartial      = "partial"
	OutcomeNoEndpoints  = "no_endpoints"
	OutcomeLookupFailed = "lookup_failed"
)

var (
	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rx_dispatch_total",
			Help: "Prescription notification dispatches by outcome",
		},
		[]string{"outcome"},
	)

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rx_push_deliveries_total",
			Help: "Per-endpoint push submissions by result and failure kind",
		},
		[]string{"result", "kind"},
	)

	tokensPrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rx_device_tokens_pruned_total",
			Help: "Device tokens deleted after the provider reported them permanently invalid",
		},
	)

	dispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rx_dispatch_duration_seconds",
			Help:    "Wall time of one dispatch including every endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

func init() {
	prometheus.MustRegister(dispatchTotal, deliveriesTotal, tokensPrunedTotal, dispatchDuration)
}

func RecordDispatch(outcome string, seconds float64) {
	dispatchTotal.WithLabelValues(outcome).Inc()
	dispatchDuration.Observe(seconds)
}

// RecordDelivery counts one endpoint submission. kind is empty on success.
func RecordDelivery(ok bool, kind string) {
	if ok {
		deliveriesTotal.WithLabelValues("success", "").Inc()
		return
	}
	deliveriesTotal.WithLabelValues("failure", kind).Inc()
}

func RecordPrune() {
	tokensPrunedTotal.Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
