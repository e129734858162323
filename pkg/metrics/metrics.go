package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Release metrics
	ReleasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotswap_releases_total",
			Help: "Total number of finished releases by outcome",
		},
		[]string{"outcome"},
	)

	ReleaseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "slotswap_release_duration_seconds",
			Help:    "Wall-clock duration of finished releases in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	DegradedReleasesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slotswap_degraded_releases_total",
			Help: "Total number of successful releases that left the previous slot running",
		},
	)

	RollbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotswap_rollbacks_total",
			Help: "Total number of automatic rollback attempts by result",
		},
		[]string{"result"},
	)

	// Slot metrics
	ActiveSlot = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "slotswap_active_slot",
			Help: "Which slot the stable service routes to (1 = active, 0 = inactive)",
		},
		[]string{"slot"},
	)
)

func init() {
	prometheus.MustRegister(ReleasesTotal)
	prometheus.MustRegister(ReleaseDuration)
	prometheus.MustRegister(DegradedReleasesTotal)
	prometheus.MustRegister(RollbacksTotal)
	prometheus.MustRegister(ActiveSlot)
}

// Handler serves the default registry in the exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
