package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ergebnis einer einzelnen Provider-Anfrage.
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_provider_requests_total",
			Help: "Provider requests by provider, operation and outcome (hit, empty, error).",
		},
		[]string{"provider", "operation", "outcome"},
	)
	providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "content_provider_request_duration_seconds",
			Help:    "Duration of provider requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)
	snapshotArticles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_snapshot_articles",
			Help: "Number of articles in the last stored snapshot.",
		},
	)
	snapshotRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_snapshot_runs_total",
			Help: "Snapshot runs by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(providerRequests, providerDuration, snapshotArticles, snapshotRuns)
}
