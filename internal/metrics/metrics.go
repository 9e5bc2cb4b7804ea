// Package metrics exposes Prometheus metrics for the recording and scoring
// pipeline on a dedicated registry, keeping the default Go collectors out of
// the scrape.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// SessionsStarted counts recording sessions created
	SessionsStarted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "pitchscoop",
		Name:      "sessions_started_total",
		Help:      "Number of recording sessions created.",
	})

	// SessionsCompleted counts recording sessions finalized
	SessionsCompleted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "pitchscoop",
		Name:      "sessions_completed_total",
		Help:      "Number of recording sessions finalized.",
	})

	// ScoresProduced counts persisted scores by ranking tier
	ScoresProduced = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchscoop",
		Name:      "scores_produced_total",
		Help:      "Number of pitch scores persisted, by ranking tier.",
	}, []string{"tier"})

	// ScoringErrors counts scoring failures by kind
	ScoringErrors = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitchscoop",
		Name:      "scoring_errors_total",
		Help:      "Number of scoring failures, by kind (parse, completion, validation).",
	}, []string{"kind"})

	// CompletionLatency observes completion round-trip time
	CompletionLatency = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "pitchscoop",
		Name:      "completion_latency_seconds",
		Help:      "Latency of chat-completion calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	})

	// ScoringLatency observes end-to-end score_pitch time
	ScoringLatency = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "pitchscoop",
		Name:      "scoring_latency_seconds",
		Help:      "End-to-end latency of the pitch scorer.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	})
)

// Handler returns the HTTP handler serving the registry
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
