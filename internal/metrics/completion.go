package metrics

import "github.com/prometheus/client_golang/prometheus"

// Structured completion Prometheus metrics.
var (
	CompletionAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragstore",
			Name:      "completion_attempts_total",
			Help:      "Completion attempts by outcome (validated, invalid, provider_error)",
		},
		[]string{"provider", "model", "outcome"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragstore",
			Name:      "completion_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	CompletionExhaustedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragstore",
			Name:      "completion_exhausted_total",
			Help:      "Completions that failed schema validation after all retries",
		},
		[]string{"provider", "model"},
	)
)

var completionMetricsRegistered bool

// RegisterCompletionMetrics registers Prometheus completion metrics. Must be called once from main.
func RegisterCompletionMetrics() {
	if completionMetricsRegistered {
		return
	}
	prometheus.MustRegister(CompletionAttemptsTotal)
	prometheus.MustRegister(CompletionRequestDuration)
	prometheus.MustRegister(CompletionExhaustedTotal)
	completionMetricsRegistered = true
}
