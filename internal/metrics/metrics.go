// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPHandlingSeconds is a histogram of request latencies by path and
	// status code.
	HTTPHandlingSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_handling_seconds",
			Help:    "Histogram of HTTP request latency (seconds) by path and status code.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"path", "status"},
	)

	// InferenceLatencySeconds measures model execution time excluding HTTP
	// and preprocessing overhead.
	InferenceLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inference_latency_seconds",
			Help:    "Histogram of inference latency (seconds) excluding HTTP overhead.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// PredictionsTotal counts served predictions by predicted class.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful predictions by class.",
		},
		[]string{"class"},
	)

	// HealthStatus indicates whether the service is serving (1) or not (0).
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_status",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy).",
		},
	)
)

// RecordHTTPLatency records the latency of one HTTP request.
func RecordHTTPLatency(path, status string, seconds float64) {
	HTTPHandlingSeconds.WithLabelValues(path, status).Observe(seconds)
}

// RecordInferenceLatency records the latency of one inference call.
func RecordInferenceLatency(seconds float64) {
	InferenceLatencySeconds.Observe(seconds)
}

// RecordPrediction counts one served prediction.
func RecordPrediction(class string) {
	PredictionsTotal.WithLabelValues(class).Inc()
}

// SetHealthy marks the service as serving.
func SetHealthy() {
	HealthStatus.Set(1)
}

// SetUnhealthy marks the service as not serving.
func SetUnhealthy() {
	HealthStatus.Set(0)
}
