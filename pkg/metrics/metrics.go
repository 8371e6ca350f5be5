package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "translator"

// Attempt outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Invocation statuses.
const (
	StatusCompleted = "completed"
	StatusExhausted = "exhausted"
	StatusCanceled  = "canceled"
)

// Version is reported by the build info gauge; set with -ldflags at build time.
var Version = "dev"

// Recorder holds the translator's Prometheus collectors.
type Recorder struct {
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	backoffs        *prometheus.CounterVec
	invocations     *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_attempts_total",
			Help:      "Generation attempts by model, outcome and error kind.",
		}, []string{"model", "outcome", "kind"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_attempt_duration_seconds",
			Help:      "Duration of single generation attempts.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"model"}),
		backoffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_backoffs_total",
			Help:      "Pauses taken after a quota error, by the model that hit it.",
		}, []string{"model"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Translation invocations by final status.",
		}, []string{"status"}),
	}
	reg.MustRegister(r.attempts, r.attemptDuration, r.backoffs, r.invocations, NewBuildInfoCollector())
	return r
}

// NewBuildInfoCollector returns a collector that exports the build version.
func NewBuildInfoCollector() prometheus.Collector {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "translator build metadata exposed as labels with a constant value of 1.",
			ConstLabels: prometheus.Labels{
				"version":    Version,
				"go_version": runtime.Version(),
				"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			},
		},
		func() float64 { return 1 },
	)
}

// ObserveAttempt records one generation attempt. kind is empty on success.
func (r *Recorder) ObserveAttempt(model, kind string, d time.Duration) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if kind != "" {
		outcome = OutcomeFailure
	}
	r.attempts.WithLabelValues(model, outcome, kind).Inc()
	r.attemptDuration.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveBackoff records a quota pause after model failed.
func (r *Recorder) ObserveBackoff(model string) {
	if r == nil {
		return
	}
	r.backoffs.WithLabelValues(model).Inc()
}

// ObserveInvocation records the final status of one invocation.
func (r *Recorder) ObserveInvocation(status string) {
	if r == nil {
		return
	}
	r.invocations.WithLabelValues(status).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
