package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the validation hot path.
type Metrics struct {
	Outcomes    *prometheus.CounterVec
	Latency     prometheus.Histogram
	InfraErrors prometheus.Counter
}

// New creates a new Metrics instance with all validation metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "licensio_validation_attempts_total",
			Help: "Validation attempts by deciding error code",
		}, []string{"error_code"}),
		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "licensio_validation_duration_seconds",
			Help:    "Validation decision latency",
			Buckets: prometheus.DefBuckets,
		}),
		InfraErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "licensio_validation_infra_errors_total",
			Help: "Validation attempts aborted by infrastructure failures",
		}),
	}
}

func (m *Metrics) ObserveOutcome(code string, seconds float64) {
	if m != nil {
		m.Outcomes.WithLabelValues(code).Inc()
		m.Latency.Observe(seconds)
	}
}

func (m *Metrics) IncrementInfraError() {
	if m != nil {
		m.InfraErrors.Inc()
	}
}
