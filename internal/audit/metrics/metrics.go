package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit event pipeline.
type Metrics struct {
	EventsRecorded    prometheus.Counter
	EventsDropped     *prometheus.CounterVec
	PersistFailures   prometheus.Counter
	LiveSubscribers   prometheus.Gauge
	InboxDepth        prometheus.Gauge
}

// New creates a new Metrics instance with all audit pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "licensio_audit_events_recorded_total",
			Help: "Total security events recorded by the pipeline",
		}),
		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "licensio_audit_events_dropped_total",
			Help: "Events dropped instead of blocking, by stage",
		}, []string{"stage"}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "licensio_audit_persist_failures_total",
			Help: "Event store writes that failed",
		}),
		LiveSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "licensio_audit_live_subscribers",
			Help: "Currently connected live monitoring sessions",
		}),
		InboxDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "licensio_audit_inbox_depth",
			Help: "Events waiting in the pipeline inbox",
		}),
	}
}

func (m *Metrics) IncrementRecorded() {
	if m != nil {
		m.EventsRecorded.Inc()
	}
}

func (m *Metrics) IncrementDropped(stage string) {
	if m != nil {
		m.EventsDropped.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncrementPersistFailure() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) SetSubscribers(n int) {
	if m != nil {
		m.LiveSubscribers.Set(float64(n))
	}
}

func (m *Metrics) SetInboxDepth(n int) {
	if m != nil {
		m.InboxDepth.Set(float64(n))
	}
}
