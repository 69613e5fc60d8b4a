package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the credential module.
type Metrics struct {
	KeysIssued    prometheus.Counter
	KeysRevoked   prometheus.Counter
	KeyCollisions prometheus.Counter
}

// New creates a new Metrics instance with all credential module metrics registered.
func New() *Metrics {
	return &Metrics{
		KeysIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "licensio_credential_keys_issued_total",
			Help: "Total license keys issued",
		}),
		KeysRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "licensio_credential_keys_revoked_total",
			Help: "Total license keys revoked",
		}),
		KeyCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "licensio_credential_key_collisions_total",
			Help: "Key string collisions encountered during issuance",
		}),
	}
}

func (m *Metrics) IncrementIssued() {
	if m != nil {
		m.KeysIssued.Inc()
	}
}

func (m *Metrics) IncrementRevoked() {
	if m != nil {
		m.KeysRevoked.Inc()
	}
}

func (m *Metrics) IncrementCollision() {
	if m != nil {
		m.KeyCollisions.Inc()
	}
}
