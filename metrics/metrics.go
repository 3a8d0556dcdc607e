// Package metrics defines the opt-in Prometheus metrics bundle named in
// the external-interfaces contract, grounded in the teacher's own
// promauto package-level metric vars.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bundle is every metric this library exports. A nil *Bundle is valid and
// every method on it is a no-op, so callers that don't opt in to metrics
// pay nothing beyond a nil check.
type Bundle struct {
	ConnectionsCreated prometheus.Counter
	ConnectionsFailed  prometheus.Counter
	MessagesReceived   *prometheus.CounterVec
	MessagesSent       *prometheus.CounterVec
	Channels           *prometheus.GaugeVec
	ConnectionsOpen    prometheus.Gauge
}

// New registers the bundle's metrics against registry. Pass nil to use
// prometheus's default registry. constLabels are attached to every
// metric in the bundle (e.g. a tracing_identifier label).
func New(registry prometheus.Registerer, constLabels prometheus.Labels) *Bundle {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Bundle{
		ConnectionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name:        "twitchirc_connections_created",
			Help:        "Number of times a new connection was added to the connection pool.",
			ConstLabels: constLabels,
		}),
		ConnectionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name:        "twitchirc_connections_failed",
			Help:        "Number of times a connection has failed since the start of this client.",
			ConstLabels: constLabels,
		}),
		MessagesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "twitchirc_messages_received",
			Help:        "Number of raw IRC messages received across all connections.",
			ConstLabels: constLabels,
		}, []string{"command"}),
		MessagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "twitchirc_messages_sent",
			Help:        "Number of raw IRC messages sent across all connections.",
			ConstLabels: constLabels,
		}, []string{"command"}),
		Channels: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "twitchirc_channels",
			Help:        "Number of channels the client is currently joined to, by type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		ConnectionsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "twitchirc_connections_open",
			Help:        "Number of connections currently open.",
			ConstLabels: constLabels,
		}),
	}
}

func (b *Bundle) incConnectionsCreated() {
	if b != nil {
		b.ConnectionsCreated.Inc()
	}
}

func (b *Bundle) incConnectionsFailed() {
	if b != nil {
		b.ConnectionsFailed.Inc()
	}
}

// ObserveMessageReceived records one inbound message of the given command.
func (b *Bundle) ObserveMessageReceived(command string) {
	if b != nil {
		b.MessagesReceived.WithLabelValues(command).Inc()
	}
}

// ObserveMessageSent records one outbound message of the given command.
func (b *Bundle) ObserveMessageSent(command string) {
	if b != nil {
		b.MessagesSent.WithLabelValues(command).Inc()
	}
}

// ConnectionCreated records a new connection being added to the pool.
func (b *Bundle) ConnectionCreated() { b.incConnectionsCreated() }

// ConnectionFailed records a connection's death.
func (b *Bundle) ConnectionFailed() { b.incConnectionsFailed() }

// SetChannels sets the current channel count for a given label ("wanted",
// "joined", ...).
func (b *Bundle) SetChannels(kind string, n float64) {
	if b != nil {
		b.Channels.WithLabelValues(kind).Set(n)
	}
}

// SetConnectionsOpen sets the current number of open connections.
func (b *Bundle) SetConnectionsOpen(n float64) {
	if b != nil {
		b.ConnectionsOpen.Set(n)
	}
}
