package twitchirc

import (
	"time"

	"twitchirc/internal/connection"
	"twitchirc/internal/pool"
	"twitchirc/metrics"
	"twitchirc/pkg/logger"
	"twitchirc/transport"
)

// Config is the client's full configuration surface (spec §4.4), built
// via functional Options. There is no file-backed or environment-variable
// form: spec §6 is explicit that this library's own configuration is
// neither.
type Config struct {
	pool    pool.Config
	conn    connection.Config
	dialer  transport.Dialer
	metrics *metrics.Bundle
	logger  logger.Logger
}

// Option mutates a Config being built by Connect.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		pool:   pool.DefaultConfig(),
		conn:   connection.DefaultConfig(),
		dialer: transport.NewTCPDialer(),
		logger: logger.New(),
	}
}

// WithMaxChannelsPerConnection overrides the per-connection channel
// ceiling (default 90).
func WithMaxChannelsPerConnection(n int) Option {
	return func(c *Config) { c.pool.MaxChannelsPerConnection = n }
}

// WithMaxWaitingMessagesPerConnection overrides the busy_score threshold
// (default 5).
func WithMaxWaitingMessagesPerConnection(n int) Option {
	return func(c *Config) { c.pool.MaxWaitingMessagesPerConnection = n }
}

// WithConnectionRateLimit overrides the connection-open rate limiter:
// at most one new connection every `every`, with `burst` initiating
// simultaneously.
func WithConnectionRateLimit(every time.Duration, burst int) Option {
	return func(c *Config) {
		c.pool.NewConnectionEvery = every
		c.pool.MaxInitiatingConnections = burst
	}
}

// WithConnectTimeout overrides the per-connection handshake deadline.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.pool.ConnectTimeout = d
		c.conn.ConnectTimeout = d
	}
}

// WithTimePerMessage sets the advisory outbound pacing value stored in the
// pool configuration. Nothing reads it: busy accounting counts PRIVMSGs in
// the connection's fixed BusyScoreWindow and is not derived from this value.
func WithTimePerMessage(d time.Duration) Option {
	return func(c *Config) { c.pool.TimePerMessage = d }
}

// WithTracingIdentifier attaches a label to all log/trace spans this
// client produces.
func WithTracingIdentifier(id string) Option {
	return func(c *Config) { c.pool.TracingIdentifier = id }
}

// WithPingPong overrides the PING/PONG liveness supervisor's idle
// interval and PONG deadline.
func WithPingPong(interval, timeout time.Duration) Option {
	return func(c *Config) {
		c.conn.PingInterval = interval
		c.conn.PongTimeout = timeout
	}
}

// WithJoinAckTimeout overrides the JOIN-ack deadline (default 10s).
func WithJoinAckTimeout(d time.Duration) Option {
	return func(c *Config) { c.conn.JoinAckTimeout = d }
}

// WithWebSocketTransport switches the wire transport from TCP/TLS (the
// default) to Twitch's WebSocket endpoint.
func WithWebSocketTransport() Option {
	return func(c *Config) { c.dialer = transport.NewWSDialer() }
}

// WithTransport installs a caller-supplied Dialer, mainly for tests.
func WithTransport(d transport.Dialer) Option {
	return func(c *Config) { c.dialer = d }
}

// WithMetrics attaches a Prometheus bundle. Omit this option to run
// without metrics; every Bundle method is a nil-safe no-op.
func WithMetrics(m *metrics.Bundle) Option {
	return func(c *Config) { c.metrics = m }
}

// WithLogger installs a caller-supplied Logger in place of the default
// stdout+rotating-file logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Config) { c.logger = l }
}
