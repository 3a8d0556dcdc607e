// Package transport abstracts the duplex byte-message stream a Connection
// speaks IRC lines over: TCP/TLS or WebSocket, each yielding framed
// IRCMessages in and accepting them out.
package transport

import (
	"context"

	"twitchirc/message"
)

// Transport is a connected, bidirectional stream of IRC messages. Framing
// (line-based for TCP, one-message-per-WS-text-frame for WebSocket) is
// the concrete implementation's concern; callers only see messages.
type Transport interface {
	// Receive blocks until the next inbound message is available, the
	// transport closes, or ctx is cancelled.
	Receive(ctx context.Context) (*message.Message, error)
	// Send writes one outbound message. Send is not required to be safe
	// for concurrent use; callers serialize writes themselves.
	Send(ctx context.Context, m *message.Message) error
	// Close releases the underlying connection. Receive calls in flight
	// return an error after Close.
	Close() error
}

// Dialer opens a new Transport. Connection calls Dial once per connection
// attempt.
type Dialer interface {
	Dial(ctx context.Context) (Transport, error)
}
