package pool

import "twitchirc/message"

// Kind classifies a pool-level Event, the stream surfaced to the library
// consumer. Unlike a Connection's Event, it never exposes which physical
// connection produced it.
type Kind int

const (
	KindServerMessage Kind = iota
	KindChannelJoinFailed
)

// Event is one item in the pool's consumer-facing event stream.
type Event struct {
	Kind          Kind
	Channel       string
	Reason        error
	ServerMessage message.ServerMessage
}
