package connection

import "twitchirc/message"

// Kind classifies an Event.
type Kind int

const (
	KindReady Kind = iota
	KindChannelJoinConfirmed
	KindChannelJoinFailed
	KindServerMessage
	KindClosed
)

// Event is one lifecycle or data event a Connection surfaces to its owner
// (the pool). Exactly one of the payload fields is meaningful, selected by
// Kind.
type Event struct {
	Kind          Kind
	Channel       string
	Reason        error
	ServerMessage message.ServerMessage
}
