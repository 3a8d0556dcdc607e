package pool

import (
	"twitchirc/internal/connection"
	"twitchirc/message"
)

// ChannelStatus answers GetChannelStatus: whether a channel is in
// wanted_channels and whether some live connection has it acknowledged.
type ChannelStatus struct {
	Wanted         bool
	JoinedOnServer bool
}

type cmdJoin struct {
	channel string
}

type cmdPart struct {
	channel string
}

type cmdSetWantedChannels struct {
	channels []string
	reply    chan error
}

type cmdSay struct {
	channel     string
	text        string
	replyParent string // reply-parent-msg-id, empty for say()
	reply       chan error
}

type cmdSendMessage struct {
	msg   *message.Message
	reply chan error
}

type cmdGetChannelStatus struct {
	channel string
	reply   chan ChannelStatus
}

type cmdClose struct {
	reply chan struct{}
}

// connEventMsg tags a Connection event with the connection it came from,
// so the dispatcher's single run loop can fan events in without each
// connection goroutine touching shared state directly.
type connEventMsg struct {
	connID string
	event  connection.Event
}
