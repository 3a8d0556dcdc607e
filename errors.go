package twitchirc

import (
	"twitchirc/internal/connection"
	"twitchirc/internal/pool"
	"twitchirc/message"
)

// The error taxonomy from the error-handling design, re-exported as type
// aliases so callers never need to import the internal packages that
// actually originate them.
type (
	ConnectError                       = connection.ConnectError
	LoginError                         = connection.LoginError
	RemoteUnexpectedlyClosedConnection = connection.RemoteUnexpectedlyClosedConnection
	IncomingMessageParseError          = connection.IncomingMessageParseError
	ServerMessageParseError            = connection.ServerMessageParseError
	ReconnectRequested                 = connection.ReconnectRequested
	JoinTimeout                        = connection.JoinTimeout
	JoinFailedNotice                   = connection.JoinFailedNotice

	CannotSendMessage       = pool.CannotSendMessage
	CannotSendMessageReason = pool.CannotSendMessageReason

	ValidationError = message.ValidationError
)

// NotJoined is the only CannotSendMessageReason defined so far: the
// target channel has no live connection with it acknowledged-joined.
const NotJoined = pool.NotJoined
