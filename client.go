// Package twitchirc is a Twitch chat client library: connect once, join
// as many channels as you want, and the dispatcher transparently spreads
// them across however many underlying IRC connections Twitch's per-
// connection channel and rate limits require.
package twitchirc

import (
	"twitchirc/internal/pool"
	"twitchirc/login"
	"twitchirc/message"
)

// Kind classifies an Event from Client.Events.
type Kind int

const (
	// KindMessage carries a mapped ServerMessage: PRIVMSG, NOTICE,
	// ROOMSTATE, and every other recognized or Generic command.
	KindMessage Kind = iota
	// KindChannelJoinFailed reports a channel join that failed
	// terminally (a server NOTICE like msg_channel_suspended); the
	// channel has already been removed from wanted_channels.
	KindChannelJoinFailed
)

// Event is one item of the client's consumer-facing event stream.
type Event struct {
	Kind    Kind
	Channel string
	Reason  error
	Message message.ServerMessage
}

// ChannelStatus is the result of GetChannelStatus.
type ChannelStatus = pool.ChannelStatus

// Client is the public façade over the connection pool: everything a
// consumer needs, with no internal connection or placement detail
// exposed.
type Client struct {
	pool *pool.Pool
}

// Connect builds a Client authenticating with creds and starts its
// dispatcher; it does not block waiting for any connection to open.
func Connect(creds login.Provider, opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := pool.New(cfg.dialer, creds, cfg.pool, cfg.conn, cfg.metrics, cfg.logger)
	return &Client{pool: p}
}

// Events returns the client's event stream. It is closed once Close has
// drained every connection.
func (c *Client) Events() <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for ev := range c.pool.Events() {
			out <- translateEvent(ev)
		}
	}()
	return out
}

func translateEvent(ev pool.Event) Event {
	switch ev.Kind {
	case pool.KindChannelJoinFailed:
		return Event{Kind: KindChannelJoinFailed, Channel: ev.Channel, Reason: ev.Reason}
	default:
		return Event{Kind: KindMessage, Message: ev.ServerMessage}
	}
}

// Join adds channel to the wanted set. A no-op if it is already wanted.
func (c *Client) Join(channel string) error { return c.pool.Join(channel) }

// Part removes channel from the wanted set and leaves it wherever it is
// currently joined.
func (c *Client) Part(channel string) error { return c.pool.Part(channel) }

// SetWantedChannels atomically replaces the wanted set, joining and
// parting whatever the diff requires.
func (c *Client) SetWantedChannels(channels []string) error {
	return c.pool.SetWantedChannels(channels)
}

// Say sends a plain chat message to channel. text is unconditionally
// prefixed with ". ", so a user-supplied message can never be
// interpreted as a Twitch chat command.
func (c *Client) Say(channel, text string) error {
	return c.pool.Say(channel, guardCommandPrefix(text))
}

// SayInReplyTo sends a threaded reply to an existing message.
func (c *Client) SayInReplyTo(channel, replyParentMsgID, text string) error {
	return c.pool.SayInReplyTo(channel, replyParentMsgID, guardCommandPrefix(text))
}

// SayInReplyToMessage replies in a channel's own thread, inferring both
// the channel and the parent message id from an already-received
// Privmsg.
func (c *Client) SayInReplyToMessage(parent *message.Privmsg, text string) error {
	return c.SayInReplyTo(parent.ChannelLogin, parent.MessageID, text)
}

// Me sends a /me-style action message: text is unconditionally prefixed
// with "/me ", which Twitch's server itself renders as an action rather
// than a CTCP ACTION wrapper on the wire.
func (c *Client) Me(channel, text string) error {
	return c.pool.Say(channel, guardMePrefix(text))
}

// MeInReplyTo sends a threaded /me-style reply.
func (c *Client) MeInReplyTo(channel, replyParentMsgID, text string) error {
	return c.pool.SayInReplyTo(channel, replyParentMsgID, guardMePrefix(text))
}

// MeInReplyToMessage is the ACTION counterpart of SayInReplyToMessage.
func (c *Client) MeInReplyToMessage(parent *message.Privmsg, text string) error {
	return c.MeInReplyTo(parent.ChannelLogin, parent.MessageID, text)
}

// SendMessage is the escape hatch: build any IRCMessage and it is sent on
// the least-busy non-full connection, independent of channel membership.
func (c *Client) SendMessage(m *message.Message) error {
	return c.pool.SendMessage(m)
}

// GetChannelStatus reports whether channel is wanted and whether it is
// currently acknowledged-joined on some live connection.
func (c *Client) GetChannelStatus(channel string) ChannelStatus {
	return c.pool.GetChannelStatus(channel)
}

// Close requests graceful shutdown of every connection and blocks until
// they have all drained.
func (c *Client) Close() {
	c.pool.Close()
}

// guardCommandPrefix unconditionally prefixes text with ". " so it can
// never be interpreted as a Twitch chat command, no matter what it
// starts with.
func guardCommandPrefix(text string) string {
	return ". " + text
}

// guardMePrefix unconditionally prefixes text with "/me " for the same
// reason guardCommandPrefix prefixes Say's text with ". ".
func guardMePrefix(text string) string {
	return "/me " + text
}
