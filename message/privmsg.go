package message

import "time"

// Privmsg is a chat message sent to a channel.
type Privmsg struct {
	SourceMsg         *Message
	ChannelLogin      string
	ChannelID         string
	SenderLogin       string
	SenderDisplayName string
	SenderID          string
	MessageID         string
	Text              string
	IsAction          bool
	Emotes            []Emote
	Badges            []Badge
	BadgeInfo         []Badge
	Color             string
	Bits              int64
	ReplyParentMsgID  string
	ServerTimestamp   time.Time
}

func (p *Privmsg) Source() *Message { return p.SourceMsg }

func ParsePrivmsg(m *Message) (*Privmsg, error) {
	if m.Command != "PRIVMSG" {
		return nil, &ErrMismatchedCommand{Variant: "Privmsg", Command: m.Command}
	}

	channel, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}
	trailing, err := m.RequireParam(1, "message text")
	if err != nil {
		return nil, err
	}
	text, isAction := MessageText(trailing)

	senderLogin, ok := m.Tag("login")
	if !ok || senderLogin == "" {
		senderLogin, err = m.PrefixNick()
		if err != nil {
			return nil, err
		}
	}

	msgID, err := m.RequireNonemptyTag("id")
	if err != nil {
		return nil, err
	}
	channelID, err := m.RequireNonemptyTag("room-id")
	if err != nil {
		return nil, err
	}
	senderID, err := m.RequireNonemptyTag("user-id")
	if err != nil {
		return nil, err
	}

	var bits int64
	if b, err := m.OptionalInt("bits"); err != nil {
		return nil, err
	} else if b != nil {
		bits = *b
	}

	var ts time.Time
	if tsRaw, err := m.OptionalInt("tmi-sent-ts"); err != nil {
		return nil, err
	} else if tsRaw != nil {
		ts = time.UnixMilli(*tsRaw)
	}

	return &Privmsg{
		SourceMsg:         m,
		ChannelLogin:      channel,
		ChannelID:         channelID,
		SenderLogin:       senderLogin,
		SenderDisplayName: m.OptionalNonemptyTag("display-name"),
		SenderID:          senderID,
		MessageID:         msgID,
		Text:              text,
		IsAction:          isAction,
		Emotes:            parseEmotes(m.OptionalNonemptyTag("emotes"), trailing, text, isAction),
		Badges:            parseBadges(m.OptionalNonemptyTag("badges")),
		BadgeInfo:         parseBadges(m.OptionalNonemptyTag("badge-info")),
		Color:             m.OptionalNonemptyTag("color"),
		Bits:              bits,
		ReplyParentMsgID:  m.OptionalNonemptyTag("reply-parent-msg-id"),
		ServerTimestamp:   ts,
	}, nil
}
