package message

import "time"

// ClearChatAction classifies what a CLEARCHAT affected.
type ClearChatAction int

const (
	ChatCleared ClearChatAction = iota
	UserBanned
	UserTimedOut
)

// ClearChat reports a moderation action that cleared messages: either the
// whole channel's chat, a single permanent ban, or a timeout.
type ClearChat struct {
	SourceMsg       *Message
	ChannelLogin    string
	ChannelID       string
	Action          ClearChatAction
	TargetUserLogin string
	TargetUserID    string
	BanDuration     time.Duration
}

func (c *ClearChat) Source() *Message { return c.SourceMsg }

func ParseClearChat(m *Message) (*ClearChat, error) {
	if m.Command != "CLEARCHAT" {
		return nil, &ErrMismatchedCommand{Variant: "ClearChat", Command: m.Command}
	}
	channel, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}
	channelID := m.OptionalNonemptyTag("room-id")

	target, hasTarget := m.Param(1)
	if !hasTarget || target == "" {
		return &ClearChat{SourceMsg: m, ChannelLogin: channel, ChannelID: channelID, Action: ChatCleared}, nil
	}

	targetID := m.OptionalNonemptyTag("target-user-id")

	if durSecs, err := m.OptionalInt("ban-duration"); err != nil {
		return nil, err
	} else if durSecs != nil {
		return &ClearChat{
			SourceMsg:       m,
			ChannelLogin:    channel,
			ChannelID:       channelID,
			Action:          UserTimedOut,
			TargetUserLogin: target,
			TargetUserID:    targetID,
			BanDuration:     time.Duration(*durSecs) * time.Second,
		}, nil
	}

	return &ClearChat{
		SourceMsg:       m,
		ChannelLogin:    channel,
		ChannelID:       channelID,
		Action:          UserBanned,
		TargetUserLogin: target,
		TargetUserID:    targetID,
	}, nil
}
