package message

import "strings"

// Notice is a server-to-client informational or error message, classified
// by its msg-id tag (e.g. "msg_channel_suspended"). ChannelLogin is empty
// for notices not scoped to a channel (param 0 == "*").
type Notice struct {
	SourceMsg    *Message
	ChannelLogin string
	MessageID    string
	Text         string
}

func (n *Notice) Source() *Message { return n.SourceMsg }

func ParseNotice(m *Message) (*Notice, error) {
	if m.Command != "NOTICE" {
		return nil, &ErrMismatchedCommand{Variant: "Notice", Command: m.Command}
	}
	channel, err := m.RequireParam(0, "channel or *")
	if err != nil {
		return nil, err
	}
	channel = strings.TrimPrefix(channel, "#")
	if channel == "*" {
		channel = ""
	}
	text, _ := m.Param(1)
	return &Notice{
		SourceMsg:    m,
		ChannelLogin: channel,
		MessageID:    m.OptionalNonemptyTag("msg-id"),
		Text:         text,
	}, nil
}

// ClearMsg reports a single deleted chat message.
type ClearMsg struct {
	SourceMsg       *Message
	ChannelLogin    string
	SenderLogin     string
	TargetMessageID string
	Text            string
}

func (c *ClearMsg) Source() *Message { return c.SourceMsg }

func ParseClearMsg(m *Message) (*ClearMsg, error) {
	if m.Command != "CLEARMSG" {
		return nil, &ErrMismatchedCommand{Variant: "ClearMsg", Command: m.Command}
	}
	channel, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}
	targetMsgID, err := m.RequireNonemptyTag("target-msg-id")
	if err != nil {
		return nil, err
	}
	text, _ := m.Param(1)
	return &ClearMsg{
		SourceMsg:       m,
		ChannelLogin:    channel,
		SenderLogin:     m.OptionalNonemptyTag("login"),
		TargetMessageID: targetMsgID,
		Text:            text,
	}, nil
}
