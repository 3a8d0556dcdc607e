package message

// UserNotice is a system-generated room event (sub, resub, raid, and so
// on). EventID carries the raw msg-id so callers can recognize ids this
// library does not break out into a dedicated variant.
type UserNotice struct {
	SourceMsg         *Message
	ChannelLogin      string
	ChannelID         string
	SenderLogin       string
	SenderDisplayName string
	SenderID          string
	MessageID         string
	EventID           string
	SystemMessage     string
	Text              string
	IsAction          bool
	Emotes            []Emote
	Badges            []Badge
	BadgeInfo         []Badge
	Color             string
}

func (u *UserNotice) Source() *Message { return u.SourceMsg }

func ParseUserNotice(m *Message) (*UserNotice, error) {
	if m.Command != "USERNOTICE" {
		return nil, &ErrMismatchedCommand{Variant: "UserNotice", Command: m.Command}
	}
	channel, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}
	channelID, err := m.RequireNonemptyTag("room-id")
	if err != nil {
		return nil, err
	}
	senderLogin, err := m.RequireNonemptyTag("login")
	if err != nil {
		return nil, err
	}
	senderID, err := m.RequireNonemptyTag("user-id")
	if err != nil {
		return nil, err
	}
	msgID, err := m.RequireNonemptyTag("id")
	if err != nil {
		return nil, err
	}
	eventID, err := m.RequireNonemptyTag("msg-id")
	if err != nil {
		return nil, err
	}
	systemMsg, err := m.RequireNonemptyTag("system-msg")
	if err != nil {
		return nil, err
	}

	trailing, hasTrailing := m.Param(1)
	var text string
	var isAction bool
	var emotes []Emote
	if hasTrailing {
		text, isAction = MessageText(trailing)
		emotes = parseEmotes(m.OptionalNonemptyTag("emotes"), trailing, text, isAction)
	}

	return &UserNotice{
		SourceMsg:         m,
		ChannelLogin:      channel,
		ChannelID:         channelID,
		SenderLogin:       senderLogin,
		SenderDisplayName: m.OptionalNonemptyTag("display-name"),
		SenderID:          senderID,
		MessageID:         msgID,
		EventID:           eventID,
		SystemMessage:     systemMsg,
		Text:              text,
		IsAction:          isAction,
		Emotes:            emotes,
		Badges:            parseBadges(m.OptionalNonemptyTag("badges")),
		BadgeInfo:         parseBadges(m.OptionalNonemptyTag("badge-info")),
		Color:             m.OptionalNonemptyTag("color"),
	}, nil
}
