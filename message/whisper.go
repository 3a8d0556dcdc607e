package message

// Whisper is a private message sent directly to this client's user.
type Whisper struct {
	SourceMsg         *Message
	RecipientLogin    string
	SenderLogin       string
	SenderDisplayName string
	SenderID          string
	MessageID         string
	ThreadID          string
	Text              string
	IsAction          bool
	Emotes            []Emote
	Badges            []Badge
	Color             string
}

func (w *Whisper) Source() *Message { return w.SourceMsg }

func ParseWhisper(m *Message) (*Whisper, error) {
	if m.Command != "WHISPER" {
		return nil, &ErrMismatchedCommand{Variant: "Whisper", Command: m.Command}
	}

	recipient, err := m.RequireParam(0, "recipient login")
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
	senderID, err := m.RequireNonemptyTag("user-id")
	if err != nil {
		return nil, err
	}
	msgID, err := m.RequireNonemptyTag("message-id")
	if err != nil {
		return nil, err
	}

	return &Whisper{
		SourceMsg:         m,
		RecipientLogin:    recipient,
		SenderLogin:       senderLogin,
		SenderDisplayName: m.OptionalNonemptyTag("display-name"),
		SenderID:          senderID,
		MessageID:         msgID,
		ThreadID:          m.OptionalNonemptyTag("thread-id"),
		Text:              text,
		IsAction:          isAction,
		Emotes:            parseEmotes(m.OptionalNonemptyTag("emotes"), trailing, text, isAction),
		Badges:            parseBadges(m.OptionalNonemptyTag("badges")),
		Color:             m.OptionalNonemptyTag("color"),
	}, nil
}
