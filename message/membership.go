package message

// Join reports a user entering a channel. For this client's own user it
// doubles as the JOIN-ack signal for the dispatcher's placement protocol.
type Join struct {
	SourceMsg    *Message
	ChannelLogin string
	UserLogin    string
}

func (j *Join) Source() *Message { return j.SourceMsg }

func ParseJoin(m *Message) (*Join, error) {
	if m.Command != "JOIN" {
		return nil, &ErrMismatchedCommand{Variant: "Join", Command: m.Command}
	}
	channel, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}
	nick, err := m.PrefixNick()
	if err != nil {
		return nil, err
	}
	return &Join{SourceMsg: m, ChannelLogin: channel, UserLogin: nick}, nil
}

// Part reports a user leaving a channel.
type Part struct {
	SourceMsg    *Message
	ChannelLogin string
	UserLogin    string
}

func (p *Part) Source() *Message { return p.SourceMsg }

func ParsePart(m *Message) (*Part, error) {
	if m.Command != "PART" {
		return nil, &ErrMismatchedCommand{Variant: "Part", Command: m.Command}
	}
	channel, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}
	nick, err := m.PrefixNick()
	if err != nil {
		return nil, err
	}
	return &Part{SourceMsg: m, ChannelLogin: channel, UserLogin: nick}, nil
}
