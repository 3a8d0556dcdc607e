package message

import "strings"

// HostTarget reports a channel starting or stopping hosting of another
// channel: `:tmi.twitch.tv HOSTTARGET #hosting :target [viewers]`, or
// `:tmi.twitch.tv HOSTTARGET #hosting :- ` when hosting stops.
type HostTarget struct {
	SourceMsg           *Message
	HostingChannelLogin string
	TargetChannelLogin  string
	ViewerCount         *int64
}

func (h *HostTarget) Source() *Message { return h.SourceMsg }

func ParseHostTarget(m *Message) (*HostTarget, error) {
	if m.Command != "HOSTTARGET" {
		return nil, &ErrMismatchedCommand{Variant: "HostTarget", Command: m.Command}
	}
	hosting, err := m.ChannelLogin()
	if err != nil {
		return nil, err
	}
	trailing, err := m.RequireParam(1, "target and optional viewer count")
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(trailing)
	if len(fields) == 0 {
		return &HostTarget{SourceMsg: m, HostingChannelLogin: hosting}, nil
	}

	target := fields[0]
	if target == "-" {
		target = ""
	}

	var viewers *int64
	if len(fields) > 1 {
		if n, ok := parseUint(fields[1]); ok {
			v := int64(n)
			viewers = &v
		}
	}

	return &HostTarget{
		SourceMsg:           m,
		HostingChannelLogin: hosting,
		TargetChannelLogin:  target,
		ViewerCount:         viewers,
	}, nil
}
