package message

import (
	"strconv"
	"strings"
)

const actionWrapper = "\x01ACTION "

// Param returns the i-th parameter, or ok=false if there is none.
func (m *Message) Param(i int) (string, bool) {
	if i < 0 || i >= len(m.Params) {
		return "", false
	}
	return m.Params[i], true
}

// RequireParam returns the i-th parameter or a ServerMessageParseError
// naming what was expected there.
func (m *Message) RequireParam(i int, expected string) (string, error) {
	v, ok := m.Param(i)
	if !ok {
		return "", &ServerMessageParseError{Command: m.Command, Expected: expected, Found: "no such parameter"}
	}
	return v, nil
}

// Tag returns a tag's decoded value and whether it was present at all.
func (m *Message) Tag(key string) (string, bool) {
	v, ok := m.Tags[key]
	return v, ok
}

// RequireTag returns a tag's value, erroring if the tag is absent.
func (m *Message) RequireTag(key string) (string, error) {
	v, ok := m.Tag(key)
	if !ok {
		return "", &ServerMessageParseError{Command: m.Command, Expected: "tag " + key, Found: "missing"}
	}
	return v, nil
}

// RequireNonemptyTag returns a tag's value, erroring if the tag is absent
// or present-but-empty.
func (m *Message) RequireNonemptyTag(key string) (string, error) {
	v, err := m.RequireTag(key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", &ServerMessageParseError{Command: m.Command, Expected: "non-empty tag " + key, Found: "empty"}
	}
	return v, nil
}

// OptionalNonemptyTag returns "" both when the tag is absent and when it is
// present but empty — the two are equivalent per the wire grammar.
func (m *Message) OptionalNonemptyTag(key string) string {
	return m.Tags[key]
}

// ChannelLogin returns parameter 0 with its leading `#` stripped.
func (m *Message) ChannelLogin() (string, error) {
	raw, err := m.RequireParam(0, "channel")
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(raw, "#"), nil
}

// PrefixNick returns the sender's nick from the prefix.
func (m *Message) PrefixNick() (string, error) {
	if m.Prefix == nil || m.Prefix.Name == "" {
		return "", &ServerMessageParseError{Command: m.Command, Expected: "prefix nickname", Found: "no prefix"}
	}
	return m.Prefix.Name, nil
}

// OptionalBool parses a tag holding "0" or "1" into a tri-state bool.
func (m *Message) OptionalBool(key string) (*bool, error) {
	raw, ok := m.Tag(key)
	if !ok || raw == "" {
		return nil, nil
	}
	switch raw {
	case "0":
		v := false
		return &v, nil
	case "1":
		v := true
		return &v, nil
	default:
		return nil, &ServerMessageParseError{Command: m.Command, Expected: "boolean (0/1) tag " + key, Found: raw}
	}
}

// OptionalInt parses an integer-valued tag, returning nil if absent/empty.
func (m *Message) OptionalInt(key string) (*int64, error) {
	raw, ok := m.Tag(key)
	if !ok || raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &ServerMessageParseError{Command: m.Command, Expected: "integer tag " + key, Found: raw}
	}
	return &n, nil
}

// MessageText strips a `\x01ACTION ... \x01` wrapper from the trailing
// parameter, reporting whether it was present.
func MessageText(trailing string) (text string, isAction bool) {
	if strings.HasPrefix(trailing, actionWrapper) && strings.HasSuffix(trailing, "\x01") {
		return trailing[len(actionWrapper) : len(trailing)-1], true
	}
	return trailing, false
}
