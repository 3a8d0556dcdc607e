// Package message implements the IRCv3 wire format used by Twitch chat:
// parsing and stringifying raw lines, and mapping recognized commands onto
// typed ServerMessage variants.
package message

import "strings"

// Message is a single parsed (or to-be-sent) IRC line: optional tags,
// optional prefix, a command token, and a sequence of parameters.
type Message struct {
	Tags    Tags
	Prefix  *Prefix
	Command string
	Params  []string
}

// New builds an outbound message with no tags or prefix, ready to Send.
func New(command string, params ...string) *Message {
	return &Message{Command: strings.ToUpper(command), Params: params}
}

// WithTag sets a single tag and returns the message for chaining.
func (m *Message) WithTag(key, value string) *Message {
	if m.Tags == nil {
		m.Tags = Tags{}
	}
	m.Tags[key] = value
	return m
}

// Parse turns one wire line (no trailing CR/LF) into a Message.
func Parse(line string) (*Message, error) {
	if strings.ContainsAny(line, "\r\n") {
		return nil, &ParseError{Kind: ErrMalformedParam, Line: line}
	}

	rest := line
	tags := Tags{}
	if len(rest) > 0 && rest[0] == '@' {
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, &ParseError{Kind: ErrMalformedTag, Line: line}
		}
		tags = ParseTags(rest[1:sp])
		rest = rest[sp+1:]
	}

	var prefix *Prefix
	if len(rest) > 0 && rest[0] == ':' {
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, &ParseError{Kind: ErrMalformedPrefix, Line: line}
		}
		p := ParsePrefix(rest[1:sp])
		prefix = &p
		rest = rest[sp+1:]
	}

	if rest == "" {
		return nil, &ParseError{Kind: ErrNoCommand, Line: line}
	}

	var cmdTok string
	if sp := strings.IndexByte(rest, ' '); sp < 0 {
		cmdTok, rest = rest, ""
	} else {
		cmdTok, rest = rest[:sp], rest[sp+1:]
	}
	if cmdTok == "" {
		return nil, &ParseError{Kind: ErrEmptyCommand, Line: line}
	}
	if !isValidCommandToken(cmdTok) {
		return nil, &ParseError{Kind: ErrMalformedParam, Line: line}
	}

	params, err := parseParams(rest, line)
	if err != nil {
		return nil, err
	}

	return &Message{
		Tags:    tags,
		Prefix:  prefix,
		Command: strings.ToUpper(cmdTok),
		Params:  params,
	}, nil
}

func parseParams(rest, line string) ([]string, error) {
	var params []string
	for rest != "" {
		if rest[0] == ' ' {
			// a run of more than one space between middle params
			return nil, &ParseError{Kind: ErrMalformedParam, Line: line}
		}
		if rest[0] == ':' {
			params = append(params, rest[1:])
			break
		}
		idx := strings.IndexByte(rest, ' ')
		if idx < 0 {
			params = append(params, rest)
			break
		}
		params = append(params, rest[:idx])
		rest = rest[idx+1:]
	}
	return params, nil
}

func isValidCommandToken(tok string) bool {
	if len(tok) == 3 && isAllDigits(tok) {
		return true
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return len(tok) > 0
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the message back to its wire form (without CR/LF).
func (m *Message) String() string {
	var b strings.Builder
	if len(m.Tags) > 0 {
		b.WriteByte('@')
		b.WriteString(m.Tags.String())
		b.WriteByte(' ')
	}
	if m.Prefix != nil {
		b.WriteByte(':')
		b.WriteString(m.Prefix.String())
		b.WriteByte(' ')
	}
	b.WriteString(m.Command)
	for i, p := range m.Params {
		b.WriteByte(' ')
		if i == len(m.Params)-1 && (p == "" || strings.ContainsRune(p, ' ') || strings.HasPrefix(p, ":")) {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Raw renders the message with the CR-LF line terminator the wire protocol
// requires.
func (m *Message) Raw() string {
	return m.String() + "\r\n"
}
