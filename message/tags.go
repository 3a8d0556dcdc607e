package message

import (
	"sort"
	"strings"
)

// Tags holds the decoded key/value pairs of an IRCv3 tag list. A missing
// value and an empty value are equivalent and both normalize to "" on
// parse, so presence is tested with a plain map lookup.
type Tags map[string]string

// ParseTags splits a raw tag-list (the part between `@` and the following
// space) into decoded key/value pairs. Duplicate keys: the last one wins.
func ParseTags(raw string) Tags {
	tags := Tags{}
	for _, part := range strings.Split(raw, ";") {
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '='); i >= 0 {
			tags[part[:i]] = decodeTagValue(part[i+1:])
		} else {
			tags[part] = ""
		}
	}
	return tags
}

// String renders the tag list in deterministic (sorted) key order, with
// empty-valued tags emitted bare (no `=`).
func (t Tags) String() string {
	if len(t) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		if v := t[k]; v != "" {
			b.WriteByte('=')
			b.WriteString(encodeTagValue(v))
		}
	}
	return b.String()
}

// decodeTagValue reverses the IRCv3 tag-value escaping. An unrecognized
// escape sequence just drops the backslash; so does a dangling backslash
// at the very end of the value.
func decodeTagValue(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i == len(raw)-1 {
			break
		}
		i++
		switch raw[i] {
		case ':':
			b.WriteByte(';')
		case 's':
			b.WriteByte(' ')
		case '\\':
			b.WriteByte('\\')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

func encodeTagValue(value string) string {
	if !strings.ContainsAny(value, ";\\ \r\n") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case ';':
			b.WriteString(`\:`)
		case ' ':
			b.WriteString(`\s`)
		case '\\':
			b.WriteString(`\\`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(value[i])
		}
	}
	return b.String()
}
