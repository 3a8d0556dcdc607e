package message

import "strings"

// Emote is one emote occurrence in a Privmsg/UserNotice's message text.
// StartIdx/EndIdx are code-point (rune) indices into the already-stripped
// text (ACTION wrapper, if any, removed), EndIdx inclusive.
type Emote struct {
	ID       string
	StartIdx int
	EndIdx   int
}

// Badge is one entry of a `badges` or `badge-info` tag, e.g.
// `subscriber/26`.
type Badge struct {
	Name    string
	Version string
}

func parseBadges(raw string) []Badge {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	badges := make([]Badge, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if i := strings.IndexByte(p, '/'); i >= 0 {
			badges = append(badges, Badge{Name: p[:i], Version: p[i+1:]})
		} else {
			badges = append(badges, Badge{Name: p})
		}
	}
	return badges
}

// parseEmotes decodes the `emotes` tag (`id:start-end,start-end/id2:...`).
// Ranges are given in UTF-16 code units against rawText (the trailing
// param before ACTION-stripping). Any range that, once adjusted for a
// stripped ACTION prefix, falls outside strippedText is dropped silently —
// a known historical Twitch bug — rather than clamped or treated as fatal.
func parseEmotes(raw, rawText, strippedText string, isAction bool) []Emote {
	if raw == "" {
		return nil
	}

	actionPrefixUnits := 0
	if isAction {
		actionPrefixUnits = utf16Len(actionWrapper)
	}
	strippedUnits := utf16Len(strippedText)

	var emotes []Emote
	for _, idGroup := range strings.Split(raw, "/") {
		colon := strings.IndexByte(idGroup, ':')
		if colon < 0 {
			continue
		}
		id := idGroup[:colon]
		for _, rng := range strings.Split(idGroup[colon+1:], ",") {
			dash := strings.IndexByte(rng, '-')
			if dash < 0 {
				continue
			}
			start, ok1 := parseUint(rng[:dash])
			end, ok2 := parseUint(rng[dash+1:])
			if !ok1 || !ok2 || end < start {
				continue
			}

			adjStart := start - actionPrefixUnits
			adjEndExclusive := end + 1 - actionPrefixUnits
			if adjStart < 0 || adjEndExclusive > strippedUnits {
				continue
			}

			runeStart, runeEndExclusive, ok := utf16RangeToRunes(strippedText, adjStart, adjEndExclusive)
			if !ok {
				continue
			}
			emotes = append(emotes, Emote{ID: id, StartIdx: runeStart, EndIdx: runeEndExclusive - 1})
		}
	}
	return emotes
}

func parseUint(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16RuneWidth(r)
	}
	return n
}

func utf16RuneWidth(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// utf16RangeToRunes converts a [start, endExclusive) UTF-16 code unit range
// into the corresponding rune index range. ok is false if either boundary
// does not land exactly on a rune boundary (which would indicate the range
// references a surrogate half, i.e. is malformed).
func utf16RangeToRunes(s string, utf16Start, utf16EndExclusive int) (runeStart, runeEndExclusive int, ok bool) {
	if utf16Start == utf16EndExclusive {
		idx, found := runeIndexAtUTF16Offset(s, utf16Start)
		return idx, idx, found
	}
	rs, foundStart := runeIndexAtUTF16Offset(s, utf16Start)
	re, foundEnd := runeIndexAtUTF16Offset(s, utf16EndExclusive)
	if !foundStart || !foundEnd {
		return 0, 0, false
	}
	return rs, re, true
}

func runeIndexAtUTF16Offset(s string, target int) (int, bool) {
	pos := 0
	idx := 0
	for _, r := range s {
		if pos == target {
			return idx, true
		}
		pos += utf16RuneWidth(r)
		idx++
	}
	return idx, pos == target
}
