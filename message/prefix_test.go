package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrefix(t *testing.T) {
	cases := []struct {
		in   string
		want Prefix
	}{
		{"nick", Prefix{Name: "nick"}},
		{"nick@host", Prefix{Name: "nick", Host: "host"}},
		{"nick!user@host", Prefix{Name: "nick", User: "user", Host: "host"}},
		{"tmi.twitch.tv", Prefix{Name: "tmi.twitch.tv", IsServer: true}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParsePrefix(c.in), "ParsePrefix(%q)", c.in)
	}
}

func TestPrefixStringDropsDanglingUser(t *testing.T) {
	p := Prefix{Name: "nick", User: "user"}
	assert.Equal(t, "nick", p.String(), "dangling user must be dropped")
}

func TestPrefixStringRoundTrip(t *testing.T) {
	cases := []string{"nick", "nick@host", "nick!user@host", "tmi.twitch.tv"}
	for _, in := range cases {
		assert.Equal(t, in, ParsePrefix(in).String())
	}
}
