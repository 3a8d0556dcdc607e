package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		command string
		params  []string
	}{
		{"simple", "PING :tmi.twitch.tv", "PING", []string{"tmi.twitch.tv"}},
		{"numeric command", "500 :Try again", "500", []string{"Try again"}},
		{"lowercase command", "ping :x", "PING", []string{"x"}},
		{"no trailing", "CAP * ACK :twitch.tv/tags", "CAP", []string{"*", "ACK", "twitch.tv/tags"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := Parse(c.line)
			require.NoError(t, err)
			assert.Equal(t, c.command, m.Command)
			assert.Equal(t, c.params, m.Params)
		})
	}
}

func TestParseRejectsEmbeddedNewline(t *testing.T) {
	_, err := Parse("PRIVMSG #a :hi\nx")
	assert.Error(t, err)
}

func TestParseDoubleSpaceInMiddleParams(t *testing.T) {
	_, err := Parse("PRIVMSG  #a :hi")
	assert.Error(t, err)
}

// Scenario 1 from the testable-properties list: a tagged PRIVMSG with a
// full prefix round-trips through the typed mapper.
func TestScenario1TagParsing(t *testing.T) {
	line := "@badge-info=;badges=;color=#FF0000;display-name=Alice;emotes=25:0-4;id=abc;room-id=1;tmi-sent-ts=1;user-id=2 :alice!alice@alice.tmi.twitch.tv PRIVMSG #bob :Kappa keepo"
	m, err := Parse(line)
	require.NoError(t, err)
	pm, err := ParsePrivmsg(m)
	require.NoError(t, err)

	assert.Equal(t, "bob", pm.ChannelLogin)
	assert.Equal(t, "alice", pm.SenderLogin)
	assert.Equal(t, "Kappa keepo", pm.Text)
	assert.False(t, pm.IsAction)
	assert.Equal(t, "#FF0000", pm.Color)
	if assert.Len(t, pm.Emotes, 1) {
		assert.Equal(t, "25", pm.Emotes[0].ID)
		assert.Equal(t, 0, pm.Emotes[0].StartIdx)
		assert.Equal(t, 4, pm.Emotes[0].EndIdx)
	}
}

// Scenario 2: ACTION stripping with an emote range that falls outside the
// stripped text must be dropped, not clamped or errored.
func TestScenario2ActionStripping(t *testing.T) {
	line := "@badges=;color=;display-name=Bob;emotes=0:7-11;id=a;room-id=1;tmi-sent-ts=1;user-id=2 :bob!bob@bob.tmi.twitch.tv PRIVMSG #chan :\x01ACTION waves\x01"
	m, err := Parse(line)
	require.NoError(t, err)
	pm, err := ParsePrivmsg(m)
	require.NoError(t, err)

	assert.Equal(t, "waves", pm.Text)
	assert.True(t, pm.IsAction)
	assert.Empty(t, pm.Emotes, "out-of-range emote ranges must be dropped")
}

// Scenario 3: empty-tag normalization and deterministic re-stringification.
func TestScenario3EmptyTagNormalization(t *testing.T) {
	m, err := Parse("@key1=;key2 PING :x")
	require.NoError(t, err)

	v, ok := m.Tag("key1")
	assert.True(t, ok)
	assert.Empty(t, v)

	v, ok = m.Tag("key2")
	assert.True(t, ok)
	assert.Empty(t, v)

	assert.Equal(t, "@key1;key2 PING :x", m.String())
}

func TestRoundTrip(t *testing.T) {
	lines := []string{
		"@badge-info=;badges=;color=#FF0000;display-name=Alice;emotes=25:0-4;id=abc;room-id=1;tmi-sent-ts=1;user-id=2 :alice!alice@alice.tmi.twitch.tv PRIVMSG #bob :Kappa keepo",
		"PING :tmi.twitch.tv",
		":tmi.twitch.tv 001 justinfan123 :Welcome",
		"CAP * ACK :twitch.tv/tags twitch.tv/commands",
		"JOIN #bob",
	}
	for _, line := range lines {
		m, err := Parse(line)
		require.NoError(t, err)
		again, err := Parse(m.String())
		require.NoError(t, err)
		assert.Equal(t, m.String(), again.String())
	}
}

func TestStringifyTrailingParamRules(t *testing.T) {
	cases := []struct {
		params []string
		want   string
	}{
		{[]string{"a", "b"}, "CMD a b"},
		{[]string{"a", "b c"}, "CMD a :b c"},
		{[]string{"a", ""}, "CMD a :"},
		{[]string{"a", ":leading"}, "CMD a ::leading"},
	}
	for _, c := range cases {
		m := &Message{Command: "CMD", Params: c.params}
		assert.Equal(t, c.want, m.String())
	}
}
