package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTagValue(t *testing.T) {
	cases := map[string]string{
		`a\sb`:   "a b",
		`a\:b`:   "a;b",
		`a\\b`:   `a\b`,
		`a\rb`:   "a\rb",
		`a\nb`:   "a\nb",
		`a\qb`:   "aqb",
		`trail\`: "trail",
	}
	for in, want := range cases {
		assert.Equal(t, want, decodeTagValue(in), "decodeTagValue(%q)", in)
	}
}

func TestEncodeTagValue(t *testing.T) {
	cases := map[string]string{
		"a b":  `a\sb`,
		"a;b":  `a\:b`,
		`a\b`:  `a\\b`,
		"a\rb": `a\rb`,
		"a\nb": `a\nb`,
		"ab":   "ab",
	}
	for in, want := range cases {
		assert.Equal(t, want, encodeTagValue(in), "encodeTagValue(%q)", in)
	}
}

func TestParseTagsDuplicateKeyLastWins(t *testing.T) {
	tags := ParseTags("a=1;a=2")
	assert.Equal(t, "2", tags["a"])
}

func TestTagsStringSortedKeys(t *testing.T) {
	tags := Tags{"zeta": "1", "alpha": "2", "mid": ""}
	assert.Equal(t, "alpha=2;mid;zeta=1", tags.String())
}
