package twitchirc

import (
	"context"
	"testing"
	"time"

	"twitchirc/login"
	"twitchirc/transport"
)

// blockingDialer never succeeds; it only needs to exist so
// TestConnectDoesNotBlock never touches the network while proving
// Connect returns immediately regardless of how dialing eventually goes.
type blockingDialer struct{}

func (blockingDialer) Dial(ctx context.Context) (transport.Transport, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSayGuardsCommandPrefix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello chat", ". hello chat"},
		{"slash command lookalike", "/timeout someone", ". /timeout someone"},
		{"dot command lookalike", ".ban someone", ". .ban someone"},
		{"empty string", "", ". "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := guardCommandPrefix(tc.input); got != tc.expected {
				t.Fatalf("guardCommandPrefix(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestMeGuardsPrefix(t *testing.T) {
	if got, want := guardMePrefix("waves"), "/me waves"; got != want {
		t.Fatalf("guardMePrefix(%q) = %q, want %q", "waves", got, want)
	}
}

func TestConnectDoesNotBlock(t *testing.T) {
	done := make(chan struct{})
	go func() {
		c := Connect(login.Anonymous(), WithTransport(blockingDialer{}), WithConnectTimeout(50*time.Millisecond))
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Connect+Close did not return in time")
	}
}
