package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"twitchirc/internal/connection"
	"twitchirc/login"
	"twitchirc/message"
	"twitchirc/pkg/logger"
	"twitchirc/transport"
)

// fakeTransport is a minimal in-memory Transport: every JOIN it sees is
// immediately ack'd with a ROOMSTATE, which is enough to exercise
// placement without a real server.
type fakeTransport struct {
	mu     sync.Mutex
	in     chan *message.Message
	closed chan struct{}
	once   bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{in: make(chan *message.Message, 32), closed: make(chan struct{})}
}

func (f *fakeTransport) Receive(ctx context.Context) (*message.Message, error) {
	select {
	case m := <-f.in:
		return m, nil
	case <-f.closed:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) Send(ctx context.Context, m *message.Message) error {
	if m.Command == "JOIN" {
		channel := m.Params[0]
		go func() {
			reply := (&message.Message{Command: "ROOMSTATE", Params: []string{channel}}).WithTag("room-id", "1")
			select {
			case f.in <- reply:
			case <-f.closed:
			}
		}()
	}
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.once {
		f.once = true
		close(f.closed)
	}
	return nil
}

// fakeDialer hands out a fresh fakeTransport per Dial call, recording how
// many connections were actually opened.
type fakeDialer struct {
	mu     sync.Mutex
	dialed int
}

func (d *fakeDialer) Dial(ctx context.Context) (transport.Transport, error) {
	d.mu.Lock()
	d.dialed++
	d.mu.Unlock()
	return newFakeTransport(), nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialed
}

type testLogger struct{}

func (testLogger) SetLogLevel(string)                    {}
func (testLogger) GetLogLevel() string                   { return "info" }
func (testLogger) Trace(string, ...any)                  {}
func (testLogger) Debug(string, ...any)                  {}
func (testLogger) Info(string, ...any)                   {}
func (testLogger) Warn(string, ...any)                   {}
func (testLogger) Error(string, error, ...any)           {}
func (testLogger) Fatal(string, error, ...any)           {}
func (testLogger) With(...any) logger.Logger             { return testLogger{} }

func newTestPool(t *testing.T, maxChannels int) (*Pool, *fakeDialer) {
	t.Helper()
	dialer := &fakeDialer{}
	cfg := DefaultConfig()
	cfg.MaxChannelsPerConnection = maxChannels
	cfg.NewConnectionEvery = time.Millisecond
	cfg.MaxInitiatingConnections = 10
	cfg.RetryInterval = 20 * time.Millisecond
	connCfg := connection.DefaultConfig()
	connCfg.ConnectTimeout = time.Second
	connCfg.JoinAckTimeout = time.Second

	p := New(dialer, login.NewStatic("testbot", nil), cfg, connCfg, nil, testLogger{})
	t.Cleanup(p.Close)
	return p, dialer
}

func drainUntilJoined(t *testing.T, p *Pool, channel string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if p.GetChannelStatus(channel).JoinedOnServer {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s to join", channel)
		}
	}
}

func TestPoolScalesAcrossConnections(t *testing.T) {
	p, dialer := newTestPool(t, 2)

	for _, ch := range []string{"a", "b", "c", "d"} {
		if err := p.Join(ch); err != nil {
			t.Fatalf("Join(%s): %v", ch, err)
		}
	}
	for _, ch := range []string{"a", "b", "c", "d"} {
		drainUntilJoined(t, p, ch)
	}

	if got := dialer.count(); got != 2 {
		t.Fatalf("expected exactly 2 connections for 4 channels at max 2 each, got %d", got)
	}
}

func TestPoolJoinIsIdempotent(t *testing.T) {
	p, _ := newTestPool(t, 90)

	if err := p.Join("bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := p.Join("bob"); err != nil {
		t.Fatalf("second Join: %v", err)
	}
	drainUntilJoined(t, p, "bob")
	status := p.GetChannelStatus("bob")
	if !status.Wanted || !status.JoinedOnServer {
		t.Fatalf("expected bob wanted+joined, got %+v", status)
	}
}

func TestPoolSayFailsWhenNotJoined(t *testing.T) {
	p, _ := newTestPool(t, 90)

	err := p.Say("nope", "hello")
	if err == nil {
		t.Fatal("expected CannotSendMessage, got nil")
	}
	csm, ok := err.(*CannotSendMessage)
	if !ok {
		t.Fatalf("expected *CannotSendMessage, got %T", err)
	}
	if csm.Reason != NotJoined {
		t.Fatalf("expected NotJoined reason, got %v", csm.Reason)
	}
}

func TestPoolSaySucceedsAfterJoin(t *testing.T) {
	p, _ := newTestPool(t, 90)

	if err := p.Join("bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	drainUntilJoined(t, p, "bob")

	if err := p.Say("bob", "Kappa"); err != nil {
		t.Fatalf("Say: %v", err)
	}
}

func TestPoolSetWantedChannelsIsIdempotent(t *testing.T) {
	p, dialer := newTestPool(t, 90)

	if err := p.SetWantedChannels([]string{"a", "b"}); err != nil {
		t.Fatalf("SetWantedChannels: %v", err)
	}
	drainUntilJoined(t, p, "a")
	drainUntilJoined(t, p, "b")
	dialedAfterFirst := dialer.count()

	if err := p.SetWantedChannels([]string{"a", "b"}); err != nil {
		t.Fatalf("second SetWantedChannels: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if got := dialer.count(); got != dialedAfterFirst {
		t.Fatalf("expected no new connections on repeated set_wanted_channels, dialed %d -> %d", dialedAfterFirst, got)
	}
}
