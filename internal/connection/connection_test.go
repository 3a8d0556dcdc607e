package connection

import (
	"context"
	"testing"
	"time"

	"twitchirc/login"
	"twitchirc/message"
	"twitchirc/pkg/logger"
	"twitchirc/transport"
)

// fakeTransport is an in-memory Transport driven entirely by the test: Send
// calls are recorded, and Receive yields whatever the test pushes onto in.
type fakeTransport struct {
	in        chan *message.Message
	sent      chan *message.Message
	closed    chan struct{}
	closeOnce bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan *message.Message, 16),
		sent:   make(chan *message.Message, 16),
		closed: make(chan struct{}),
	}
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
	select {
	case f.sent <- m:
	default:
	}
	return nil
}

func (f *fakeTransport) Close() error {
	if !f.closeOnce {
		f.closeOnce = true
		close(f.closed)
	}
	return nil
}

type fakeDialer struct {
	tr *fakeTransport
}

func (d *fakeDialer) Dial(ctx context.Context) (transport.Transport, error) {
	return d.tr, nil
}

// testLogger discards everything; the connection tests only care about
// the event stream, not log output.
type testLogger struct{}

func (testLogger) SetLogLevel(string)           {}
func (testLogger) GetLogLevel() string          { return "info" }
func (testLogger) Trace(string, ...any)         {}
func (testLogger) Debug(string, ...any)         {}
func (testLogger) Info(string, ...any)          {}
func (testLogger) Warn(string, ...any)          {}
func (testLogger) Error(string, error, ...any)  {}
func (testLogger) Fatal(string, error, ...any)  {}
func (testLogger) With(...any) logger.Logger    { return testLogger{} }

func newJoin(channel, who string) *message.Message {
	m := message.New("JOIN", "#"+channel)
	m.Prefix = &message.Prefix{Name: who}
	return m
}

func newRoomState(channel string) *message.Message {
	return (&message.Message{Command: "ROOMSTATE", Params: []string{"#" + channel}}).WithTag("room-id", "1")
}

func TestConnectionReachesOpenAfterHandshake(t *testing.T) {
	tr := newFakeTransport()
	creds := login.NewStatic("testbot", nil)
	cfg := DefaultConfig()
	cfg.ConnectTimeout = time.Second
	c := newTestConnection(tr, creds, cfg)
	defer c.Close()

	// Let the handshake writes land, then simulate the server's first
	// frame (spec's alternative to waiting on a literal 001).
	waitForSend(t, tr, "CAP")
	waitForSend(t, tr, "NICK")
	tr.in <- newRoomState("bob")

	ev := waitForEvent(t, c, KindReady)
	if ev.Kind != KindReady {
		t.Fatalf("expected Ready, got %v", ev.Kind)
	}
}

func TestConnectionJoinAck(t *testing.T) {
	tr := newFakeTransport()
	creds := login.NewStatic("testbot", nil)
	cfg := DefaultConfig()
	cfg.ConnectTimeout = time.Second
	cfg.JoinAckTimeout = 2 * time.Second
	c := newTestConnection(tr, creds, cfg)
	defer c.Close()

	waitForSend(t, tr, "NICK")
	tr.in <- newRoomState("bob")
	waitForEvent(t, c, KindReady)

	if err := c.Join("bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	waitForSend(t, tr, "JOIN")

	tr.in <- newJoin("bob", "testbot")
	ev := waitForEvent(t, c, KindChannelJoinConfirmed)
	if ev.Channel != "bob" {
		t.Fatalf("expected channel bob, got %q", ev.Channel)
	}
	if got := c.ChannelCount(); got != 1 {
		t.Fatalf("expected channel count 1, got %d", got)
	}
}

func TestConnectionJoinTimeout(t *testing.T) {
	tr := newFakeTransport()
	creds := login.NewStatic("testbot", nil)
	cfg := DefaultConfig()
	cfg.ConnectTimeout = time.Second
	cfg.JoinAckTimeout = 30 * time.Millisecond
	c := newTestConnection(tr, creds, cfg)
	defer c.Close()

	waitForSend(t, tr, "NICK")
	tr.in <- newRoomState("elsewhere")
	waitForEvent(t, c, KindReady)

	if err := c.Join("bob"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	waitForSend(t, tr, "JOIN")

	ev := waitForEvent(t, c, KindChannelJoinFailed)
	if _, ok := ev.Reason.(*JoinTimeout); !ok {
		t.Fatalf("expected JoinTimeout, got %T", ev.Reason)
	}
}

func TestConnectionReconnectRequestedIsFatal(t *testing.T) {
	tr := newFakeTransport()
	creds := login.NewStatic("testbot", nil)
	cfg := DefaultConfig()
	cfg.ConnectTimeout = time.Second
	c := newTestConnection(tr, creds, cfg)

	waitForSend(t, tr, "NICK")
	tr.in <- newRoomState("bob")
	waitForEvent(t, c, KindReady)

	tr.in <- &message.Message{Command: "RECONNECT"}
	ev := waitForEvent(t, c, KindClosed)
	if _, ok := ev.Reason.(*ReconnectRequested); !ok {
		t.Fatalf("expected ReconnectRequested, got %T (%v)", ev.Reason, ev.Reason)
	}
}

// newTestConnection builds a Connection whose Dialer is a fakeDialer that
// hands back tr on every Dial.
func newTestConnection(tr *fakeTransport, creds login.Provider, cfg Config) *Connection {
	return New("test-conn", &fakeDialer{tr: tr}, creds, cfg, nil, testLogger{})
}

func waitForSend(t *testing.T, tr *fakeTransport, command string) *message.Message {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-tr.sent:
			if m.Command == command {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting to send %s", command)
		}
	}
}

func waitForEvent(t *testing.T, c *Connection, kind Kind) Event {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				t.Fatalf("event stream closed waiting for kind %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %v", kind)
		}
	}
}
