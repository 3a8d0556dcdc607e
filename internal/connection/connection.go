// Package connection implements a single IRC session: handshake, the
// reader/writer/ping-supervisor tasks, and the event stream the pool
// consumes. A Connection never talks to other connections; it only knows
// its own transport, credentials, and channels.
package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"twitchirc/login"
	"twitchirc/message"
	"twitchirc/metrics"
	"twitchirc/pkg/logger"
	"twitchirc/transport"
)

// State is a Connection's place in the Initializing -> Open -> Closed
// machine described in the connection contract.
type State int32

const (
	Initializing State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config bundles the per-connection tunables the pool computes once and
// passes to every connection it creates.
type Config struct {
	ConnectTimeout  time.Duration // handshake deadline
	PingInterval    time.Duration // idle period before a supervisor PING
	PongTimeout     time.Duration // deadline for the matching PONG
	JoinAckTimeout  time.Duration // deadline for ROOMSTATE/JOIN echo
	BusyScoreWindow time.Duration // PRIVMSG sliding window for busy_score
	OutboundBuffer  int           // outbound queue depth
}

// DefaultConfig matches the defaults named in the connection contract.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:  10 * time.Second,
		PingInterval:    4 * time.Minute,
		PongTimeout:     10 * time.Second,
		JoinAckTimeout:  10 * time.Second,
		BusyScoreWindow: 15 * time.Second,
		OutboundBuffer:  64,
	}
}

type pendingJoin struct {
	timer *time.Timer
}

// Connection owns one transport and speaks the Twitch IRC handshake over
// it. It is created already running: New spawns its goroutines and
// returns immediately, per the connection contract's "does not block the
// caller" clause.
type Connection struct {
	id     string
	cfg    Config
	dialer transport.Dialer
	creds  login.Provider
	log    logger.Logger
	met    *metrics.Bundle

	state atomic.Int32

	events chan Event
	out    chan *message.Message

	cancel context.CancelFunc
	done   chan struct{}

	mu            sync.Mutex
	joined        map[string]struct{}
	pending       map[string]*pendingJoin
	sentPrivmsgAt []time.Time

	closeErr atomic.Value // error
}

// New builds a Connection and starts its run loop in the background.
func New(id string, dialer transport.Dialer, creds login.Provider, cfg Config, met *metrics.Bundle, log logger.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:      id,
		cfg:     cfg,
		dialer:  dialer,
		creds:   creds,
		log:     logger.NewPrefixedLogger(log, id),
		met:     met,
		events:  make(chan Event, 32),
		out:     make(chan *message.Message, cfg.OutboundBuffer),
		cancel:  cancel,
		done:    make(chan struct{}),
		joined:  make(map[string]struct{}),
		pending: make(map[string]*pendingJoin),
	}
	go c.run(ctx)
	return c
}

// ID returns the connection's pool-assigned identifier, used as a
// placement tie-break and in logs.
func (c *Connection) ID() string { return c.id }

// State returns the connection's current lifecycle state.
func (c *Connection) State() State { return State(c.state.Load()) }

// Events returns the channel of lifecycle and data events. It is closed
// after the Closed event has been delivered.
func (c *Connection) Events() <-chan Event { return c.events }

// JoinedChannels returns the acknowledged-joined channel set, a copy
// safe for the caller to range over.
func (c *Connection) JoinedChannels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.joined))
	for ch := range c.joined {
		out = append(out, ch)
	}
	return out
}

// PendingChannels returns the sent-but-not-yet-acknowledged JOIN set, a
// copy safe for the caller to range over.
func (c *Connection) PendingChannels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.pending))
	for ch := range c.pending {
		out = append(out, ch)
	}
	return out
}

// ChannelCount is the acknowledged-joined count plus still-pending joins;
// the pool uses this against max_channels_per_connection.
func (c *Connection) ChannelCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.joined) + len(c.pending)
}

// BusyScore is the number of PRIVMSGs this connection has written within
// the configured sliding window.
func (c *Connection) BusyScore() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trimSentWindowLocked(time.Now())
	return len(c.sentPrivmsgAt)
}

func (c *Connection) trimSentWindowLocked(now time.Time) {
	cutoff := now.Add(-c.cfg.BusyScoreWindow)
	i := 0
	for i < len(c.sentPrivmsgAt) && c.sentPrivmsgAt[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		c.sentPrivmsgAt = c.sentPrivmsgAt[i:]
	}
}

// SendCommand enqueues m for the writer task. It returns the connection's
// terminal error, unmodified, if the connection is already Closed.
func (c *Connection) SendCommand(m *message.Message) error {
	if c.State() == Closed {
		if err, ok := c.closeErr.Load().(error); ok && err != nil {
			return err
		}
		return fmt.Errorf("connection closed")
	}
	select {
	case c.out <- m:
		return nil
	default:
	}
	// queue full: block briefly rather than drop, ordering still holds
	select {
	case c.out <- m:
		return nil
	case <-c.done:
		if err, ok := c.closeErr.Load().(error); ok && err != nil {
			return err
		}
		return fmt.Errorf("connection closed")
	}
}

// Join sends JOIN #channel and tracks it as pending-ack.
func (c *Connection) Join(channel string) error {
	c.mu.Lock()
	if _, ok := c.joined[channel]; ok {
		c.mu.Unlock()
		return nil
	}
	if _, ok := c.pending[channel]; ok {
		c.mu.Unlock()
		return nil
	}
	timer := time.AfterFunc(c.cfg.JoinAckTimeout, func() { c.onJoinTimeout(channel) })
	c.pending[channel] = &pendingJoin{timer: timer}
	c.mu.Unlock()

	return c.SendCommand(message.New("JOIN", "#"+channel))
}

// Part sends PART #channel if channel is acknowledged-joined, mirroring the
// dispatcher's part() contract. A still-pending JOIN for channel is
// forgotten (its ack timer stopped) without sending anything.
func (c *Connection) Part(channel string) error {
	c.mu.Lock()
	_, joined := c.joined[channel]
	delete(c.joined, channel)
	if p, ok := c.pending[channel]; ok {
		p.timer.Stop()
		delete(c.pending, channel)
	}
	c.mu.Unlock()
	if !joined {
		return nil
	}
	return c.SendCommand(message.New("PART", "#"+channel))
}

// Close requests graceful shutdown; run() observes ctx cancellation at
// its next suspension point.
func (c *Connection) Close() {
	c.cancel()
}

func (c *Connection) onJoinTimeout(channel string) {
	c.mu.Lock()
	_, ok := c.pending[channel]
	delete(c.pending, channel)
	c.mu.Unlock()
	if !ok {
		return
	}
	c.emit(Event{Kind: KindChannelJoinFailed, Channel: channel, Reason: &JoinTimeout{Channel: channel}})
}

func (c *Connection) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Connection) fail(err error) {
	c.closeErr.Store(err)
	c.state.Store(int32(Closed))
	c.stopPendingJoinTimers()
	c.log.Warn("connection closed", "reason", err)
	c.emit(Event{Kind: KindClosed, Reason: err})
	close(c.events)
	c.cancel()
}

// stopPendingJoinTimers stops and clears every outstanding pending-join
// timer so none can fire onJoinTimeout after c.events is closed.
func (c *Connection) stopPendingJoinTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for channel, p := range c.pending {
		p.timer.Stop()
		delete(c.pending, channel)
	}
}

// run drives one connection attempt end to end: dial, handshake, then
// reader/writer/ping-supervisor until something fatal happens.
func (c *Connection) run(ctx context.Context) {
	defer close(c.done)

	dialCtx, cancelDial := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	tr, err := c.dialer.Dial(dialCtx)
	cancelDial()
	if err != nil {
		if c.met != nil {
			c.met.ConnectionFailed()
		}
		c.fail(&ConnectError{Cause: err})
		return
	}
	defer tr.Close()

	creds, err := c.creds.GetCredentials(ctx)
	if err != nil {
		c.fail(&LoginError{Cause: err})
		return
	}

	handshakeCtx, cancelHandshake := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	err = c.handshake(handshakeCtx, tr, creds)
	cancelHandshake()
	if err != nil {
		if c.met != nil {
			c.met.ConnectionFailed()
		}
		c.fail(&ConnectError{Cause: err})
		return
	}

	if c.met != nil {
		c.met.ConnectionCreated()
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	traffic := make(chan struct{}, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := c.writerLoop(ctx, tr)
		errCh <- err
		if err != nil {
			c.cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := c.pingSupervisor(ctx, tr, traffic)
		errCh <- err
		if err != nil {
			c.cancel()
		}
	}()

	readerErr := c.readerLoop(ctx, tr, creds, traffic)

	c.cancel()
	wg.Wait()

	finalErr := readerErr
	if finalErr == nil {
		select {
		case finalErr = <-errCh:
		default:
		}
	}
	if finalErr == nil {
		finalErr = &RemoteUnexpectedlyClosedConnection{}
	}
	c.fail(finalErr)
}

func (c *Connection) handshake(ctx context.Context, tr transport.Transport, creds login.Credentials) error {
	caps := message.New("CAP", "REQ", "twitch.tv/tags twitch.tv/commands twitch.tv/membership")
	if err := tr.Send(ctx, caps); err != nil {
		return err
	}
	if creds.Token != nil {
		if err := tr.Send(ctx, message.New("PASS", "oauth:"+*creds.Token)); err != nil {
			return err
		}
	}
	return tr.Send(ctx, message.New("NICK", creds.Login))
}

func (c *Connection) writerLoop(ctx context.Context, tr transport.Transport) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-c.out:
			if !ok {
				return nil
			}
			if err := tr.Send(ctx, m); err != nil {
				return err
			}
			if c.met != nil {
				c.met.ObserveMessageSent(m.Command)
			}
			if m.Command == "PRIVMSG" {
				c.mu.Lock()
				c.sentPrivmsgAt = append(c.sentPrivmsgAt, time.Now())
				c.trimSentWindowLocked(time.Now())
				c.mu.Unlock()
			}
		}
	}
}

func (c *Connection) pingSupervisor(ctx context.Context, tr transport.Transport, traffic <-chan struct{}) error {
	idle := time.NewTimer(c.cfg.PingInterval)
	defer idle.Stop()
	pongDeadline := time.NewTimer(c.cfg.PongTimeout)
	pongDeadline.Stop()
	defer pongDeadline.Stop()
	awaitingPong := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-traffic:
			if awaitingPong {
				awaitingPong = false
				pongDeadline.Stop()
			}
			idle.Reset(c.cfg.PingInterval)

		case <-idle.C:
			if err := c.SendCommand(message.New("PING", "tmi.twitch.tv")); err != nil {
				return err
			}
			awaitingPong = true
			pongDeadline.Reset(c.cfg.PongTimeout)

		case <-pongDeadline.C:
			if awaitingPong {
				return fmt.Errorf("ping/pong liveness timeout")
			}
		}
	}
}

func (c *Connection) readerLoop(ctx context.Context, tr transport.Transport, creds login.Credentials, traffic chan<- struct{}) error {
	opened := false
	for {
		msg, err := tr.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return &RemoteUnexpectedlyClosedConnection{}
			}
			return &IncomingMessageParseError{Cause: err}
		}

		select {
		case traffic <- struct{}{}:
		default:
		}

		if c.met != nil {
			c.met.ObserveMessageReceived(msg.Command)
		}

		sm, err := message.ParseServerMessage(msg)
		if err != nil {
			return &ServerMessageParseError{Cause: err}
		}

		if !opened {
			opened = true
			c.state.Store(int32(Open))
			c.log.Info("connection ready", "login", creds.Login)
			c.emit(Event{Kind: KindReady})
		}

		if fatal := c.handleServerMessage(sm, creds); fatal != nil {
			return fatal
		}
		c.emit(Event{Kind: KindServerMessage, ServerMessage: sm})
	}
}

// handleServerMessage updates join bookkeeping and returns a non-nil
// error only when the message is itself connection-fatal (RECONNECT).
func (c *Connection) handleServerMessage(sm message.ServerMessage, creds login.Credentials) error {
	switch v := sm.(type) {
	case *message.Reconnect:
		return &ReconnectRequested{}
	case *message.RoomState:
		c.ackJoin(v.ChannelLogin)
	case *message.Join:
		if v.UserLogin == creds.Login {
			c.ackJoin(v.ChannelLogin)
		}
	case *message.Notice:
		if isTerminalJoinNotice(v.MessageID) {
			c.failJoin(v.ChannelLogin, v.MessageID)
		}
	}
	return nil
}

func isTerminalJoinNotice(msgID string) bool {
	switch msgID {
	case "msg_channel_suspended", "tos_ban", "msg_banned":
		return true
	default:
		return false
	}
}

func (c *Connection) ackJoin(channel string) {
	c.mu.Lock()
	p, pending := c.pending[channel]
	_, already := c.joined[channel]
	if !pending && !already {
		// Not a channel this connection sent a JOIN for.
		c.mu.Unlock()
		return
	}
	if pending {
		p.timer.Stop()
		delete(c.pending, channel)
	}
	c.joined[channel] = struct{}{}
	c.mu.Unlock()
	if !already {
		c.emit(Event{Kind: KindChannelJoinConfirmed, Channel: channel})
	}
}

func (c *Connection) failJoin(channel, msgID string) {
	c.mu.Lock()
	if p, ok := c.pending[channel]; ok {
		p.timer.Stop()
		delete(c.pending, channel)
	}
	delete(c.joined, channel)
	c.mu.Unlock()
	c.emit(Event{Kind: KindChannelJoinFailed, Channel: channel, Reason: &JoinFailedNotice{Channel: channel, MsgID: msgID}})
}
