// Package pool implements the connection pool / dispatcher: it presents
// one virtual connection with unbounded channel capacity by fanning
// wanted channels out across however many physical connections the
// placement algorithm decides it needs.
package pool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"twitchirc/internal/connection"
	"twitchirc/login"
	"twitchirc/message"
	"twitchirc/metrics"
	"twitchirc/pkg/logger"
	"twitchirc/transport"
)

// Config bundles the dispatcher's enumerated options (spec §4.4).
type Config struct {
	MaxChannelsPerConnection        int
	MaxWaitingMessagesPerConnection int
	NewConnectionEvery              time.Duration
	MaxInitiatingConnections        int
	ConnectTimeout                  time.Duration
	TimePerMessage                  time.Duration
	TracingIdentifier               string
	RemovedChannelTTL               time.Duration
	RetryInterval                   time.Duration
}

// DefaultConfig matches the defaults named in spec §4.4.
func DefaultConfig() Config {
	return Config{
		MaxChannelsPerConnection:        90,
		MaxWaitingMessagesPerConnection: 5,
		NewConnectionEvery:              2 * time.Second,
		MaxInitiatingConnections:        3,
		ConnectTimeout:                  10 * time.Second,
		TimePerMessage:                  1500 * time.Millisecond,
		RemovedChannelTTL:               30 * time.Second,
		RetryInterval:                   2 * time.Second,
	}
}

// Pool is the dispatcher: the single task that owns wanted_channels and
// the connection list, driven by a command queue in and an event queue
// out, exactly as spec §5's concurrency model requires.
type Pool struct {
	cfg    Config
	dialer transport.Dialer
	creds  login.Provider
	met    *metrics.Bundle
	log    logger.Logger

	connCfg     connection.Config
	connLimiter *rate.Limiter
	removed     *removedChannels

	cmds      chan any
	connEvent chan connEventMsg
	events    chan Event

	done   chan struct{}
	cancel context.CancelFunc

	// State below is only ever touched from run(), the single dispatcher
	// goroutine; no mutex needed.
	conns           map[string]*connection.Connection
	wantedChannels  map[string]struct{}
	channelConn     map[string]string // channel -> connection id hosting it
	pendingRetry    map[string]struct{}
	failedThisRound map[string]map[string]struct{} // channel -> set of conn ids that already failed it
	nextConnID      int
	whisperConnID   string
}

// New builds a Pool and starts its dispatcher loop in the background.
func New(dialer transport.Dialer, creds login.Provider, cfg Config, connCfg connection.Config, met *metrics.Bundle, log logger.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	if cfg.TracingIdentifier != "" {
		log = log.With("tracing_identifier", cfg.TracingIdentifier)
	}
	p := &Pool{
		cfg:             cfg,
		dialer:          dialer,
		creds:           creds,
		met:             met,
		log:             log.With("component", "pool"),
		connCfg:         connCfg,
		connLimiter:     rate.NewLimiter(rate.Every(cfg.NewConnectionEvery), cfg.MaxInitiatingConnections),
		removed:         newRemovedChannels(cfg.RemovedChannelTTL),
		cmds:            make(chan any, 128),
		connEvent:       make(chan connEventMsg, 256),
		events:          make(chan Event, 256),
		done:            make(chan struct{}),
		cancel:          cancel,
		conns:           make(map[string]*connection.Connection),
		wantedChannels:  make(map[string]struct{}),
		channelConn:     make(map[string]string),
		pendingRetry:    make(map[string]struct{}),
		failedThisRound: make(map[string]map[string]struct{}),
	}
	go p.run(ctx)
	return p
}

// Events returns the consumer-facing event stream.
func (p *Pool) Events() <-chan Event { return p.events }

// Join validates and adds a channel to wanted_channels; a no-op if it is
// already wanted.
func (p *Pool) Join(channel string) error {
	if err := message.ValidateChannelLogin(channel); err != nil {
		return err
	}
	p.send(cmdJoin{channel: channel})
	return nil
}

// Part removes a channel from wanted_channels and parts it on whichever
// connection has it joined.
func (p *Pool) Part(channel string) error {
	if err := message.ValidateChannelLogin(channel); err != nil {
		return err
	}
	p.send(cmdPart{channel: channel})
	return nil
}

// SetWantedChannels atomically replaces wanted_channels, validating every
// name up front (all-or-nothing) before diffing against the current set.
func (p *Pool) SetWantedChannels(channels []string) error {
	for _, ch := range channels {
		if err := message.ValidateChannelLogin(ch); err != nil {
			return err
		}
	}
	reply := make(chan error, 1)
	p.send(cmdSetWantedChannels{channels: channels, reply: reply})
	return <-reply
}

// Say enqueues a PRIVMSG on whichever connection has channel joined. text
// is sent exactly as given; callers wanting the command-injection guard or
// the /me convention apply it before calling Say (see the root package).
func (p *Pool) Say(channel, text string) error {
	return p.say(channel, text, "")
}

// SayInReplyTo enqueues a threaded PRIVMSG reply.
func (p *Pool) SayInReplyTo(channel, replyParentMsgID, text string) error {
	return p.say(channel, text, replyParentMsgID)
}

func (p *Pool) say(channel, text, replyParent string) error {
	if err := message.ValidateChannelLogin(channel); err != nil {
		return err
	}
	reply := make(chan error, 1)
	p.send(cmdSay{channel: channel, text: text, replyParent: replyParent, reply: reply})
	return <-reply
}

// SendMessage is the escape hatch: it chooses the least-busy non-full
// connection regardless of channel membership.
func (p *Pool) SendMessage(m *message.Message) error {
	reply := make(chan error, 1)
	p.send(cmdSendMessage{msg: m, reply: reply})
	return <-reply
}

// GetChannelStatus reports whether channel is wanted and whether it is
// acknowledged-joined on a live connection.
func (p *Pool) GetChannelStatus(channel string) ChannelStatus {
	reply := make(chan ChannelStatus, 1)
	p.send(cmdGetChannelStatus{channel: channel, reply: reply})
	return <-reply
}

// Close requests graceful shutdown of every connection and stops the
// event stream once they have all drained.
func (p *Pool) Close() {
	reply := make(chan struct{})
	p.send(cmdClose{reply: reply})
	<-reply
	<-p.done
}

func (p *Pool) send(cmd any) {
	select {
	case p.cmds <- cmd:
	case <-p.done:
	}
}

func (p *Pool) emit(ev Event) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}

func (p *Pool) run(ctx context.Context) {
	defer close(p.done)
	defer close(p.events)

	retryTicker := time.NewTicker(p.cfg.RetryInterval)
	defer retryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			return

		case cmd := <-p.cmds:
			if closing := p.handleCommand(ctx, cmd); closing {
				p.shutdown()
				return
			}

		case em := <-p.connEvent:
			p.handleConnEvent(em)

		case <-retryTicker.C:
			p.retryPending(ctx)
		}
	}
}

func (p *Pool) handleCommand(ctx context.Context, cmd any) (closing bool) {
	switch v := cmd.(type) {
	case cmdJoin:
		p.joinLocked(ctx, v.channel)

	case cmdPart:
		p.partLocked(v.channel)

	case cmdSetWantedChannels:
		p.setWantedLocked(ctx, v.channels)
		v.reply <- nil

	case cmdSay:
		v.reply <- p.sayLocked(v)

	case cmdSendMessage:
		v.reply <- p.sendMessageLocked(v.msg)

	case cmdGetChannelStatus:
		_, wanted := p.wantedChannels[v.channel]
		_, joined := p.channelConn[v.channel]
		v.reply <- ChannelStatus{Wanted: wanted, JoinedOnServer: joined}

	case cmdClose:
		close(v.reply)
		return true
	}
	return false
}

func (p *Pool) joinLocked(ctx context.Context, channel string) {
	if _, ok := p.wantedChannels[channel]; ok {
		return
	}
	p.wantedChannels[channel] = struct{}{}
	p.removed.clear(channel)
	p.placeChannel(ctx, channel)
}

func (p *Pool) partLocked(channel string) {
	delete(p.wantedChannels, channel)
	delete(p.pendingRetry, channel)
	delete(p.failedThisRound, channel)
	if connID, ok := p.channelConn[channel]; ok {
		if c, ok := p.conns[connID]; ok {
			c.Part(channel)
		}
		delete(p.channelConn, channel)
	}
}

func (p *Pool) setWantedLocked(ctx context.Context, channels []string) {
	newSet := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		newSet[ch] = struct{}{}
	}
	for ch := range p.wantedChannels {
		if _, ok := newSet[ch]; !ok {
			p.partLocked(ch)
		}
	}
	// Deterministic join order keeps set_wanted_channels reproducible in
	// tests.
	sorted := make([]string, 0, len(newSet))
	for ch := range newSet {
		sorted = append(sorted, ch)
	}
	sort.Strings(sorted)
	for _, ch := range sorted {
		p.joinLocked(ctx, ch)
	}
}

func (p *Pool) sayLocked(v cmdSay) error {
	connID, ok := p.channelConn[v.channel]
	if !ok {
		return &CannotSendMessage{Channel: v.channel, Reason: NotJoined}
	}
	c, ok := p.conns[connID]
	if !ok {
		return &CannotSendMessage{Channel: v.channel, Reason: NotJoined}
	}

	m := message.New("PRIVMSG", "#"+v.channel, v.text)
	if v.replyParent != "" {
		m.WithTag("reply-parent-msg-id", v.replyParent)
	}
	return c.SendCommand(m)
}

func (p *Pool) sendMessageLocked(m *message.Message) error {
	var best *connection.Connection
	for _, c := range p.conns {
		if c.State() == connection.Closed {
			continue
		}
		if c.ChannelCount() >= p.cfg.MaxChannelsPerConnection {
			continue
		}
		if best == nil || c.BusyScore() < best.BusyScore() {
			best = c
		}
	}
	if best == nil {
		return fmt.Errorf("no connection available to send message")
	}
	return best.SendCommand(m)
}

// placeChannel runs the placement algorithm for one channel: place on an
// existing connection, create a new one, or enqueue for retry.
func (p *Pool) placeChannel(ctx context.Context, channel string) {
	if _, stillWanted := p.wantedChannels[channel]; !stillWanted {
		return
	}
	excluded := p.failedThisRound[channel]
	live := make([]*connection.Connection, 0, len(p.conns))
	for id, c := range p.conns {
		if c.State() == connection.Closed {
			continue
		}
		if _, failed := excluded[id]; failed {
			continue
		}
		live = append(live, c)
	}

	result := p.choosePlacement(live)
	switch {
	case result.conn != nil:
		delete(p.pendingRetry, channel)
		result.conn.Join(channel)
	case result.createNew:
		delete(p.pendingRetry, channel)
		c := p.createConnection(ctx)
		c.Join(channel)
	default:
		p.pendingRetry[channel] = struct{}{}
	}
}

func (p *Pool) createConnection(ctx context.Context) *connection.Connection {
	p.nextConnID++
	id := fmt.Sprintf("conn-%d", p.nextConnID)
	c := connection.New(id, p.dialer, p.creds, p.connCfg, p.met, p.log)
	p.conns[id] = c
	go p.forwardConnEvents(ctx, id, c)
	return c
}

func (p *Pool) forwardConnEvents(ctx context.Context, id string, c *connection.Connection) {
	for ev := range c.Events() {
		select {
		case p.connEvent <- connEventMsg{connID: id, event: ev}:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) handleConnEvent(em connEventMsg) {
	switch em.event.Kind {
	case connection.KindReady:
		if p.whisperConnID == "" {
			p.whisperConnID = em.connID
		}

	case connection.KindChannelJoinConfirmed:
		channel := em.event.Channel
		_, stillWanted := p.wantedChannels[channel]
		if !stillWanted || p.removed.isRecentlyRemoved(channel) {
			// Stale confirm for a channel removed (possibly by a terminal
			// NOTICE on another connection) since this JOIN was sent; part
			// it back out rather than resurrecting channelConn.
			if c, ok := p.conns[em.connID]; ok {
				c.Part(channel)
			}
			return
		}
		p.channelConn[channel] = em.connID
		delete(p.failedThisRound, channel)

	case connection.KindChannelJoinFailed:
		p.failedThisRound[em.event.Channel] = addFailed(p.failedThisRound[em.event.Channel], em.connID)
		if _, terminal := em.event.Reason.(*connection.JoinFailedNotice); terminal {
			delete(p.wantedChannels, em.event.Channel)
			delete(p.channelConn, em.event.Channel)
			p.removed.mark(em.event.Channel)
			p.emit(Event{Kind: KindChannelJoinFailed, Channel: em.event.Channel, Reason: em.event.Reason})
			return
		}
		// Timeout: re-place on another connection.
		p.placeChannel(context.Background(), em.event.Channel)

	case connection.KindServerMessage:
		if _, isWhisper := em.event.ServerMessage.(*message.Whisper); isWhisper && em.connID != p.whisperConnID {
			return
		}
		p.emit(Event{Kind: KindServerMessage, ServerMessage: em.event.ServerMessage})

	case connection.KindClosed:
		p.onConnectionClosed(em.connID)
	}
}

func addFailed(set map[string]struct{}, id string) map[string]struct{} {
	if set == nil {
		set = make(map[string]struct{})
	}
	set[id] = struct{}{}
	return set
}

// onConnectionClosed migrates every channel the dead connection owned
// back through placement, preserving acknowledgment elsewhere.
func (p *Pool) onConnectionClosed(id string) {
	c, ok := p.conns[id]
	if !ok {
		return
	}
	delete(p.conns, id)
	if p.whisperConnID == id {
		p.whisperConnID = ""
	}
	if p.met != nil {
		p.met.SetConnectionsOpen(float64(len(p.conns)))
	}

	owned := append(c.JoinedChannels(), c.PendingChannels()...)
	for _, ch := range owned {
		if owner, ok := p.channelConn[ch]; ok && owner == id {
			delete(p.channelConn, ch)
		}
		if _, stillWanted := p.wantedChannels[ch]; stillWanted {
			p.placeChannel(context.Background(), ch)
		}
	}
}

func (p *Pool) retryPending(ctx context.Context) {
	for ch := range p.pendingRetry {
		p.placeChannel(ctx, ch)
	}
	for ch := range p.failedThisRound {
		// Give every connection another chance after a full retry pass.
		delete(p.failedThisRound, ch)
	}
}

func (p *Pool) shutdown() {
	var wg sync.WaitGroup
	for _, c := range p.conns {
		c.Close()
	}
	for _, c := range p.conns {
		wg.Add(1)
		go func(c *connection.Connection) {
			defer wg.Done()
			for range c.Events() {
			}
		}(c)
	}
	wg.Wait()
}
