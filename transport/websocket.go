package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	"twitchirc/message"
)

// WSDialer opens Twitch's WebSocket chat endpoint. Each WS text frame is
// treated as exactly one IRC line; a text frame containing more than one
// line is rejected rather than silently split, per the transport's
// framing contract.
type WSDialer struct {
	URL string // default "wss://irc-ws.chat.twitch.tv"
}

func NewWSDialer() *WSDialer {
	return &WSDialer{URL: "wss://irc-ws.chat.twitch.tv"}
}

func (d *WSDialer) Dial(ctx context.Context) (Transport, error) {
	addr := d.URL
	if addr == "" {
		addr = "wss://irc-ws.chat.twitch.tv"
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", addr, err)
	}
	return &wsTransport{conn: conn}, nil
}

type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) Receive(ctx context.Context) (*message.Message, error) {
	type result struct {
		kind int
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		kind, data, err := t.conn.ReadMessage()
		done <- result{kind, data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if r.kind != websocket.TextMessage {
			return nil, fmt.Errorf("websocket: unexpected frame type %d", r.kind)
		}
		text := strings.TrimRight(string(r.data), "\r\n")
		if strings.ContainsAny(text, "\r\n") {
			return nil, fmt.Errorf("websocket: text frame contains more than one IRC line")
		}
		return message.Parse(text)
	}
}

func (t *wsTransport) Send(ctx context.Context, m *message.Message) error {
	return t.conn.WriteMessage(websocket.TextMessage, []byte(m.String()))
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
