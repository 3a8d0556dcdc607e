package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"twitchirc/message"
)

// TCPDialer opens a line-framed TLS connection to Twitch's IRC server,
// grounded in the teacher's own tls.Dial-based connectAndListen.
type TCPDialer struct {
	Addr      string // default "irc.chat.twitch.tv:6697"
	TLSConfig *tls.Config
}

func NewTCPDialer() *TCPDialer {
	return &TCPDialer{Addr: "irc.chat.twitch.tv:6697"}
}

func (d *TCPDialer) Dial(ctx context.Context) (Transport, error) {
	addr := d.Addr
	if addr == "" {
		addr = "irc.chat.twitch.tv:6697"
	}
	tlsCfg := d.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp dial %s: %w", addr, err)
	}

	tlsConn := tls.Client(conn, tlsCfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake %s: %w", addr, err)
	}

	return &tcpTransport{conn: tlsConn, reader: bufio.NewReader(tlsConn)}, nil
}

type tcpTransport struct {
	conn   net.Conn
	reader *bufio.Reader
}

func (t *tcpTransport) Receive(ctx context.Context) (*message.Message, error) {
	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := t.reader.ReadString('\n')
		done <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return message.Parse(strings.TrimRight(r.line, "\r\n"))
	}
}

func (t *tcpTransport) Send(ctx context.Context, m *message.Message) error {
	if deadline, ok := ctx.Deadline(); ok {
		t.conn.SetWriteDeadline(deadline)
		defer t.conn.SetWriteDeadline(time.Time{})
	}
	_, err := t.conn.Write([]byte(m.Raw()))
	return err
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}
