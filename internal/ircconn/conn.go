// Package ircconn is a minimal plaintext transport adapter implementing
// bot.Conn for the reference binary. The dispatch core treats connections
// as an abstract capability; anything fancier (TLS, reconnects, rate
// limiting) belongs in a replacement of this package, not in the core.
package ircconn

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/lrstanley/girc"
)

// Conn frames CRLF-delimited IRC lines over a TCP connection.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex
}

// New wraps an established connection, e.g. one from Dial or a TLS dialer.
func New(c net.Conn) *Conn {
	return &Conn{conn: c, reader: bufio.NewReader(c)}
}

// Dial connects to the given host:port.
func Dial(addr string) (*Conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return New(c), nil
}

// Send writes one protocol message. Safe for concurrent use.
func (c *Conn) Send(event *girc.Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.conn.Write(append(event.Bytes(), '\r', '\n')); err != nil {
		return fmt.Errorf("writing to %s: %w", c.conn.RemoteAddr(), err)
	}
	return nil
}

// Receive blocks until the next parsable protocol message arrives.
func (c *Conn) Receive() (*girc.Event, error) {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading from %s: %w", c.conn.RemoteAddr(), err)
		}
		if ev := girc.ParseEvent(strings.TrimRight(line, "\r\n")); ev != nil {
			return ev, nil
		}
	}
}

// Close tears down the connection, unblocking a pending Receive.
func (c *Conn) Close() error {
	return c.conn.Close()
}
