package bot

import "github.com/lrstanley/girc"

// Conn is the framework's view of one server connection. The actual socket
// handling, TLS, and line framing live outside the core; anything that can
// deliver parsed IRC events and accept them for sending qualifies.
//
// Receive is called from a single goroutine per connection; Send may be
// called concurrently and implementations must tolerate that.
type Conn interface {
	// Send writes one protocol message to the server.
	Send(event *girc.Event) error

	// Receive blocks until the next protocol message arrives. It returns an
	// error when the connection is closed or broken, which ends the receive
	// loop for this server.
	Receive() (*girc.Event, error)

	// Close tears down the connection, unblocking any pending Receive.
	Close() error
}
