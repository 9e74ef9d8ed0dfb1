package realtime

import (
	"sync"

	"github.com/SteamVC/realtime/internal/auth"
)

// DefaultSendBuffer is the per-connection outbound queue length.
const DefaultSendBuffer = 256

// Conn is one authenticated real-time connection as seen by the hub. The
// transport drains Send and stops when Done is closed.
type Conn struct {
	id        string
	principal auth.Principal
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewConn creates a connection with a bounded outbound queue.
func NewConn(id string, p auth.Principal, buffer int) *Conn {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Conn{
		id:        id,
		principal: p,
		send:      make(chan []byte, buffer),
		done:      make(chan struct{}),
	}
}

// ID returns the connection id.
func (c *Conn) ID() string                { return c.id }
// Principal returns the authenticated user behind the connection.
func (c *Conn) Principal() auth.Principal { return c.principal }
// UserID is shorthand for Principal().UserId.
func (c *Conn) UserID() string            { return c.principal.UserId }

// Send returns the queue of encoded frames waiting to be written.
func (c *Conn) Send() <-chan []byte { return c.send }

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Close marks the connection closed. It is safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// enqueue never blocks. A full queue means the client is not keeping up, so
// the connection is closed instead of stalling the sender.
func (c *Conn) enqueue(frame []byte) (delivered, evicted bool) {
	if c.Closed() {
		return false, false
	}
	select {
	case c.send <- frame:
		return true, false
	default:
		c.Close()
		return false, true
	}
}
