package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is the minimal connection surface the hub writes to. *gorilla/websocket
// connections are adapted by wsConn; tests substitute in-memory fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// sendQueueSize bounds the per-client outbound buffer. A client that falls
// this far behind is dropped rather than allowed to stall the broadcaster.
const sendQueueSize = 64

// Client is one connected subscriber. Channel membership lives in the hub;
// the client owns only its identity and outbound queue.
type Client struct {
	ID   string
	conn Conn

	send chan []byte
	once sync.Once
	done chan struct{}
}

func newClient(conn Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// writePump drains the send queue onto the connection. It exits when the
// client is closed or a write fails; the hub handles the cleanup either way.
func (c *Client) writePump(onError func(*Client, error)) {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteMessage(textMessage, msg); err != nil {
				onError(c, err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue offers a message without blocking. It reports false when the queue
// is full or the client is already closed.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close tears the client down exactly once.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
