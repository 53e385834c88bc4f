package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-relay/domain/event"

	"github.com/gorilla/websocket"
)

var (
	errConnClosed     = fmt.Errorf("connection closed")
	errSendBufferFull = fmt.Errorf("send buffer full")
)

const writeTimeout = 10 * time.Second

// Conn wraps one websocket connection. Outbound events go through a buffered
// channel consumed by a single writer goroutine, so Deliver never blocks the
// engine and concurrent writes never interleave on the socket.
type Conn struct {
	log       *slog.Logger
	ws        *websocket.Conn
	send      chan event.Outbound
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(log *slog.Logger, ws *websocket.Conn, bufferSize int) *Conn {
	return &Conn{
		log:  log,
		ws:   ws,
		send: make(chan event.Outbound, bufferSize),
		done: make(chan struct{}),
	}
}

// Deliver implements contract.Connection. A full buffer counts as a failed
// delivery: the engine drops, it never queues beyond the buffer.
func (c *Conn) Deliver(_ context.Context, e event.Outbound) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	select {
	case c.send <- e:
		return nil
	case <-c.done:
		return errConnClosed
	default:
		return errSendBufferFull
	}
}

// writePump is the single writer goroutine for this socket.
func (c *Conn) writePump() {
	defer func() {
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case e := <-c.send:
			envelope, err := encodeOutbound(e)
			if err != nil {
				c.log.Error("Outbound encoding failed", "kind", e.Kind(), "error", err)
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteJSON(envelope); err != nil {
				c.log.Debug("Socket write failed", "error", err)
				return
			}
		}
	}
}

// close is idempotent; the websocket itself is closed by the write pump.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
