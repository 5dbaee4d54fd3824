// internal/server/client.go
package server

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bingohall/server/internal/room"
)

const (
	// outBufferSize bounds how many undelivered events a slow client may
	// accumulate before newer ones are dropped.
	outBufferSize = 32
	writeTimeout  = 10 * time.Second
)

// client is the transport state for one WebSocket connection. The room
// layer never sees it; events reach the connection through the buffered out
// channel so broadcasts stay non-blocking and per-connection FIFO.
type client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	out    chan room.Event
	cancel context.CancelFunc
}

func newClient(conn *websocket.Conn, cancel context.CancelFunc) *client {
	return &client{
		id:     uuid.New(),
		conn:   conn,
		out:    make(chan room.Event, outBufferSize),
		cancel: cancel,
	}
}

// send enqueues an event without blocking. Invoked while a room lock is
// held, so it must never wait on the socket; overflow drops the event.
func (c *client) send(ev room.Event) {
	select {
	case c.out <- ev:
	default:
		logrus.WithFields(logrus.Fields{"conn": c.id, "event": ev.Type}).Warn("outbound buffer full, dropping event")
	}
}

// writePump drains the out channel onto the socket until the connection
// context ends or a write fails.
func (c *client) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, ev)
			cancel()
			if err != nil {
				logrus.WithError(err).WithField("conn", c.id).Debug("write failed, stopping pump")
				c.cancel()
				return
			}
		}
	}
}
