// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bingohall/server/internal/models"
	"github.com/bingohall/server/internal/room"
)

// Error texts surfaced to clients for user-correctable failures.
const (
	msgRoomNotFound     = "Room not found!"
	msgGameInProgress   = "Game already in progress!"
	msgRoomInvalid      = "Room invalid."
	msgUsernameRequired = "Username required."
)

// Server is the WebSocket transport adapter. It owns the connection set and
// translates between wire messages and room operations; all game rules live
// in the room package.
type Server struct {
	store *room.Store

	mu      sync.RWMutex
	clients map[uuid.UUID]*client
}

// New builds a server with a fresh room store resolving win windows after
// winWindow.
func New(winWindow time.Duration) *Server {
	s := &Server{clients: make(map[uuid.UUID]*client)}
	s.store = room.NewStore(winWindow, s.sendToConn)
	return s
}

// Store exposes the room store, mainly for tests and health reporting.
func (s *Server) Store() *room.Store {
	return s.store
}

// Routes returns the HTTP handler: the WebSocket endpoint plus a health
// probe.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// sendToConn routes a room event to a live connection. Satisfies
// room.SendFunc; must not block because rooms call it under their lock.
func (s *Server) sendToConn(connID uuid.UUID, ev room.Event) {
	s.mu.RLock()
	c, ok := s.clients[connID]
	s.mu.RUnlock()
	if ok {
		c.send(ev)
	}
}

// handleWS upgrades the connection and runs its read loop. When the loop
// exits, the connection's room participation is unconditionally cancelled.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logrus.WithError(err).Debug("websocket accept failed")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := newClient(conn, cancel)

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	logrus.WithField("conn", c.id).Info("connection opened")
	go c.writePump(ctx)

	s.readLoop(ctx, c)

	cancel()
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()

	s.store.Leave(c.id)
	conn.Close(websocket.StatusNormalClosure, "")
	logrus.WithField("conn", c.id).Info("connection closed")
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	for {
		var msg models.ClientMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				logrus.WithError(err).WithField("conn", c.id).Debug("read loop ended")
			}
			return
		}
		s.dispatch(c, msg)
	}
}

// dispatch routes one inbound message. User-correctable failures come back
// as a point-to-point error_message; normal races are dropped with a debug
// log.
func (s *Server) dispatch(c *client, msg models.ClientMessage) {
	switch msg.Type {
	case models.MsgCreateRoom:
		if msg.Username == "" {
			c.send(room.Event{Type: room.EventErrorMessage, Message: msgUsernameRequired})
			return
		}
		if _, err := s.store.CreateRoom(c.id, msg.Username); err != nil {
			logrus.WithError(err).WithField("conn", c.id).Warn("create_room failed")
		}

	case models.MsgJoinRoom:
		if msg.Username == "" {
			c.send(room.Event{Type: room.EventErrorMessage, Message: msgUsernameRequired})
			return
		}
		switch err := s.store.JoinRoom(msg.RoomID, c.id, msg.Username); {
		case errors.Is(err, room.ErrRoomNotFound):
			c.send(room.Event{Type: room.EventErrorMessage, Message: msgRoomNotFound})
		case errors.Is(err, room.ErrGameInProgress):
			c.send(room.Event{Type: room.EventErrorMessage, Message: msgGameInProgress})
		case err != nil:
			logrus.WithError(err).WithField("conn", c.id).Warn("join_room failed")
		}

	case models.MsgPlayerReady:
		s.store.Ready(msg.RoomID, c.id)

	case models.MsgClickNumber:
		if err := s.store.ClickNumber(msg.RoomID, c.id, msg.Number); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"conn": c.id, "room": msg.RoomID}).Debug("click_number dropped")
		}

	case models.MsgBingoWin:
		if err := s.store.RecordWin(msg.RoomID, msg.Username); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"conn": c.id, "room": msg.RoomID}).Debug("bingo_win dropped")
		}

	case models.MsgResetGame:
		if err := s.store.Reset(msg.RoomID); err != nil {
			c.send(room.Event{Type: room.EventErrorMessage, Message: msgRoomInvalid})
		}

	case models.MsgLeaveRoom:
		s.store.Leave(c.id)

	default:
		logrus.WithFields(logrus.Fields{"conn": c.id, "type": msg.Type}).Debug("unknown message type")
	}
}
