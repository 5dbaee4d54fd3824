// internal/room/store.go
package room

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bingohall/server/internal/cache"
	"github.com/bingohall/server/internal/models"
)

const (
	roomCodeLen     = 6
	roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Store owns every Room instance and orchestrates the room lifecycle:
// create, join, leave/disconnect, ready-up, turn actions, win claims and
// resets. No other component holds a long-lived Room reference. The map and
// the registry have their own locks; a room is always resolved first and
// then operated on under its own mutex, so the two lock families never
// nest the other way around.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	registry  *Registry
	winWindow time.Duration
	send      SendFunc
}

// NewStore creates a store whose rooms deliver events through send and
// resolve win windows after winWindow.
func NewStore(winWindow time.Duration, send SendFunc) *Store {
	return &Store{
		rooms:     make(map[string]*Room),
		registry:  NewRegistry(),
		winWindow: winWindow,
		send:      send,
	}
}

// Registry exposes the connection registry for transport-level lookups.
func (s *Store) Registry() *Registry {
	return s.registry
}

// RoomCount reports how many rooms are live.
func (s *Store) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *Store) get(roomID string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	return r, ok
}

// newRoomCode draws a short uppercase code that is free in the live map.
// Called with s.mu held.
func (s *Store) newRoomCode() string {
	for {
		buf := make([]byte, roomCodeLen)
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand.Read does not fail on supported platforms.
			panic(err)
		}
		code := make([]byte, roomCodeLen)
		for i, b := range buf {
			code[i] = roomCodeCharset[int(b)%len(roomCodeCharset)]
		}
		if _, taken := s.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

// CreateRoom allocates a fresh room with the caller as its sole member and
// first turn holder, and registers the caller's connection.
func (s *Store) CreateRoom(connID uuid.UUID, username string) (string, error) {
	s.mu.Lock()
	code := s.newRoomCode()
	r := newRoom(code, s.winWindow, s.send)
	r.OnGameOverFn = s.onGameOver
	s.rooms[code] = r
	s.mu.Unlock()

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if err := r.addPlayer(&models.Player{ConnID: connID, Username: username}); err != nil {
		return "", err
	}
	s.registry.Register(connID, code)

	logrus.WithFields(logrus.Fields{"room": code, "conn": connID, "username": username}).Info("room created")
	s.logAction(r, username, "room_created", map[string]interface{}{"conn": connID.String()})

	r.sendTo(connID, Event{Type: EventRoomCreated, RoomID: code})
	r.broadcast(Event{Type: EventUpdatePlayers, Players: r.playerInfos()})
	r.broadcast(Event{Type: EventUpdateTurn, Turn: r.currentTurnUsername()})
	return code, nil
}

// JoinRoom appends a new member to an existing waiting room and registers
// the connection. Existing members get a cosmetic player_joined notice;
// everyone gets the refreshed member list and turn holder.
func (s *Store) JoinRoom(roomID string, connID uuid.UUID, username string) error {
	r, ok := s.get(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	// player_joined goes to the members present before the append.
	existing := make([]uuid.UUID, len(r.Players))
	for i, p := range r.Players {
		existing[i] = p.ConnID
	}

	if err := r.addPlayer(&models.Player{ConnID: connID, Username: username}); err != nil {
		return err
	}
	s.registry.Register(connID, roomID)

	logrus.WithFields(logrus.Fields{"room": roomID, "conn": connID, "username": username}).Info("player joined")
	s.logAction(r, username, "player_joined", map[string]interface{}{"conn": connID.String()})

	for _, id := range existing {
		r.sendTo(id, Event{Type: EventPlayerJoined, Username: username})
	}
	r.broadcast(Event{Type: EventUpdatePlayers, Players: r.playerInfos()})
	r.broadcast(Event{Type: EventUpdateTurn, Turn: r.currentTurnUsername()})
	return nil
}

// Leave removes a departing connection from its room, treating departure as
// an unconditional cancellation of further participation. Unknown
// connections are a silent no-op. An emptied room is destroyed with no
// further notification.
func (s *Store) Leave(connID uuid.UUID) {
	roomID, ok := s.registry.Lookup(connID)
	if !ok {
		logrus.WithField("conn", connID).Debug("leave from untracked connection")
		return
	}
	s.registry.Unregister(connID)

	r, ok := s.get(roomID)
	if !ok {
		return
	}

	r.Mu.Lock()
	username, removed := r.removePlayer(connID)
	if !removed {
		r.Mu.Unlock()
		return
	}

	logrus.WithFields(logrus.Fields{"room": roomID, "conn": connID, "username": username}).Info("player left")
	s.logAction(r, username, "player_left", nil)

	if len(r.Players) == 0 {
		r.closed = true
		r.cancelWinWindow()
		r.Mu.Unlock()

		s.mu.Lock()
		delete(s.rooms, roomID)
		s.mu.Unlock()
		logrus.WithField("room", roomID).Info("room destroyed")
		return
	}

	r.broadcast(Event{Type: EventPlayerLeft, Username: username, Players: r.playerInfos()})
	if r.Phase == PhasePlaying {
		r.broadcast(Event{Type: EventUpdateTurn, Turn: r.currentTurnUsername()})
	}
	r.Mu.Unlock()
}

// Ready marks a member as ready and starts the round once every member of
// a 2+ player room is ready. Unknown rooms and members are a silent no-op.
func (s *Store) Ready(roomID string, connID uuid.UUID) {
	r, ok := s.get(roomID)
	if !ok {
		logrus.WithField("room", roomID).Debug("ready for unknown room")
		return
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return
	}

	changed, started := r.markReady(connID)
	if !changed {
		return
	}
	r.broadcast(Event{Type: EventUpdatePlayers, Players: r.playerInfos()})
	if started {
		startTurn := r.currentTurnUsername()
		logrus.WithFields(logrus.Fields{"room": roomID, "startTurn": startTurn}).Info("game started")
		s.logAction(r, startTurn, "game_started", nil)
		r.broadcast(Event{Type: EventGameStarted, StartTurn: startTurn})
	}
}

// ClickNumber applies a turn action. Ownership violations and actions
// outside the playing phase are returned for the transport to drop.
func (s *Store) ClickNumber(roomID string, connID uuid.UUID, number int) error {
	r, ok := s.get(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}

	next, err := r.advanceTurn(connID)
	if err != nil {
		return err
	}
	claimant := r.Players[(r.TurnIndex-1+len(r.Players))%len(r.Players)].Username
	s.logAction(r, claimant, "number_marked", map[string]interface{}{"number": number})
	r.broadcast(Event{Type: EventNumberMarked, Number: number, NextTurnUser: next})
	return nil
}

// RecordWin buffers a win claim into the room's aggregation window.
func (s *Store) RecordWin(roomID, username string) error {
	r, ok := s.get(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}

	logrus.WithFields(logrus.Fields{"room": roomID, "username": username}).Info("win claimed")
	s.logAction(r, username, "win_claimed", nil)
	r.recordWin(username)
	return nil
}

// Reset returns a room to the waiting phase and rotates the opening player.
// Accepted in any phase so a finished round can always be replayed.
func (s *Store) Reset(roomID string) error {
	r, ok := s.get(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}

	if err := r.reset(); err != nil {
		return err
	}
	startTurn := r.currentTurnUsername()
	logrus.WithFields(logrus.Fields{"room": roomID, "startTurn": startTurn}).Info("game reset")
	s.logAction(r, "", "game_reset", map[string]interface{}{"startTurn": startTurn})

	r.broadcast(Event{Type: EventGameReset, StartTurn: startTurn})
	r.broadcast(Event{Type: EventUpdatePlayers, Players: r.playerInfos()})
	return nil
}

// onGameOver records resolved rounds to the action history stream.
// Runs with the room lock held (win timer callback).
func (s *Store) onGameOver(roomID string, winners []string) {
	s.publishAction(cache.RoomActionRecord{
		RoomID:     roomID,
		ActionType: "game_over",
		Payload:    map[string]interface{}{"winnerList": winners},
		Timestamp:  time.Now().UnixMilli(),
	})
}

// logAction queues an action record for the history stream. Assumes the
// room lock is held (actionSeq increment).
func (s *Store) logAction(r *Room, actor, actionType string, payload map[string]interface{}) {
	r.actionSeq++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	s.publishAction(cache.RoomActionRecord{
		RoomID:      r.ID,
		ActionIndex: r.actionSeq,
		Actor:       actor,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	})
}

// publishAction fires the record at Redis without blocking the caller.
// History is best-effort telemetry: a missing or failing Redis never
// affects room state.
func (s *Store) publishAction(rec cache.RoomActionRecord) {
	if !cache.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishRoomAction(ctx, rec); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"room":   rec.RoomID,
				"action": rec.ActionType,
			}).Error("failed publishing action record")
		}
	}()
}
