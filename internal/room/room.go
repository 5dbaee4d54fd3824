// internal/room/room.go
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bingohall/server/internal/models"
)

// Phase is the lifecycle state of a room.
type Phase string

const (
	PhaseWaiting Phase = "waiting" // Pre-game: accepting joins and ready signals.
	PhasePlaying Phase = "playing" // Turns active; no mid-game joins.
)

// Rooms auto-start only once at least this many players are ready.
// Single-player mode never reaches the coordinator.
const minPlayersToStart = 2

// SendFunc delivers an event to a single connection. Implementations must
// not block: they are invoked while the room lock is held.
type SendFunc func(connID uuid.UUID, ev Event)

// OnGameOverFunc is invoked after a win window resolves, with the final
// winner list in recording order.
type OnGameOverFunc func(roomID string, winners []string)

// Room is the authoritative state for one match instance. All mutation is
// serialized through Mu; methods below assume the lock is held by the
// caller unless noted otherwise.
type Room struct {
	ID      string
	Players []*models.Player // Join order; defines the turn rotation.

	TurnIndex      int // Index into Players of the current turn holder.
	StartTurnIndex int // Seeds TurnIndex at each round start; rotated on reset.

	Phase Phase

	winners   []string    // Win claims buffered during the open window.
	winTimer  *time.Timer // Pending window timer; nil when no window is open.
	winWindow time.Duration

	closed bool // Set when the room is destroyed; late operations no-op.

	actionSeq int // Sequential index for the action history stream.

	// SendToPlayerFn routes an event to one member's connection. Assigned by
	// the store at creation and never changed afterwards.
	SendToPlayerFn SendFunc

	// OnGameOverFn, if set, runs after game_over is broadcast.
	OnGameOverFn OnGameOverFunc

	Mu sync.Mutex
}

func newRoom(id string, winWindow time.Duration, send SendFunc) *Room {
	return &Room{
		ID:             id,
		Phase:          PhaseWaiting,
		winWindow:      winWindow,
		SendToPlayerFn: send,
	}
}

// broadcast sends ev to every member. Delivery order matches call order
// because SendToPlayerFn pushes into per-connection FIFO channels.
// Assumes lock is held.
func (r *Room) broadcast(ev Event) {
	if r.SendToPlayerFn == nil {
		logrus.WithField("room", r.ID).Warn("no send function wired, dropping broadcast")
		return
	}
	for _, p := range r.Players {
		r.SendToPlayerFn(p.ConnID, ev)
	}
}

// sendTo sends ev to a single member connection. Assumes lock is held.
func (r *Room) sendTo(connID uuid.UUID, ev Event) {
	if r.SendToPlayerFn == nil {
		return
	}
	r.SendToPlayerFn(connID, ev)
}

// playerInfos snapshots the member list for update_players style payloads.
// Assumes lock is held.
func (r *Room) playerInfos() []PlayerInfo {
	infos := make([]PlayerInfo, len(r.Players))
	for i, p := range r.Players {
		infos[i] = PlayerInfo{ID: p.ConnID.String(), Username: p.Username, IsReady: p.Ready}
	}
	return infos
}

// currentTurnUsername returns the display name of the current turn holder,
// or "" for an empty room. Assumes lock is held.
func (r *Room) currentTurnUsername() string {
	if len(r.Players) == 0 {
		return ""
	}
	return r.Players[r.TurnIndex].Username
}

// indexOf locates a member by connection id. Assumes lock is held.
func (r *Room) indexOf(connID uuid.UUID) int {
	for i, p := range r.Players {
		if p.ConnID == connID {
			return i
		}
	}
	return -1
}

// addPlayer appends a new member. Fails once the game is in progress.
// Assumes lock is held.
func (r *Room) addPlayer(p *models.Player) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if r.Phase == PhasePlaying {
		return ErrGameInProgress
	}
	r.Players = append(r.Players, p)
	return nil
}

// removePlayer drops the member owning connID and reindexes the turn
// pointers so they keep addressing the same logical next player. Returns
// the departed username. Assumes lock is held.
func (r *Room) removePlayer(connID uuid.UUID) (string, bool) {
	idx := r.indexOf(connID)
	if idx < 0 {
		return "", false
	}
	username := r.Players[idx].Username
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if len(r.Players) == 0 {
		r.TurnIndex = 0
		r.StartTurnIndex = 0
		return username, true
	}
	if idx < r.TurnIndex {
		r.TurnIndex--
	}
	r.TurnIndex %= len(r.Players)
	if idx < r.StartTurnIndex {
		r.StartTurnIndex--
	}
	r.StartTurnIndex %= len(r.Players)
	return username, true
}

// markReady flags the member owning connID as ready. When every member of
// a room with at least two players is ready, the round starts: the phase
// flips to Playing and the turn pointer is seeded from StartTurnIndex.
// Returns whether the flag changed and whether the round started. Assumes
// lock is held.
func (r *Room) markReady(connID uuid.UUID) (changed, started bool) {
	idx := r.indexOf(connID)
	if idx < 0 {
		logrus.WithFields(logrus.Fields{"room": r.ID, "conn": connID}).Debug("ready from unknown member")
		return false, false
	}
	r.Players[idx].Ready = true

	if r.Phase != PhaseWaiting || len(r.Players) < minPlayersToStart {
		return true, false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return true, false
		}
	}
	r.Phase = PhasePlaying
	r.TurnIndex = r.StartTurnIndex
	return true, true
}

// reset returns the room to the waiting phase and rotates the opening
// player so successive matches are opened fairly. Any pending win window
// belongs to the round being discarded and is cancelled. Assumes lock is
// held.
func (r *Room) reset() error {
	if len(r.Players) == 0 {
		return ErrEmptyRoom
	}
	r.cancelWinWindow()
	r.Phase = PhaseWaiting
	r.StartTurnIndex = (r.StartTurnIndex + 1) % len(r.Players)
	r.TurnIndex = r.StartTurnIndex
	for _, p := range r.Players {
		p.Ready = false
	}
	return nil
}
