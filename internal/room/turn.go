// internal/room/turn.go
package room

import "github.com/google/uuid"

// advanceTurn applies a turn action from the claimant connection. Turn
// ownership is the only gate: the move itself is client-authoritative and
// never validated against board state. On success the turn pointer moves
// strictly round-robin by join order and the new holder's username is
// returned for broadcast. Assumes lock is held.
func (r *Room) advanceTurn(connID uuid.UUID) (string, error) {
	if r.Phase != PhasePlaying {
		return "", ErrNotInProgress
	}
	if len(r.Players) == 0 {
		return "", ErrNotInProgress
	}
	if r.Players[r.TurnIndex].ConnID != connID {
		return "", ErrNotYourTurn
	}
	r.TurnIndex = (r.TurnIndex + 1) % len(r.Players)
	return r.Players[r.TurnIndex].Username, nil
}
