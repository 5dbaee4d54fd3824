// internal/room/errors.go
package room

import "errors"

// Validation failures raised by room operations. ErrRoomNotFound and
// ErrGameInProgress are user-correctable and surfaced to the client as an
// error_message; the rest represent normal races and are dropped silently
// by the transport layer.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrNotInProgress     = errors.New("game not in progress")
	ErrUnknownConnection = errors.New("connection not in any room")
	ErrEmptyRoom         = errors.New("room has no players")
)
