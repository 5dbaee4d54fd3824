// internal/models/models.go
package models

import "github.com/google/uuid"

// Player is a single seat in a room. The connection id is the only identity
// a player has; usernames are display-only and not unique.
type Player struct {
	ConnID   uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Ready    bool      `json:"isReady"`
}

// ClientMessage is the inbound envelope for every client action. The fields
// are a union across all message types; unused ones are left at their zero
// value by the sender.
type ClientMessage struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	Number   int    `json:"number,omitempty"`
}

// Inbound message types accepted by the coordinator.
const (
	MsgCreateRoom  = "create_room"
	MsgJoinRoom    = "join_room"
	MsgPlayerReady = "player_ready"
	MsgClickNumber = "click_number"
	MsgBingoWin    = "bingo_win"
	MsgResetGame   = "reset_game"
	MsgLeaveRoom   = "leave_room"
)
