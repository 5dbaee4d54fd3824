// internal/room/events.go
package room

// EventType identifies an outbound notification broadcast to room members
// or sent point-to-point to a single connection.
type EventType string

// Outbound event types. Wire names are part of the client contract.
const (
	EventRoomCreated   EventType = "room_created"   // Creator only: carries the new room code.
	EventUpdatePlayers EventType = "update_players" // Full member list, including ready flags.
	EventUpdateTurn    EventType = "update_turn"    // Username of the current turn holder.
	EventNumberMarked  EventType = "number_marked"  // A turn action was applied.
	EventGameStarted   EventType = "game_started"   // All players ready; turns are live.
	EventGameReset     EventType = "game_reset"     // Room returned to the waiting phase.
	EventGameOver      EventType = "game_over"      // Win window resolved; carries all winners.
	EventPlayerJoined  EventType = "player_joined"  // Existing members only: cosmetic join notice.
	EventPlayerLeft    EventType = "player_left"    // A member departed; carries remaining list.
	EventErrorMessage  EventType = "error_message"  // Point-to-point, user-correctable failures.
)

// PlayerInfo is a member entry inside player-list payloads.
type PlayerInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsReady  bool   `json:"isReady"`
}

// Event is the standard structure for every outbound notification. Fields
// are a union across event types; unused ones are omitted on the wire.
type Event struct {
	Type         EventType    `json:"type"`
	RoomID       string       `json:"roomId,omitempty"`
	Players      []PlayerInfo `json:"players,omitempty"`
	Turn         string       `json:"turn,omitempty"`
	Number       int          `json:"number,omitempty"`
	NextTurnUser string       `json:"nextTurnUser,omitempty"`
	StartTurn    string       `json:"startTurn,omitempty"`
	WinnerList   []string     `json:"winnerList,omitempty"`
	Username     string       `json:"username,omitempty"`
	Message      string       `json:"message,omitempty"`
}
