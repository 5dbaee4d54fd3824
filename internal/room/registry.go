// internal/room/registry.go
package room

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the reverse lookup from a live connection to the room it
// belongs to, so disconnects resolve their room in O(1) instead of scanning
// every room. It is a pure lookup structure with no business logic; entries
// are weak back-references never used for mutation.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[uuid.UUID]string)}
}

// Register maps a connection to its room, replacing any previous entry.
func (r *Registry) Register(connID uuid.UUID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[connID] = roomID
}

// Lookup returns the room a connection belongs to.
func (r *Registry) Lookup(connID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.rooms[connID]
	return roomID, ok
}

// Unregister removes a connection's entry, if any.
func (r *Registry) Unregister(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, connID)
}
