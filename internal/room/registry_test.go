// internal/room/registry_test.go
package room

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()
	connID := uuid.New()

	_, ok := reg.Lookup(connID)
	assert.False(t, ok)

	reg.Register(connID, "ABC123")
	roomID, ok := reg.Lookup(connID)
	require.True(t, ok)
	assert.Equal(t, "ABC123", roomID)

	// Re-registering replaces the entry.
	reg.Register(connID, "XYZ789")
	roomID, ok = reg.Lookup(connID)
	require.True(t, ok)
	assert.Equal(t, "XYZ789", roomID)

	reg.Unregister(connID)
	_, ok = reg.Lookup(connID)
	assert.False(t, ok)

	// Unregistering twice is harmless.
	reg.Unregister(connID)
}
