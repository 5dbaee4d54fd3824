// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client for the action history stream. It stays
// nil when no Redis address is configured; publishing is skipped in that
// case and the coordinator runs purely in memory.
var Rdb *redis.Client

// actionStream is the Redis stream receiving room action records.
const actionStream = "room:actions"

// RoomActionRecord is one entry in a room's action history: who did what,
// in which room, in which order.
type RoomActionRecord struct {
	RoomID      string                 `json:"roomId"`
	ActionIndex int                    `json:"actionIndex"`
	Actor       string                 `json:"actor,omitempty"`
	ActionType  string                 `json:"actionType"`
	Payload     map[string]interface{} `json:"payload"`
	Timestamp   int64                  `json:"timestamp"`
}

// InitRedis connects the shared client and verifies the server is
// reachable.
func InitRedis(addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// Enabled reports whether action history publishing is active.
func Enabled() bool {
	return Rdb != nil
}

// PublishRoomAction appends a record to the action history stream.
func PublishRoomAction(ctx context.Context, rec RoomActionRecord) error {
	if Rdb == nil {
		return nil
	}
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("marshal action payload: %w", err)
	}
	return Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: actionStream,
		Values: map[string]interface{}{
			"roomId":      rec.RoomID,
			"actionIndex": strconv.Itoa(rec.ActionIndex),
			"actor":       rec.Actor,
			"actionType":  rec.ActionType,
			"payload":     string(payload),
			"timestamp":   strconv.FormatInt(rec.Timestamp, 10),
		},
	}).Err()
}

// Close releases the shared client.
func Close() error {
	if Rdb == nil {
		return nil
	}
	err := Rdb.Close()
	Rdb = nil
	return err
}
