// internal/server/server_test.go
package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingohall/server/internal/models"
	"github.com/bingohall/server/internal/room"
)

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) room.Event {
	t.Helper()
	var ev room.Event
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	return ev
}

func TestWebSocketGameFlow(t *testing.T) {
	srv := New(50 * time.Millisecond)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Alice creates a room.
	alice := dialWS(t, ctx, ts)
	require.NoError(t, wsjson.Write(ctx, alice, models.ClientMessage{Type: models.MsgCreateRoom, Username: "alice"}))

	created := readEvent(t, ctx, alice)
	require.Equal(t, room.EventRoomCreated, created.Type)
	code := created.RoomID
	require.Len(t, code, 6)

	players := readEvent(t, ctx, alice)
	require.Equal(t, room.EventUpdatePlayers, players.Type)
	require.Len(t, players.Players, 1)

	turn := readEvent(t, ctx, alice)
	require.Equal(t, room.EventUpdateTurn, turn.Type)
	assert.Equal(t, "alice", turn.Turn)

	// Bob joins; alice gets the cosmetic notice, both get the refreshed list.
	bob := dialWS(t, ctx, ts)
	require.NoError(t, wsjson.Write(ctx, bob, models.ClientMessage{Type: models.MsgJoinRoom, RoomID: code, Username: "bob"}))

	joined := readEvent(t, ctx, alice)
	require.Equal(t, room.EventPlayerJoined, joined.Type)
	assert.Equal(t, "bob", joined.Username)

	players = readEvent(t, ctx, alice)
	require.Equal(t, room.EventUpdatePlayers, players.Type)
	require.Len(t, players.Players, 2)

	turn = readEvent(t, ctx, alice)
	require.Equal(t, room.EventUpdateTurn, turn.Type)

	players = readEvent(t, ctx, bob)
	require.Equal(t, room.EventUpdatePlayers, players.Type)
	require.Len(t, players.Players, 2)
	turn = readEvent(t, ctx, bob)
	require.Equal(t, room.EventUpdateTurn, turn.Type)
	assert.Equal(t, "alice", turn.Turn)

	// Both ready up and the game starts with alice.
	require.NoError(t, wsjson.Write(ctx, alice, models.ClientMessage{Type: models.MsgPlayerReady, RoomID: code}))
	ev := readEvent(t, ctx, alice)
	require.Equal(t, room.EventUpdatePlayers, ev.Type)
	ev = readEvent(t, ctx, bob)
	require.Equal(t, room.EventUpdatePlayers, ev.Type)

	require.NoError(t, wsjson.Write(ctx, bob, models.ClientMessage{Type: models.MsgPlayerReady, RoomID: code}))
	ev = readEvent(t, ctx, alice)
	require.Equal(t, room.EventUpdatePlayers, ev.Type)
	started := readEvent(t, ctx, alice)
	require.Equal(t, room.EventGameStarted, started.Type)
	assert.Equal(t, "alice", started.StartTurn)

	ev = readEvent(t, ctx, bob)
	require.Equal(t, room.EventUpdatePlayers, ev.Type)
	started = readEvent(t, ctx, bob)
	require.Equal(t, room.EventGameStarted, started.Type)

	// Alice moves; both see the marked number and the turn pass to bob.
	require.NoError(t, wsjson.Write(ctx, alice, models.ClientMessage{Type: models.MsgClickNumber, RoomID: code, Number: 42}))
	marked := readEvent(t, ctx, alice)
	require.Equal(t, room.EventNumberMarked, marked.Type)
	assert.Equal(t, 42, marked.Number)
	assert.Equal(t, "bob", marked.NextTurnUser)
	marked = readEvent(t, ctx, bob)
	require.Equal(t, room.EventNumberMarked, marked.Type)
	assert.Equal(t, "bob", marked.NextTurnUser)

	// Bob claims a win and the window resolves.
	require.NoError(t, wsjson.Write(ctx, bob, models.ClientMessage{Type: models.MsgBingoWin, RoomID: code, Username: "bob"}))
	over := readEvent(t, ctx, alice)
	require.Equal(t, room.EventGameOver, over.Type)
	assert.Equal(t, []string{"bob"}, over.WinnerList)
	over = readEvent(t, ctx, bob)
	require.Equal(t, room.EventGameOver, over.Type)
}

func TestWebSocketJoinErrors(t *testing.T) {
	srv := New(50 * time.Millisecond)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	require.NoError(t, wsjson.Write(ctx, conn, models.ClientMessage{Type: models.MsgJoinRoom, RoomID: "NOSUCH", Username: "carol"}))
	ev := readEvent(t, ctx, conn)
	require.Equal(t, room.EventErrorMessage, ev.Type)
	assert.Equal(t, "Room not found!", ev.Message)

	require.NoError(t, wsjson.Write(ctx, conn, models.ClientMessage{Type: models.MsgCreateRoom}))
	ev = readEvent(t, ctx, conn)
	require.Equal(t, room.EventErrorMessage, ev.Type)
	assert.Equal(t, "Username required.", ev.Message)
}

func TestDisconnectRemovesPlayer(t *testing.T) {
	srv := New(50 * time.Millisecond)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(t, ctx, ts)
	require.NoError(t, wsjson.Write(ctx, alice, models.ClientMessage{Type: models.MsgCreateRoom, Username: "alice"}))
	created := readEvent(t, ctx, alice)
	require.Equal(t, room.EventRoomCreated, created.Type)
	require.Equal(t, 1, srv.Store().RoomCount())

	// Closing the socket cancels participation and empties the room.
	alice.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool {
		return srv.Store().RoomCount() == 0
	}, 2*time.Second, 10*time.Millisecond, "room should be destroyed after its last member disconnects")
}
