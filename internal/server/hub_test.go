package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scopa-game/internal/protocol"
)

func dialHub(t *testing.T, settings Settings) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// Games keep logging from their own goroutines, so no test logger here.
	hub := NewHub(settings, nil, zap.NewNop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	msg, err := protocol.NewMessage(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))
}

// await reads until a message of the given type arrives.
func await(t *testing.T, conn *websocket.Conn, msgType string) protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)
		var msg protocol.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestHubPingPong(t *testing.T) {
	conn := dialHub(t, Settings{})
	send(t, conn, protocol.TypePing, nil)
	await(t, conn, protocol.TypePong)
}

func TestHubRejectsActionsWithoutGame(t *testing.T) {
	conn := dialHub(t, Settings{})
	send(t, conn, protocol.TypeReset, nil)

	msg := await(t, conn, protocol.TypeError)
	var payload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "Start a game first.", payload.Message)
}

func TestHubNewGameValidation(t *testing.T) {
	conn := dialHub(t, Settings{})

	for _, payload := range []protocol.NewGamePayload{
		{Name: ""},
		{Name: "ana", Players: 5},
		{Name: "ana", Strategy: "minimax"},
	} {
		send(t, conn, protocol.TypeNewGame, payload)
		await(t, conn, protocol.TypeError)
	}
}

func TestHubPlaysAgainstBots(t *testing.T) {
	conn := dialHub(t, Settings{Players: 2, Strategy: "greedy"})
	send(t, conn, protocol.TypeNewGame, protocol.NewGamePayload{Name: "ana", Players: 3})

	msg := await(t, conn, protocol.TypeGameStart)
	var start protocol.GameStartPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &start))
	require.Len(t, start.Players, 3)
	assert.Equal(t, "ana", start.Players[0].Name)
	assert.False(t, start.Players[0].Bot)
	assert.True(t, start.Players[1].Bot)

	msg = await(t, conn, protocol.TypeYourTurn)
	var turn protocol.YourTurnPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &turn))
	require.NotEmpty(t, turn.ValidMoves)
	assert.Equal(t, start.Players[0].ID, turn.PlayerID)

	play := turn.ValidMoves[0]
	send(t, conn, protocol.TypePlayCard, protocol.PlayCardPayload{
		Card:    play.Card,
		Targets: play.Targets,
		Version: turn.Version,
	})

	msg = await(t, conn, protocol.TypeGameState)
	var state protocol.GameStatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &state))
	assert.Greater(t, state.Version, turn.Version)
	assert.NotContains(t, state.Hand, play.Card)
}

func TestServeWsAssignsIDBeforeRegistering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(Settings{}, nil, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// The hub loop is not running yet, so the client is still in flight.
	var client *Client
	select {
	case client = <-hub.register:
	case <-time.After(5 * time.Second):
		t.Fatal("client was never registered")
	}
	assert.NotEmpty(t, client.ID)

	go hub.Run(ctx)
	hub.register <- client
	send(t, conn, protocol.TypePing, nil)
	await(t, conn, protocol.TypePong)
}

func TestStoppedHubReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(Settings{}, nil, zap.NewNop())
	cancel()
	hub.Run(ctx)

	client := &Client{hub: hub, send: make(chan []byte, 1), ID: "late"}
	released := make(chan struct{})
	go func() {
		defer close(released)
		hub.unregisterClient(client)
		assert.False(t, hub.registerClient(client))
		assert.False(t, hub.submit(client, protocol.Message{Type: protocol.TypePing}))
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("client goroutine blocked on a stopped hub")
	}
}
