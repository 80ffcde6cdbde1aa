package play

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yrrving/plastsamlaren/internal/game"
	"github.com/yrrving/plastsamlaren/internal/quest"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSnapshot(t *testing.T, conn *websocket.Conn, match func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		if m.Type != MsgSnapshot {
			continue
		}
		var s game.Snapshot
		require.NoError(t, json.Unmarshal(m.Payload, &s))
		if match(s) {
			return s
		}
	}
	t.Fatal("no matching snapshot")
	return game.Snapshot{}
}

func TestHub_PushesSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	engine := game.NewEngine(game.Options{Quests: quest.NewMemoryStore()})
	h := NewHandler(Options{Engine: engine, Hub: hub, TickInterval: time.Hour})
	defer h.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/game/start", h.Start)
	mux.HandleFunc("/api/game/collect", h.Collect)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readSnapshot(t, conn, func(game.Snapshot) bool { return true })
	assert.Equal(t, game.LifecycleNotStarted, first.Lifecycle)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/game/start", "application/json", strings.NewReader(`{"mode":"free"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/api/game/collect", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	s := readSnapshot(t, conn, func(s game.Snapshot) bool { return s.Inventory.Material == 1 })
	assert.Equal(t, game.LifecycleRunning, s.Lifecycle)
}

func TestHub_InboundMoveMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	engine := game.NewEngine(game.Options{Quests: quest.NewMemoryStore()})
	h := NewHandler(Options{Engine: engine, Hub: hub})
	defer h.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    MsgMove,
		"payload": map[string]any{"x": 0, "z": -3},
	}))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    MsgPosition,
		"payload": map[string]any{"x": 4, "y": 0, "z": 1},
	}))

	require.Eventually(t, func() bool {
		return engine.PlayerPosition() == game.Vec3{X: 4, Z: 1}
	}, 2*time.Second, 5*time.Millisecond)
	assert.InDelta(t, -1.0, engine.Snapshot().MoveInput.Z, 1e-9)

	s := readSnapshot(t, conn, func(s game.Snapshot) bool { return s.Position == game.Vec3{X: 4, Z: 1} })
	assert.InDelta(t, -1.0, s.MoveInput.Z, 1e-9)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	// Broadcast after shutdown must not block.
	hub.Broadcast(MsgSnapshot, map[string]any{})
}
