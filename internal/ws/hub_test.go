package ws

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

	"github.com/coreman2200/funtimes-treelights/internal/command"
	diag "github.com/coreman2200/funtimes-treelights/internal/diagnostics"
)

func testServer(t *testing.T, h *Hub) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/control", h.HandleControlWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestControlQueues(t *testing.T) {
	q := command.NewQueue(8)
	base := testServer(t, NewHub(q))
	c := dial(t, base+"/control")
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"type":"action","action":"next"}`)))
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`not json`)))

	require.Eventually(t, func() bool { return q.Len() == 2 }, time.Second, 5*time.Millisecond)
	msgs := q.Drain()
	m, err := command.Decode(msgs[0])
	require.NoError(t, err)
	assert.Equal(t, command.Action("next"), m)
}

func TestFramesBroadcast(t *testing.T) {
	h := NewHub(command.NewQueue(1))
	base := testServer(t, h)
	c := dial(t, base+"/ws")
	require.Eventually(t, func() bool { n, _ := h.Clients(); return n == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)
	h.Publish([]float64{1, 0, 0})

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	m, err := command.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, command.TypePixels, m.Type)
	assert.Equal(t, []float64{1, 0, 0}, m.LEDs)
}

func TestPublishKeepsNewest(t *testing.T) {
	h := NewHub(command.NewQueue(1))
	h.Publish([]float64{1})
	h.Publish([]float64{2})
	h.Publish([]float64{3})
	assert.Equal(t, []float64{3}, <-h.frames)
	assert.Empty(t, h.frames)
}

func TestDiagBroadcast(t *testing.T) {
	h := NewHub(command.NewQueue(1))
	base := testServer(t, h)
	c := dial(t, base+"/diag")
	require.Eventually(t, func() bool { _, n := h.Clients(); return n == 1 }, time.Second, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	h.PushDiag(diag.New(diag.Warn, diag.CodeFrameLag, "slow").With("ms", 40))
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var d diag.Diagnostic
	require.NoError(t, json.Unmarshal(data, &d))
	assert.Equal(t, diag.CodeFrameLag, d.Code)
	assert.Equal(t, float64(40), d.Evidence["ms"])
}

func TestPushDiagNeverBlocks(t *testing.T) {
	h := NewHub(command.NewQueue(1))
	for i := 0; i < diagQueue+10; i++ {
		h.PushDiag(diag.New(diag.Info, diag.CodeFrameRate, "frame rate"))
	}
	assert.Len(t, h.diags, diagQueue)
	assert.Equal(t, uint64(10), h.DroppedDiags())
}

func TestBroadcastDropsFailedClient(t *testing.T) {
	h := NewHub(command.NewQueue(1))
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := upgrader.Upgrade(w, r, nil); err == nil {
			conns <- c
		}
	}))
	t.Cleanup(srv.Close)
	dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))

	sc := <-conns
	require.NoError(t, sc.Close())
	h.mu.Lock()
	h.clients[sc] = true
	h.mu.Unlock()

	h.broadcast(h.clients, []byte(`{"type":"ping"}`))
	n, _ := h.Clients()
	assert.Zero(t, n)
}

func TestFollow(t *testing.T) {
	master := NewHub(command.NewQueue(1))
	base := testServer(t, master)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go master.Run(ctx)

	q := command.NewQueue(8)
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, base+"/ws", q) }()

	require.Eventually(t, func() bool { n, _ := master.Clients(); return n == 1 }, 2*time.Second, 5*time.Millisecond)
	master.Publish([]float64{0, 0.5, 1})
	require.Eventually(t, func() bool { return q.Len() > 0 }, 2*time.Second, 5*time.Millisecond)
	m, err := command.Decode(q.Drain()[0])
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, m.LEDs)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("follow did not stop")
	}
}
