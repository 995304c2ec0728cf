// Package ws carries commands in and frames out over websockets.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-treelights/internal/command"
	diag "github.com/coreman2200/funtimes-treelights/internal/diagnostics"
)

const (
	writeWait = 200 * time.Millisecond
	diagQueue = 32
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Hub owns the socket clients. Control sockets feed the command queue;
// frame sockets receive every published frame as a pixels message, which is
// what a follower decodes; diag sockets receive diagnostics.
type Hub struct {
	mu          sync.RWMutex
	queue       *command.Queue
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	frames    chan []float64
	diags     chan diag.Diagnostic
	published atomic.Uint64
	dropped   atomic.Uint64
	log       zerolog.Logger
}

func NewHub(q *command.Queue) *Hub {
	return &Hub{
		queue:       q,
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		frames:      make(chan []float64, 1),
		diags:       make(chan diag.Diagnostic, diagQueue),
		log:         log.With().Str("component", "ws").Logger(),
	}
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	h.serveOut(w, r, h.clients)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	h.serveOut(w, r, h.diagClients)
}

// serveOut registers a write-only client and drains its reads so close
// frames are seen.
func (h *Hub) serveOut(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	set[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(set, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleControlWS queues every text message it receives. Validation is left
// to the frame loop.
func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.queue.Push(data)
	}
}

// Publish offers a frame for broadcast. It never blocks; a frame not yet
// written is replaced by the newer one.
func (h *Hub) Publish(leds []float64) {
	select {
	case h.frames <- leds:
		return
	default:
	}
	select {
	case <-h.frames:
	default:
	}
	select {
	case h.frames <- leds:
	default:
	}
}

// Run writes published frames and diagnostics to their clients until ctx
// is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case leds := <-h.frames:
			b, err := command.Encode(command.Pixels(leds))
			if err != nil {
				h.log.Error().Err(err).Msg("encode frame")
				continue
			}
			h.broadcast(h.clients, b)
			h.published.Add(1)
		case d := <-h.diags:
			b, err := json.Marshal(d)
			if err != nil {
				h.log.Error().Err(err).Msg("encode diagnostic")
				continue
			}
			h.broadcast(h.diagClients, b)
		}
	}
}

// Published counts frames handed to the clients.
func (h *Hub) Published() uint64 { return h.published.Load() }

// Clients returns the number of frame and diag clients.
func (h *Hub) Clients() (frames, diags int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients), len(h.diagClients)
}

// PushDiag queues d for the diag clients. It never blocks; when the queue
// is full the diagnostic is dropped and counted.
func (h *Hub) PushDiag(d diag.Diagnostic) {
	select {
	case h.diags <- d:
	default:
		h.dropped.Add(1)
	}
}

// DroppedDiags counts diagnostics lost to a full queue.
func (h *Hub) DroppedDiags() uint64 { return h.dropped.Load() }

// broadcast holds the write lock so each conn has a single writer. A client
// that cannot take a write within writeWait is closed and removed.
func (h *Hub) broadcast(set map[*websocket.Conn]bool, b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range set {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("dropping client")
			delete(set, c)
			c.Close()
		}
	}
}
