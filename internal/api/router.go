// Package api is the HTTP front end: health, scene listing, actions from
// webhooks and the websocket endpoints.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-treelights/internal/command"
	"github.com/coreman2200/funtimes-treelights/internal/ws"
)

// Health is the snapshot served on /health.
type Health struct {
	FrameID     uint64   `json:"frame_id"`
	FPS         float64  `json:"fps"`
	Mode        string   `json:"mode"`
	Scene       string   `json:"scene"`
	Next        string   `json:"next,omitempty"`
	Modifiers   []string `json:"modifiers"`
	Speed       float64  `json:"speed"`
	VirtualTime float64  `json:"virtual_time"`
	Pixels      int      `json:"count"`
	Written     uint64   `json:"written"`
	Failed      uint64   `json:"failed"`
	UptimeS     float64  `json:"uptime_s"`
}

// Backend is what the router reads from the frame loop. Both methods must
// be safe to call from any goroutine.
type Backend interface {
	Health() Health
	Names() (scenes, modes []string)
}

type gameKeyReq struct {
	Key   string `json:"key" binding:"required"`
	State bool   `json:"state"`
}

// NewRouter wires the routes. hub may be nil, in which case the socket
// endpoints are not served.
func NewRouter(b Backend, q *command.Queue, hub *ws.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors())
	start := time.Now()

	r.GET("/health", func(c *gin.Context) {
		h := b.Health()
		h.UptimeS = time.Since(start).Seconds()
		c.JSON(http.StatusOK, h)
	})

	r.GET("/scenes", func(c *gin.Context) {
		scenes, modes := b.Names()
		c.JSON(http.StatusOK, gin.H{"scenes": scenes, "modes": modes})
	})

	r.POST("/action/:name", func(c *gin.Context) {
		queueAction(c, q, c.Param("name"))
	})

	// IFTTT applets post the event name as a form field.
	r.POST("/ifttt", func(c *gin.Context) {
		queueAction(c, q, c.PostForm("event"))
	})

	// Slack slash commands post the typed text; the first word is the action.
	r.POST("/slack", func(c *gin.Context) {
		fields := strings.Fields(c.PostForm("text"))
		if len(fields) == 0 {
			c.JSON(http.StatusOK, gin.H{"text": "usage: /tree <action>"})
			return
		}
		name := strings.ToLower(fields[0])
		if err := q.PushMessage(command.Action(name)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"text": "ok: " + name})
	})

	r.POST("/gamekey", func(c *gin.Context) {
		var req gameKeyReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		switch req.Key {
		case command.KeyLeft, command.KeyRight, command.KeyFire:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown key " + req.Key})
			return
		}
		if err := q.PushMessage(command.GameKey(req.Key, req.State)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"key": req.Key, "state": req.State})
	})

	// Raw messages, validated before they are queued.
	r.POST("/message", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		m, err := command.Decode(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q.Push(body)
		c.JSON(http.StatusAccepted, gin.H{"type": m.Type})
	})

	if hub != nil {
		r.GET("/ws", gin.WrapF(hub.HandleFramesWS))
		r.GET("/diag", gin.WrapF(hub.HandleDiagWS))
		r.GET("/control", gin.WrapF(hub.HandleControlWS))
	}
	return r
}

func queueAction(c *gin.Context, q *command.Queue, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing action"})
		return
	}
	if err := q.PushMessage(command.Action(name)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Debug().Str("action", name).Str("from", c.FullPath()).Msg("queued action")
	c.JSON(http.StatusAccepted, gin.H{"action": name})
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
