package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-treelights/internal/command"
)

const (
	followBackoff    = 500 * time.Millisecond
	followBackoffMax = 30 * time.Second
)

// Follow mirrors a master: it reads the master's frame socket at url and
// queues every message. It reconnects with backoff until ctx is done and
// returns ctx.Err().
func Follow(ctx context.Context, url string, q *command.Queue) error {
	l := log.With().Str("component", "follow").Str("url", url).Logger().
		Sample(&zerolog.BurstSampler{Burst: 3, Period: 10 * time.Second})
	backoff := followBackoff
	for {
		err := followOnce(ctx, url, q, func() { backoff = followBackoff })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.Warn().Err(err).Dur("retry", backoff).Msg("master unavailable")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > followBackoffMax {
			backoff = followBackoffMax
		}
	}
}

func followOnce(ctx context.Context, url string, q *command.Queue, connected func()) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	connected()
	log.Info().Str("url", url).Msg("following master")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		q.Push(data)
	}
}
