package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-treelights/internal/api"
	"github.com/coreman2200/funtimes-treelights/internal/command"
	"github.com/coreman2200/funtimes-treelights/internal/config"
	"github.com/coreman2200/funtimes-treelights/internal/driver/fake"
	"github.com/coreman2200/funtimes-treelights/internal/driver/preview"
	"github.com/coreman2200/funtimes-treelights/internal/layout"
	"github.com/coreman2200/funtimes-treelights/internal/led"
	"github.com/coreman2200/funtimes-treelights/internal/render"
	"github.com/coreman2200/funtimes-treelights/internal/render/scenes"
	"github.com/coreman2200/funtimes-treelights/internal/render/sprites"
	"github.com/coreman2200/funtimes-treelights/internal/ws"
)

// Core is the wired application.
type Core struct {
	Cfg       *config.Config
	Geometry  *layout.Geometry
	Registry  *render.SpriteRegistry
	Queue     *command.Queue
	Hub       *ws.Hub
	Conductor *Conductor
	Router    *gin.Engine
}

// OpenDriver opens the output named by cfg.Driver.
func OpenDriver(cfg *config.Config, enc led.Encoder, n int) (led.Driver, error) {
	switch cfg.Driver {
	case "spi":
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("periph host init: %w", err)
		}
		return led.NewSPI(cfg.SPI.Dev, physic.Frequency(cfg.SPI.SpeedHz)*physic.Hertz)
	case "sim":
		return preview.NewTerminal(enc, n), nil
	case "null":
		return &fake.Driver{}, nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

// NewEncoder builds the protocol encoder from the encoding settings.
func NewEncoder(cfg *config.Config) (led.Encoder, error) {
	enc := led.NewEncoder()
	pol, err := led.ParsePolicy(cfg.Encoding.Policy)
	if err != nil {
		return enc, &config.ValidationError{Field: "encoding.policy", Reason: err.Error()}
	}
	order, err := led.ParseOrder(cfg.ColorOrder)
	if err != nil {
		return enc, &config.ValidationError{Field: "color_order", Reason: err.Error()}
	}
	enc.Gamma, enc.Policy, enc.Order = cfg.Encoding.Gamma, pol, order
	enc.Brightness = uint8(cfg.Encoding.Brightness)
	return enc, nil
}

// InitCore wires config -> geometry -> encoder -> driver -> worker ->
// scenes -> conductor and the network front ends. drv overrides the
// configured driver when non-nil.
func InitCore(cfg *config.Config, drv led.Driver) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cal, err := config.LoadCalibration(cfg.Geometry)
	if err != nil {
		return nil, err
	}
	samples, err := cal.Samples()
	if err != nil {
		return nil, err
	}
	geo, err := layout.Build(samples, cal.Pixels.Count)
	if err != nil {
		return nil, &config.ValidationError{Field: "geometry", Reason: err.Error()}
	}
	n := geo.Len()
	log.Info().Int("pixels", n).Int("rings", len(geo.Rings())).Msg("geometry built")

	enc, err := NewEncoder(cfg)
	if err != nil {
		return nil, err
	}

	reg := sprites.NewRegistry()
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	cat, err := scenes.New(cfg.Scripts)
	if err != nil {
		return nil, &config.ValidationError{Field: "scripts", Reason: err.Error()}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	env := render.Env{Geometry: geo, Rand: rand.New(rand.NewSource(seed))}
	s := cfg.Scheduler
	mgr := render.NewManager(env, cat, render.ManagerOpts{HoldMin: s.HoldMinS, HoldMax: s.HoldMaxS, Crossfade: s.CrossfadeS})
	if err := selectStart(cfg, mgr, reg); err != nil {
		return nil, err
	}

	if drv == nil {
		if drv, err = OpenDriver(cfg, enc, n); err != nil {
			return nil, err
		}
	}
	log.Info().Str("driver", cfg.Driver).Str("order", enc.Order.String()).Str("policy", enc.Policy.String()).Msg("output ready")
	w := led.NewWorker(drv, led.WorkerOpts{
		Retries: cfg.Worker.Retries,
		Backoff: time.Duration(cfg.Worker.BackoffMs) * time.Millisecond,
	})

	q := command.NewQueue(command.DefaultQueueSize)
	hub := ws.NewHub(q)
	cond := NewConductor(mgr, enc, w, q, n, ConductorOpts{
		FPS:            cfg.FPS,
		Speed:          cfg.Speed,
		Sync:           !cfg.NoSync,
		Warn:           cfg.Warn,
		PrintFrameRate: cfg.PrintFrameRate,
		DebugMessages:  cfg.DebugMessages,
		FadeS:          s.FadeS,
		SpinRate:       s.SpinRate,
		SpinLEDs:       s.SpinLEDs,
		ShutdownSteps:  s.ShutdownSteps,
	})
	cond.Diag = hub
	if cfg.Role == "master" {
		cond.Pub = hub
	}
	lim := render.DefaultLimiter()
	lim.BudgetMA, lim.ChanMA, lim.WhiteCap = cfg.Power.BudgetMA, cfg.Power.LedChanMA, cfg.Power.WhiteCap
	cond.Limiter = &lim

	return &Core{
		Cfg:       cfg,
		Geometry:  geo,
		Registry:  reg,
		Queue:     q,
		Hub:       hub,
		Conductor: cond,
		Router:    api.NewRouter(cond, q, hub),
	}, nil
}

// selectStart picks the first thing to show: a single sprite, a scene or
// mode by name, or the attract rotation.
func selectStart(cfg *config.Config, mgr *render.Manager, reg *render.SpriteRegistry) error {
	switch {
	case cfg.Sprite != "":
		name, err := scenes.AddSprite(mgr.Catalog(), reg, cfg.Sprite)
		if err != nil {
			return &config.ValidationError{Field: "sprite", Reason: err.Error()}
		}
		return mgr.SelectScene(name)
	case cfg.Scene != "":
		if _, ok := mgr.Catalog().Mode(cfg.Scene); ok {
			_, err := mgr.SelectMode(cfg.Scene)
			return err
		}
		if err := mgr.SelectScene(cfg.Scene); err != nil {
			return &config.ValidationError{Field: "scene", Reason: err.Error()}
		}
		return nil
	}
	_, err := mgr.SelectMode(scenes.ModeAttract)
	return err
}

// Run serves HTTP, follows a master if configured and runs the frame loop
// until ctx is done or the strip fails.
func (c *Core) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.Hub.Run(ctx)

	if c.Cfg.Role == "follower" {
		go func() {
			if err := ws.Follow(ctx, c.Cfg.Follow, c.Queue); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("follow")
			}
		}()
	}

	var srv *http.Server
	if c.Cfg.Addr != "" {
		srv = &http.Server{Addr: c.Cfg.Addr, Handler: c.Router, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info().Str("addr", c.Cfg.Addr).Msg("http listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server")
			}
		}()
	}

	err := c.Conductor.Run(ctx)
	cancel()
	if srv != nil {
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	}
	return err
}
