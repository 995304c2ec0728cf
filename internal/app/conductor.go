package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-treelights/internal/api"
	"github.com/coreman2200/funtimes-treelights/internal/command"
	diag "github.com/coreman2200/funtimes-treelights/internal/diagnostics"
	"github.com/coreman2200/funtimes-treelights/internal/led"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
	"github.com/coreman2200/funtimes-treelights/internal/render"
)

// Publisher receives every output frame as flat r,g,b.
type Publisher interface {
	Publish(leds []float64)
}

type ConductorOpts struct {
	FPS            int
	Speed          float64
	Sync           bool
	Warn           bool // log frames slower than the target rate
	PrintFrameRate bool
	DebugMessages  bool
	FadeS          float64
	SpinRate       float64
	SpinLEDs       int
	ShutdownSteps  int
}

// Conductor is the frame loop. All scene, modifier and buffer state is
// touched only from the goroutine running Run (or calling Frame).
type Conductor struct {
	Mgr     *render.Manager
	Enc     led.Encoder
	Worker  *led.Worker
	Queue   *command.Queue
	Limiter *render.Limiter
	Pub     Publisher // nil unless publishing frames
	Diag    diag.Sink

	opts  ConductorOpts
	state SchedulerState
	ideal time.Duration
	step  float64 // ideal frame period in seconds

	scene *pixel.Buffer // last scene render, reused while stopped
	out   *pixel.Buffer // scene after modifiers, what gets encoded

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)

	last        time.Time
	lastPrinted time.Time
	health      atomic.Pointer[api.Health]

	log    zerolog.Logger
	msgLog zerolog.Logger
}

func NewConductor(mgr *render.Manager, enc led.Encoder, w *led.Worker, q *command.Queue, n int, opts ConductorOpts) *Conductor {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	msgLevel := zerolog.InfoLevel
	if opts.DebugMessages {
		msgLevel = zerolog.DebugLevel
	}
	c := &Conductor{
		Mgr:    mgr,
		Enc:    enc,
		Worker: w,
		Queue:  q,
		opts:   opts,
		state:  NewSchedulerState(opts.Speed, opts.Sync),
		ideal:  time.Second / time.Duration(opts.FPS),
		step:   1 / float64(opts.FPS),
		scene:  pixel.New(n),
		out:    pixel.New(n),
		now:    time.Now,
		sleep:  sleepCtx,
		log:    log.With().Str("component", "conductor").Logger(),
		msgLog: log.With().Str("component", "messages").Logger().Level(msgLevel).
			Sample(&zerolog.BurstSampler{Burst: 10, Period: time.Second}),
	}
	c.publishHealth()
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// State returns a copy of the scheduler state.
func (c *Conductor) State() SchedulerState { return c.state }

// Output is the buffer last sent to the strip.
func (c *Conductor) Output() *pixel.Buffer { return c.out }

// Run renders frames until ctx is done or the strip fails, then fades the
// strip out and closes the worker. It returns nil on a clean stop.
func (c *Conductor) Run(ctx context.Context) error {
	c.log.Info().Int("fps", c.opts.FPS).Bool("sync", c.state.Sync).Msg("frame loop start")
	var err error
	for ctx.Err() == nil {
		start := c.now()
		if err = c.Frame(ctx); err != nil {
			break
		}
		c.pace(ctx, start)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if serr := c.Shutdown(); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Frame runs one tick: commands, scene, modifiers, encode and hand-off.
func (c *Conductor) Frame(ctx context.Context) error {
	now := c.now()
	dt := c.step
	if !c.last.IsZero() {
		dt = now.Sub(c.last).Seconds()
		c.state.RecordDelta(dt)
	}
	c.last = now

	c.handleMessages()

	select {
	case err := <-c.Worker.Err():
		c.pushDiag(diag.Hardware(err))
		return err
	default:
	}

	if !c.frozen() {
		c.Mgr.Tick(dt)
	}
	t := c.state.VirtualTime
	if c.Mgr.Slave() || !c.Mgr.Mods.Has(render.ModStop) {
		c.Mgr.Step(t)
		c.Mgr.Render(c.scene, t)
	}
	c.out.CopyFrom(c.scene)
	if !c.Mgr.Slave() {
		c.Mgr.Mods.PostRender(c.out, render.Frame{T: t, DT: dt})
		if c.Limiter != nil {
			c.Limiter.Apply(c.out)
		}
	}

	if err := c.Worker.Enqueue(ctx, c.Enc.Encode(c.out)); err != nil {
		return fmt.Errorf("enqueue frame: %w", err)
	}
	if c.Pub != nil {
		c.Pub.Publish(c.out.Floats())
	}

	c.state.VirtualTime += c.Mgr.Mods.TransformTime(c.step * c.state.Speed)
	c.state.Frame++
	c.report(now)
	c.publishHealth()
	return nil
}

// frozen reports whether scene rotation is held: stopped, or faded fully
// off. Hold timers and crossfades resume where they left off.
func (c *Conductor) frozen() bool {
	if c.Mgr.Mods.Has(render.ModStop) {
		return true
	}
	f := c.fade()
	return f != nil && f.Off()
}

// pace sleeps out the rest of the frame period. Slave mode and no-sync
// skip the sleep so mirrored frames go out as soon as they arrive.
func (c *Conductor) pace(ctx context.Context, start time.Time) {
	elapsed := c.now().Sub(start)
	if elapsed < c.ideal {
		if c.state.Sync && !c.Mgr.Slave() {
			c.sleep(ctx, c.ideal-elapsed)
		}
		return
	}
	if c.opts.Warn {
		c.log.Warn().Dur("frame", elapsed).Msg("frame lagging")
		c.pushDiag(diag.FrameLag(elapsed, c.ideal))
	}
}

func (c *Conductor) report(now time.Time) {
	if !c.opts.PrintFrameRate {
		return
	}
	if c.lastPrinted.IsZero() {
		c.lastPrinted = now
		return
	}
	if now.Sub(c.lastPrinted) > time.Second {
		fps := c.state.AverageFPS()
		c.log.Info().Float64("fps", fps).Msg("frame rate")
		c.pushDiag(diag.New(diag.Info, diag.CodeFrameRate, "frame rate").With("fps", fps))
		c.lastPrinted = now
	}
}

// Shutdown fades the last frame to black, clears the strip and closes the
// worker.
func (c *Conductor) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 0; i < c.opts.ShutdownSteps; i++ {
		c.out.Scale(0.8)
		if err := c.Worker.Enqueue(ctx, c.Enc.Encode(c.out)); err != nil {
			break
		}
		c.sleep(ctx, c.ideal)
	}
	c.out.Clear()
	if err := c.Worker.Enqueue(ctx, c.Enc.Encode(c.out)); err != nil && !errors.Is(err, led.ErrWorkerClosed) {
		c.log.Warn().Err(err).Msg("clear strip")
	}
	err := c.Worker.Close()
	if cerr := c.Mgr.Close(); cerr != nil {
		c.log.Warn().Err(cerr).Msg("close scenes")
	}
	c.log.Info().Uint64("frames", c.state.Frame).Uint64("written", c.Worker.Written()).Msg("frame loop stopped")
	return err
}

// Health is safe to call from any goroutine.
func (c *Conductor) Health() api.Health {
	if h := c.health.Load(); h != nil {
		return *h
	}
	return api.Health{}
}

// Names lists the catalog.
func (c *Conductor) Names() ([]string, []string) {
	cat := c.Mgr.Catalog()
	return cat.Scenes(), cat.Modes()
}

func (c *Conductor) publishHealth() {
	kinds := c.Mgr.Mods.Kinds()
	mods := make([]string, len(kinds))
	for i, k := range kinds {
		mods[i] = k.String()
	}
	h := &api.Health{
		FrameID:     c.state.Frame,
		FPS:         c.state.AverageFPS(),
		Mode:        c.Mgr.Mode(),
		Scene:       c.Mgr.Current(),
		Next:        c.Mgr.Next(),
		Modifiers:   mods,
		Speed:       c.state.Speed,
		VirtualTime: c.state.VirtualTime,
		Pixels:      c.out.Len(),
		Written:     c.Worker.Written(),
		Failed:      c.Worker.Failed(),
	}
	c.health.Store(h)
}

func (c *Conductor) pushDiag(d diag.Diagnostic) {
	if c.Diag != nil {
		c.Diag.PushDiag(d)
	}
}
