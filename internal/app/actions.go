package app

import (
	"errors"

	"github.com/coreman2200/funtimes-treelights/internal/command"
	diag "github.com/coreman2200/funtimes-treelights/internal/diagnostics"
	"github.com/coreman2200/funtimes-treelights/internal/render"
	"github.com/coreman2200/funtimes-treelights/internal/render/scenes"
)

// handleMessages applies everything queued since the last frame. Bad
// messages are logged and dropped.
func (c *Conductor) handleMessages() {
	for _, raw := range c.Queue.Drain() {
		m, err := command.Decode(raw)
		if err != nil {
			c.msgLog.Warn().Err(err).Int("len", len(raw)).Msg("dropping message")
			c.pushDiag(diag.New(diag.Warn, diag.CodeBadMessage, "dropped message").With("error", err.Error()))
			continue
		}
		c.Apply(m)
	}
}

// Apply executes one decoded message.
func (c *Conductor) Apply(m command.Message) {
	switch m.Type {
	case command.TypeAction:
		c.msgLog.Debug().Str("action", m.Action).Msg("action")
		c.action(m.Action)
	case command.TypePing:
		c.msgLog.Info().Msg("pong")
	case command.TypePixels:
		if err := c.Mgr.SetSlaveFrame(m.LEDs); err != nil {
			c.msgLog.Warn().Err(err).Msg("dropping frame")
		}
	case command.TypeGameKey:
		c.wake()
		c.selectMode(scenes.ModeGame)
		keys := c.Mgr.PressKey(m.Key, m.State)
		c.msgLog.Debug().Bool("left", keys.Left).Bool("right", keys.Right).Bool("fire", keys.Fire).Msg("keys")
	}
}

func (c *Conductor) action(name string) {
	mods := &c.Mgr.Mods
	switch name {
	case "next":
		c.wake()
		if err := c.Mgr.NextScene(); err != nil {
			c.log.Error().Err(err).Msg("next scene")
		}
	case "toggle":
		if f := c.fade(); f != nil && f.Dimming() {
			f.Brighten()
		} else {
			c.dim()
		}
	case "off":
		c.dim()
	case "stop":
		mods.Add(render.NewStop())
	case "start", "resume", "on":
		c.wake()
	case "reverse":
		mods.Toggle(render.NewReverse())
	case "invert":
		mods.Toggle(render.NewInvert())
	case "spin":
		// restarts a spin already in progress
		mods.Remove(render.ModSpin)
		mods.Add(render.NewSpin(c.opts.SpinRate, c.opts.SpinLEDs))
	case "faster":
		c.log.Info().Float64("speed", c.state.ChangeSpeedBy(1.5)).Msg("set speed")
	case "slower":
		c.log.Info().Float64("speed", c.state.ChangeSpeedBy(1/1.5)).Msg("set speed")
	default:
		c.selectByName(name)
	}
}

// selectByName treats name as a mode, then as a scene.
func (c *Conductor) selectByName(name string) {
	cat := c.Mgr.Catalog()
	if _, ok := cat.Mode(name); ok || name == render.ModeSlave {
		c.selectMode(name)
		return
	}
	if cat.HasScene(name) {
		if err := c.Mgr.SelectScene(name); err != nil {
			c.log.Error().Err(err).Str("scene", name).Msg("select scene")
		}
		return
	}
	c.msgLog.Warn().Str("action", name).Msg("unknown action")
	c.pushDiag(diag.New(diag.Warn, diag.CodeUnknown, "unknown action").With("action", name))
}

func (c *Conductor) selectMode(name string) {
	changed, err := c.Mgr.SelectMode(name)
	switch {
	case errors.Is(err, render.ErrUnknownName):
		c.msgLog.Warn().Err(err).Msg("unknown mode")
	case err != nil:
		c.log.Error().Err(err).Str("mode", name).Msg("select mode")
	case changed:
		c.pushDiag(diag.New(diag.Info, diag.CodeScene, "mode selected").With("mode", name))
	}
}

func (c *Conductor) fade() *render.Fade {
	f, _ := c.Mgr.Mods.Get(render.ModFade).(*render.Fade)
	return f
}

func (c *Conductor) dim() {
	if f := c.fade(); f != nil {
		f.Dim()
		return
	}
	c.Mgr.Mods.Add(render.NewFade(c.opts.FadeS))
}

// wake clears stop and brings the strip back from off.
func (c *Conductor) wake() {
	c.Mgr.Mods.Remove(render.ModStop)
	if f := c.fade(); f != nil {
		f.Brighten()
	}
}
