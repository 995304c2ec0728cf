package render

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// ModeSlave mirrors frames supplied from outside instead of rendering.
const ModeSlave = "slave"

var ErrFrameSize = errors.New("render: frame size does not match strip")

type State int

const (
	Idle State = iota
	Active
	Transitioning
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Transitioning:
		return "transitioning"
	}
	return "idle"
}

// ManagerOpts are in wall-clock seconds.
type ManagerOpts struct {
	HoldMin   float64 // shortest time a scene is shown in a rotating mode
	HoldMax   float64
	Crossfade float64 // length of a scene transition
}

func DefaultManagerOpts() ManagerOpts {
	return ManagerOpts{HoldMin: 400.0 / 60, HoldMax: 800.0 / 60, Crossfade: 1}
}

// Manager picks the scene to show, crossfades between scenes and hosts the
// modifier stack.
type Manager struct {
	Mods ModifierStack

	env  Env
	cat  *Catalog
	opts ManagerOpts

	mode       string
	candidates []string
	current    *Scene
	next       *Scene
	fade       float64
	hold       float64

	slave   *pixel.Buffer
	scratch *pixel.Buffer
	keys    GameKeys
}

func NewManager(env Env, cat *Catalog, opts ManagerOpts) *Manager {
	if opts.Crossfade <= 0 {
		opts.Crossfade = 1
	}
	if opts.HoldMax < opts.HoldMin {
		opts.HoldMax = opts.HoldMin
	}
	n := env.Len()
	return &Manager{
		env:     env,
		cat:     cat,
		opts:    opts,
		slave:   pixel.New(n),
		scratch: pixel.New(n),
	}
}

func (m *Manager) State() State {
	switch {
	case m.current == nil:
		return Idle
	case m.next != nil:
		return Transitioning
	}
	return Active
}

func (m *Manager) Mode() string      { return m.mode }
func (m *Manager) Slave() bool       { return m.mode == ModeSlave }
func (m *Manager) Fade() float64     { return m.fade }
func (m *Manager) Keys() GameKeys    { return m.keys }
func (m *Manager) Catalog() *Catalog { return m.cat }

// Current is the name of the scene on show, or "".
func (m *Manager) Current() string { return sceneName(m.current) }

// Next is the name of the scene being faded in, or "".
func (m *Manager) Next() string { return sceneName(m.next) }

func sceneName(s *Scene) string {
	if s == nil {
		return ""
	}
	return s.Name
}

// SelectMode switches to a catalog mode or to ModeSlave. It reports whether
// the mode changed; selecting the current mode is a no-op.
func (m *Manager) SelectMode(name string) (bool, error) {
	if name == m.mode {
		return false, nil
	}
	if name == ModeSlave {
		log.Info().Str("mode", name).Msg("slave mode")
		m.mode, m.candidates = name, nil
		m.dropScenes()
		return true, nil
	}
	scenes, ok := m.cat.Mode(name)
	if !ok {
		return false, fmt.Errorf("%w: mode %q", ErrUnknownName, name)
	}
	log.Info().Str("mode", name).Msg("selecting mode")
	m.mode, m.candidates = name, scenes
	return true, m.NextScene()
}

// SelectScene shows a single scene with no rotation.
func (m *Manager) SelectScene(name string) error {
	if !m.cat.HasScene(name) {
		return fmt.Errorf("%w: scene %q", ErrUnknownName, name)
	}
	m.mode, m.candidates = name, []string{name}
	if m.Current() == name && m.next == nil {
		return nil
	}
	return m.switchTo(name)
}

// NextScene starts a transition to a random candidate other than the
// current scene. With a single candidate it only starts that one.
func (m *Manager) NextScene() error {
	others := make([]string, 0, len(m.candidates))
	for _, c := range m.candidates {
		if m.current == nil || c != m.current.Name {
			others = append(others, c)
		}
	}
	m.resetHold()
	if len(others) == 0 {
		return nil
	}
	return m.switchTo(others[m.env.Rand.Intn(len(others))])
}

func (m *Manager) resetHold() {
	m.hold = m.opts.HoldMin + m.env.Rand.Float64()*(m.opts.HoldMax-m.opts.HoldMin)
}

func (m *Manager) switchTo(name string) error {
	s, err := m.cat.Scene(name, m.env)
	if err != nil {
		return err
	}
	log.Info().Str("scene", name).Msg("selecting scene")
	if m.current == nil {
		m.current = s
		return nil
	}
	// a new request while fading restarts the transition towards s
	closeScene(m.next)
	m.next, m.fade = s, 0
	return nil
}

// Tick advances the hold timer and the crossfade by dt wall-clock seconds.
func (m *Manager) Tick(dt float64) {
	if m.Slave() || m.current == nil {
		return
	}
	if m.next != nil {
		m.fade += dt / m.opts.Crossfade
		if m.fade >= 1 {
			closeScene(m.current)
			m.current, m.next, m.fade = m.next, nil, 0
		}
	}
	if len(m.candidates) > 1 {
		m.hold -= dt
		if m.hold <= 0 {
			if err := m.NextScene(); err != nil {
				log.Error().Err(err).Msg("next scene")
			}
		}
	}
}

func (m *Manager) Step(t float64) {
	if m.current != nil {
		m.current.Step(t)
	}
	if m.next != nil {
		m.next.Step(t)
	}
}

// Render draws the current frame into buf. In slave mode that is the last
// frame received.
func (m *Manager) Render(buf *pixel.Buffer, t float64) {
	if m.Slave() {
		buf.CopyFrom(m.slave)
		return
	}
	buf.Clear()
	if m.current != nil {
		m.current.Render(buf, t)
	}
	if m.next != nil {
		m.scratch.Clear()
		m.next.Render(m.scratch, t)
		pixel.Mix(buf, buf, m.scratch, m.fade)
	}
}

// SetSlaveFrame switches to slave mode and stores a flat r,g,b frame.
func (m *Manager) SetSlaveFrame(leds []float64) error {
	if len(leds) != m.slave.Len()*3 {
		return fmt.Errorf("%w: got %d values for %d pixels", ErrFrameSize, len(leds), m.slave.Len())
	}
	if _, err := m.SelectMode(ModeSlave); err != nil {
		return err
	}
	m.slave.SetFloats(leds)
	return nil
}

// PressKey records one key change and passes it to the scenes. A press of
// left or right is delivered once; releases move nothing. Fire goes out as
// held state.
func (m *Manager) PressKey(key string, down bool) GameKeys {
	ev := GameKeys{}
	switch key {
	case "left":
		m.keys.Left = down
		ev.Left = down
	case "right":
		m.keys.Right = down
		ev.Right = down
	case "fire":
		m.keys.Fire = down
	}
	ev.Fire = m.keys.Fire
	m.dispatchKeys(ev)
	return m.keys
}

// HandleGameKeys replaces the held state and hands it to the scenes as is.
func (m *Manager) HandleGameKeys(k GameKeys) {
	m.keys = k
	m.dispatchKeys(k)
}

func (m *Manager) dispatchKeys(k GameKeys) {
	if m.current != nil {
		m.current.HandleKeys(k)
	}
	if m.next != nil {
		m.next.HandleKeys(k)
	}
}

// Close releases the scenes.
func (m *Manager) Close() error {
	err := errors.Join(closeSceneErr(m.current), closeSceneErr(m.next))
	m.current, m.next = nil, nil
	return err
}

func (m *Manager) dropScenes() {
	if err := m.Close(); err != nil {
		log.Warn().Err(err).Msg("close scene")
	}
	m.fade = 0
}

func closeScene(s *Scene) {
	if err := closeSceneErr(s); err != nil {
		log.Warn().Err(err).Str("scene", s.Name).Msg("close scene")
	}
}

func closeSceneErr(s *Scene) error {
	if s == nil {
		return nil
	}
	return s.Close()
}
