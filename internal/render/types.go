package render

import (
	"fmt"
	"math/rand"

	"github.com/coreman2200/funtimes-treelights/internal/layout"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// Sprite is one animation. Step is always called before Render for the same
// t. t is virtual time in seconds and may stand still or run backwards.
type Sprite interface {
	Step(t float64)
	Render(buf *pixel.Buffer, t float64)
}

// GameKeys is controller state. The manager keeps it as held keys; what
// sprites receive per message carries only that message's Left or Right
// press, with Fire as held.
type GameKeys struct {
	Left, Right, Fire bool
}

// KeyHandler is implemented by sprites that react to the controller.
type KeyHandler interface {
	HandleKeys(k GameKeys)
}

// Env is what sprites may read while being built.
type Env struct {
	Geometry *layout.Geometry
	Rand     *rand.Rand
}

func (e Env) Len() int { return e.Geometry.Len() }

// Kind enumerates the sprite implementations.
type Kind int

const (
	KindSnake Kind = iota
	KindEveryNth
	KindHoop
	KindSparkle
	KindSparkleFade
	KindTunnel
	KindDroplet
	KindSweep
	KindWalk
	KindSolid
	KindIndexSweep
	KindChannelTest
	KindScript
	numKinds
)

var kindNames = [numKinds]string{
	"snake", "every_nth", "hoop", "sparkle", "sparkle_fade", "tunnel",
	"droplet", "sweep", "walk", "solid", "index_sweep", "channel_test", "script",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) Valid() bool { return k >= 0 && k < numKinds }

// SpriteFunc builds a sprite with its default settings.
type SpriteFunc func(env Env) (Sprite, error)

type spriteEntry struct {
	kind Kind
	New  SpriteFunc
}

// SpriteRegistry maps stable names to sprite constructors.
type SpriteRegistry struct{ m map[string]spriteEntry }

func NewSpriteRegistry() *SpriteRegistry { return &SpriteRegistry{m: map[string]spriteEntry{}} }

func (r *SpriteRegistry) Register(name string, kind Kind, fn SpriteFunc) {
	if fn == nil {
		return
	}
	r.m[name] = spriteEntry{kind: kind, New: fn}
}

func (r *SpriteRegistry) New(name string, env Env) (Sprite, error) {
	e, ok := r.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: sprite %q", ErrUnknownName, name)
	}
	return e.New(env)
}

func (r *SpriteRegistry) Kind(name string) (Kind, bool) {
	e, ok := r.m[name]
	return e.kind, ok
}

// List returns the registered names, sorted.
func (r *SpriteRegistry) List() []string { return sortedKeys(r.m) }

// Validate checks every entry names a known kind and every kind has at
// least one entry.
func (r *SpriteRegistry) Validate() error {
	seen := make([]bool, numKinds)
	for name, e := range r.m {
		if !e.kind.Valid() {
			return fmt.Errorf("render: sprite %q has invalid %s", name, e.kind)
		}
		seen[e.kind] = true
	}
	for k, ok := range seen {
		if !ok {
			return fmt.Errorf("render: no sprite registered for kind %s", Kind(k))
		}
	}
	return nil
}
