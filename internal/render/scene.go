package render

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

var ErrUnknownName = errors.New("render: unknown name")

// Scene is a fixed set of sprites rendered together.
type Scene struct {
	Name    string
	sprites []Sprite
}

func NewScene(name string, sprites ...Sprite) *Scene {
	return &Scene{Name: name, sprites: sprites}
}

func (s *Scene) Len() int { return len(s.sprites) }

func (s *Scene) Step(t float64) {
	for _, sp := range s.sprites {
		sp.Step(t)
	}
}

// Render adds every sprite into buf.
func (s *Scene) Render(buf *pixel.Buffer, t float64) {
	for _, sp := range s.sprites {
		sp.Render(buf, t)
	}
}

func (s *Scene) HandleKeys(k GameKeys) {
	for _, sp := range s.sprites {
		if h, ok := sp.(KeyHandler); ok {
			h.HandleKeys(k)
		}
	}
}

// Close releases sprites that hold resources.
func (s *Scene) Close() error {
	var errs []error
	for _, sp := range s.sprites {
		if c, ok := sp.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// SceneFunc builds a fresh scene. It must be cheap and free of side effects
// beyond the scene itself.
type SceneFunc func(env Env) (*Scene, error)

// Catalog holds the named scenes and modes (named sets of scenes).
type Catalog struct {
	scenes map[string]SceneFunc
	modes  map[string][]string
}

func NewCatalog() *Catalog {
	return &Catalog{scenes: map[string]SceneFunc{}, modes: map[string][]string{}}
}

func (c *Catalog) AddScene(name string, fn SceneFunc) { c.scenes[name] = fn }

// AddMode defines a mode over existing scenes.
func (c *Catalog) AddMode(name string, scenes ...string) error {
	if len(scenes) == 0 {
		return fmt.Errorf("render: mode %q has no scenes", name)
	}
	for _, s := range scenes {
		if _, ok := c.scenes[s]; !ok {
			return fmt.Errorf("%w: mode %q uses scene %q", ErrUnknownName, name, s)
		}
	}
	c.modes[name] = append([]string(nil), scenes...)
	return nil
}

func (c *Catalog) HasScene(name string) bool {
	_, ok := c.scenes[name]
	return ok
}

func (c *Catalog) Scene(name string, env Env) (*Scene, error) {
	fn, ok := c.scenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: scene %q", ErrUnknownName, name)
	}
	s, err := fn(env)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}
	s.Name = name
	return s, nil
}

func (c *Catalog) Mode(name string) ([]string, bool) {
	s, ok := c.modes[name]
	return s, ok
}

func (c *Catalog) Scenes() []string { return sortedKeys(c.scenes) }
func (c *Catalog) Modes() []string  { return sortedKeys(c.modes) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
