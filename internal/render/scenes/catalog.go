// Package scenes defines the named scenes and the modes that rotate
// through them.
package scenes

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/coreman2200/funtimes-treelights/internal/render"
	"github.com/coreman2200/funtimes-treelights/internal/render/sprites"
)

const (
	ModeAttract = "attract"
	ModeGame    = "game"
)

// Attract is the default rotation.
var Attract = []string{"multi", "snakes", "nth", "sparkle", "tunnel", "hoops", "drops", "sweep"}

// SpritePrefix names the single-sprite scenes added by AddSprite.
const SpritePrefix = "sprite:"

func fixed(sp ...render.Sprite) render.SceneFunc {
	return func(render.Env) (*render.Scene, error) { return render.NewScene("", sp...), nil }
}

func snakes(env render.Env, n int) []render.Sprite {
	out := make([]render.Sprite, 0, n)
	for i := 0; i < n; i++ {
		dir := 1.0
		if env.Rand.Intn(2) == 0 {
			dir = -1
		}
		offset := float64(i) * float64(env.Len()) / float64(n)
		out = append(out, sprites.NewSnake(env.Len(), offset, (1+0.3*float64(i))/4*dir, 10))
	}
	return out
}

func repeat(n int, fn func(env render.Env) render.Sprite) render.SceneFunc {
	return func(env render.Env) (*render.Scene, error) {
		sp := make([]render.Sprite, n)
		for i := range sp {
			sp[i] = fn(env)
		}
		return render.NewScene("", sp...), nil
	}
}

// New builds the catalog: the built-in scenes, one scene per Lua script and
// the attract and game modes. Scripts are compiled once here so a broken
// one fails at startup.
func New(scripts map[string]string) (*render.Catalog, error) {
	cat := render.NewCatalog()

	cat.AddScene("empty", fixed())
	cat.AddScene("nth", func(env render.Env) (*render.Scene, error) {
		n := env.Len()
		return render.NewScene("",
			sprites.NewEveryNth(n, 0, 0.25, 0.1, 0.5),
			sprites.NewEveryNth(n, 0, 0.25, 0.101, 0.5),
		), nil
	})
	cat.AddScene("sparkle", func(env render.Env) (*render.Scene, error) {
		return render.NewScene("",
			sprites.NewSparkle(env.Len(), env.Rand),
			sprites.NewSparkleFade(env.Len(), env.Rand),
		), nil
	})
	cat.AddScene("gradient", func(env render.Env) (*render.Scene, error) {
		return render.NewScene("",
			sprites.NewHoop(env, 0, 0.5, 0, 0.1),
			sprites.NewHoop(env, 1.0/3, 0.5, 0.25, 0.1),
			sprites.NewHoop(env, 2.0/3, 0.5, 0.5, 0.1),
			sprites.NewHoop(env, 0, 0, 0.75, 0.1),
		), nil
	})
	cat.AddScene("tunnel", func(env render.Env) (*render.Scene, error) {
		return render.NewScene("", sprites.NewTunnel(env.Geometry)), nil
	})
	cat.AddScene("hoops", repeat(3, func(env render.Env) render.Sprite { return sprites.RandomHoop(env) }))
	cat.AddScene("drops", repeat(10, func(env render.Env) render.Sprite {
		return sprites.NewDroplet(env.Geometry, env.Rand)
	}))
	cat.AddScene("game", func(env render.Env) (*render.Scene, error) {
		return render.NewScene("", sprites.NewWalk(env.Len())), nil
	})
	cat.AddScene("sweep", func(env render.Env) (*render.Scene, error) {
		return render.NewScene("", sprites.NewSweep(env.Geometry, 2)), nil
	})
	cat.AddScene("snakes", func(env render.Env) (*render.Scene, error) {
		return render.NewScene("", snakes(env, 15)...), nil
	})
	cat.AddScene("multi", func(env render.Env) (*render.Scene, error) {
		sp := snakes(env, 15)
		sp = append(sp,
			sprites.NewEveryNth(env.Len(), 0, 0.25, 0.1, 0.3),
			sprites.NewSparkleFade(env.Len(), env.Rand),
		)
		return render.NewScene("", sp...), nil
	})
	cat.AddScene("calib", fixed(&sprites.IndexSweep{Rate: 60}))
	cat.AddScene("rgb", fixed(sprites.ChannelTest{}))

	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if cat.HasScene(name) {
			return nil, fmt.Errorf("scenes: script %q shadows a built-in scene", name)
		}
		code := scripts[name]
		if err := compile(name, code); err != nil {
			return nil, err
		}
		cat.AddScene(name, func(env render.Env) (*render.Scene, error) {
			s, err := sprites.NewScript(name, code, env.Geometry)
			if err != nil {
				return nil, err
			}
			return render.NewScene("", s), nil
		})
	}

	if err := cat.AddMode(ModeAttract, Attract...); err != nil {
		return nil, err
	}
	if err := cat.AddMode(ModeGame, "game"); err != nil {
		return nil, err
	}
	return cat, nil
}

func compile(name, code string) error {
	L := lua.NewState()
	defer L.Close()
	if _, err := L.LoadString(code); err != nil {
		return fmt.Errorf("scenes: script %q: %w", name, err)
	}
	return nil
}

// AddSprite adds a scene showing one registered sprite and returns its
// name.
func AddSprite(cat *render.Catalog, reg *render.SpriteRegistry, sprite string) (string, error) {
	if _, ok := reg.Kind(sprite); !ok {
		return "", fmt.Errorf("%w: sprite %q", render.ErrUnknownName, sprite)
	}
	name := SpritePrefix + sprite
	cat.AddScene(name, func(env render.Env) (*render.Scene, error) {
		sp, err := reg.New(sprite, env)
		if err != nil {
			return nil, err
		}
		return render.NewScene("", sp), nil
	})
	return name, nil
}
