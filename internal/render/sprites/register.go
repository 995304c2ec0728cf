package sprites

import (
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
	"github.com/coreman2200/funtimes-treelights/internal/render"
)

// Register adds every sprite, with its default settings, to reg.
func Register(reg *render.SpriteRegistry) {
	reg.Register("snake", render.KindSnake, func(env render.Env) (render.Sprite, error) {
		return NewSnake(env.Len(), 0, 1, 10), nil
	})
	reg.Register("every_nth", render.KindEveryNth, func(env render.Env) (render.Sprite, error) {
		return NewEveryNth(env.Len(), 0, 0.25, 0.02, 0.5), nil
	})
	reg.Register("hoop", render.KindHoop, func(env render.Env) (render.Sprite, error) {
		return RandomHoop(env), nil
	})
	reg.Register("sparkle", render.KindSparkle, func(env render.Env) (render.Sprite, error) {
		return NewSparkle(env.Len(), env.Rand), nil
	})
	reg.Register("sparkle_fade", render.KindSparkleFade, func(env render.Env) (render.Sprite, error) {
		return NewSparkleFade(env.Len(), env.Rand), nil
	})
	reg.Register("tunnel", render.KindTunnel, func(env render.Env) (render.Sprite, error) {
		return NewTunnel(env.Geometry), nil
	})
	reg.Register("droplet", render.KindDroplet, func(env render.Env) (render.Sprite, error) {
		return NewDroplet(env.Geometry, env.Rand), nil
	})
	reg.Register("sweep", render.KindSweep, func(env render.Env) (render.Sprite, error) {
		return NewSweep(env.Geometry, 2), nil
	})
	reg.Register("walk", render.KindWalk, func(env render.Env) (render.Sprite, error) {
		return NewWalk(env.Len()), nil
	})
	reg.Register("solid", render.KindSolid, func(env render.Env) (render.Sprite, error) {
		return &Solid{Color: pixel.Color{R: 0.2, G: 0.2, B: 0.2}}, nil
	})
	reg.Register("index_sweep", render.KindIndexSweep, func(env render.Env) (render.Sprite, error) {
		return &IndexSweep{Rate: framesPerSecond}, nil
	})
	reg.Register("channel_test", render.KindChannelTest, func(env render.Env) (render.Sprite, error) {
		return ChannelTest{}, nil
	})
	reg.Register("rainbow", render.KindScript, func(env render.Env) (render.Sprite, error) {
		return NewScript("rainbow", Rainbow, env.Geometry)
	})
}

// NewRegistry returns a registry with every sprite registered.
func NewRegistry() *render.SpriteRegistry {
	reg := render.NewSpriteRegistry()
	Register(reg)
	return reg
}
