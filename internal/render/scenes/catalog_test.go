package scenes

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-treelights/internal/config"
	"github.com/coreman2200/funtimes-treelights/internal/layout"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
	"github.com/coreman2200/funtimes-treelights/internal/render"
	"github.com/coreman2200/funtimes-treelights/internal/render/sprites"
)

func treeEnv(t *testing.T) render.Env {
	t.Helper()
	samples, err := config.DefaultCalibration().Samples()
	require.NoError(t, err)
	g, err := layout.Build(samples, config.DefaultCalibration().Pixels.Count)
	require.NoError(t, err)
	return render.Env{Geometry: g, Rand: rand.New(rand.NewSource(3))}
}

func TestEveryScene(t *testing.T) {
	env := treeEnv(t)
	cat, err := New(map[string]string{"glow": sprites.Rainbow})
	require.NoError(t, err)

	for _, name := range cat.Scenes() {
		s, err := cat.Scene(name, env)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name)
		buf := pixel.New(env.Len())
		for _, ts := range []float64{0, 0.5, 3, 1.25} {
			s.Step(ts)
			s.Render(buf, ts)
		}
		require.NoError(t, s.Close())
	}
}

func TestModes(t *testing.T) {
	cat, err := New(nil)
	require.NoError(t, err)
	attract, ok := cat.Mode(ModeAttract)
	require.True(t, ok)
	assert.ElementsMatch(t, Attract, attract)
	game, ok := cat.Mode(ModeGame)
	require.True(t, ok)
	assert.Equal(t, []string{"game"}, game)
	assert.Equal(t, []string{ModeAttract, ModeGame}, cat.Modes())
}

func TestScriptScenes(t *testing.T) {
	_, err := New(map[string]string{"bad": "function render("})
	assert.Error(t, err)

	_, err = New(map[string]string{"tunnel": sprites.Rainbow})
	assert.Error(t, err)

	cat, err := New(map[string]string{"norender": "x = 1"})
	require.NoError(t, err)
	_, err = cat.Scene("norender", treeEnv(t))
	assert.Error(t, err)
}

func TestAddSprite(t *testing.T) {
	env := treeEnv(t)
	cat, err := New(nil)
	require.NoError(t, err)
	reg := sprites.NewRegistry()

	name, err := AddSprite(cat, reg, "sweep")
	require.NoError(t, err)
	assert.Equal(t, "sprite:sweep", name)
	s, err := cat.Scene(name, env)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = AddSprite(cat, reg, "nope")
	assert.True(t, errors.Is(err, render.ErrUnknownName))
}
