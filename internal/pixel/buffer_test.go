package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSaturates(t *testing.T) {
	b := New(3)
	b.Add(1, Color{R: 0.7, G: 0.2})
	b.Add(1, Color{R: 0.7, G: 0.2, B: -1})
	assert.Equal(t, Color{R: 1, G: 0.4, B: 0}, b.At(1))
	assert.Equal(t, Black, b.At(0))
}

func TestOutOfRangeIgnored(t *testing.T) {
	b := New(2)
	b.Set(-1, Color{R: 1})
	b.Add(2, Color{R: 1})
	assert.Equal(t, []Color{{}, {}}, b.Colors())
	assert.Equal(t, Black, b.At(5))
}

func TestAddRunWraps(t *testing.T) {
	b := New(4)
	b.AddRun(3, []Color{{R: 1}, {G: 1}})
	assert.Equal(t, Color{R: 1}, b.At(3))
	assert.Equal(t, Color{G: 1}, b.At(0))
}

func TestRotate(t *testing.T) {
	b := New(4)
	for i := 0; i < 4; i++ {
		b.Set(i, Color{R: float64(i)})
	}
	b.Rotate(1)
	assert.Equal(t, []Color{{R: 1}, {R: 2}, {R: 3}, {R: 0}}, b.Colors())
	b.Rotate(-1)
	assert.Equal(t, []Color{{R: 0}, {R: 1}, {R: 2}, {R: 3}}, b.Colors())
}

func TestFloatsRoundTrip(t *testing.T) {
	b := New(2)
	b.Set(0, Color{R: 0.1, G: 0.2, B: 0.3})
	b.Set(1, Color{R: 1})
	c := New(2)
	assert.True(t, c.SetFloats(b.Floats()))
	assert.Equal(t, b.Colors(), c.Colors())
	assert.False(t, c.SetFloats([]float64{1, 2}))
}

func TestHSVPrimaries(t *testing.T) {
	c := HSV(0, 1, 1)
	assert.InDelta(t, 1, c.R, 1e-9)
	assert.InDelta(t, 0, c.G, 1e-9)
	c = HSV(1.0/3, 1, 0.5)
	assert.InDelta(t, 0.5, c.G, 1e-9)
	assert.InDelta(t, 0, c.R, 1e-9)
	// hue wraps
	assert.Equal(t, HSV(0.25, 1, 1), HSV(1.25, 1, 1))
}

func TestMixAlpha(t *testing.T) {
	n := 10
	a, b, dst := New(n), New(n), New(n)
	a.Fill(Color{R: 1}) // red
	b.Fill(Color{B: 1}) // blue

	Mix(dst, a, b, 0)
	assert.Equal(t, a.Colors(), dst.Colors())
	Mix(dst, a, b, 1)
	assert.Equal(t, b.Colors(), dst.Colors())
	Mix(dst, a, b, 0.5)
	for _, c := range dst.Colors() {
		assert.Equal(t, Color{R: 0.5, B: 0.5}, c)
	}
}
