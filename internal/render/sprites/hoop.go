package sprites

import (
	"math"

	"github.com/coreman2200/funtimes-treelights/internal/layout"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
	"github.com/coreman2200/funtimes-treelights/internal/render"
)

// Hoop is a coloured ring sliding up or down the tree, spread over the two
// rings nearest its radius.
type Hoop struct {
	Hue        float64
	Saturation float64
	Offset     float64
	Speed      float64 // tree heights per second
	Reverse    bool

	rings []layout.Ring
	dist  []float64
}

func NewHoop(env render.Env, hue, saturation, offset, speed float64) *Hoop {
	rings := env.Geometry.Rings()
	return &Hoop{
		Hue:        hue,
		Saturation: saturation,
		Offset:     offset,
		Speed:      speed,
		rings:      rings,
		dist:       make([]float64, len(rings)),
	}
}

// RandomHoop picks hue, speed and direction at random.
func RandomHoop(env render.Env) *Hoop {
	r := env.Rand
	h := NewHoop(env, r.Float64(), 0.5, -r.Float64()/10, float64(1+r.Intn(2))*0.1)
	h.Reverse = r.Float64() < 0.25
	return h
}

func (h *Hoop) Step(float64) {}

func (h *Hoop) Render(buf *pixel.Buffer, t float64) {
	if len(h.rings) == 0 {
		return
	}
	r0 := mod(h.Offset+h.Speed*t, 1)
	if h.Reverse {
		r0 = 1 - r0
	}
	for i, ring := range h.rings {
		h.dist[i] = math.Abs(ring.Radius - r0)
	}
	a, b := closestTwo(h.dist)
	sum := h.dist[a]
	if b >= 0 {
		sum += h.dist[b]
	}
	for _, i := range []int{a, b} {
		if i < 0 {
			continue
		}
		v := 1.0
		if sum > 0 {
			v = 1 - h.dist[i]/sum
		}
		buf.AddRangeHSV(h.rings[i].Start, h.rings[i].End, h.Hue, h.Saturation, v)
	}
}

// closestTwo returns the indices of the two smallest values; the second is
// -1 when there is only one.
func closestTwo(d []float64) (int, int) {
	a, b := -1, -1
	for i, v := range d {
		switch {
		case a < 0 || v < d[a]:
			a, b = i, a
		case b < 0 || v < d[b]:
			b = i
		}
	}
	return a, b
}
