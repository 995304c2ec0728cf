package sprites

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-treelights/internal/layout"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// Droplet falls from the top of the tree down one random side, lighting
// the two pixels nearest its radius. It respawns once past the bottom.
type Droplet struct {
	Speed float64 // radius units per second

	geo     *layout.Geometry
	rnd     *rand.Rand
	started bool
	start   float64
	offset  float64
	hue     float64
	indices []int
	dist    []float64
}

func NewDroplet(geo *layout.Geometry, rnd *rand.Rand) *Droplet {
	return &Droplet{Speed: 0.3, geo: geo, rnd: rnd}
}

func (d *Droplet) pos(t float64) float64 { return d.offset + (t-d.start)*d.Speed }

func (d *Droplet) Step(t float64) {
	if d.started && t >= d.start && d.pos(t) < 1.2 {
		return
	}
	d.started, d.start = true, t
	d.offset = -0.3 + d.rnd.Float64()*0.2
	d.hue = d.rnd.Float64()
	d.indices = d.geo.IndicesNearAngle(d.rnd.Float64() * 360)
	d.dist = make([]float64, len(d.indices))
}

func (d *Droplet) Render(buf *pixel.Buffer, t float64) {
	if len(d.indices) == 0 {
		return
	}
	p := d.pos(t)
	for k, i := range d.indices {
		d.dist[k] = math.Abs(d.geo.Radius(i) - p)
	}
	a, b := closestTwo(d.dist)
	weight := func(k int) float64 { return math.Pow(1-d.dist[k], 2) }
	sum := weight(a)
	if b >= 0 {
		sum += weight(b)
	}
	if sum <= 0 {
		return
	}
	for _, k := range []int{a, b} {
		if k >= 0 {
			buf.AddHSV(d.indices[k], d.hue, 0, weight(k)/sum)
		}
	}
}
