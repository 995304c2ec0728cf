package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// RingAngle is the angle whose crossings split the strip into rings.
const RingAngle = 180.0

var ErrNoSamples = errors.New("layout: no calibration samples")

// Pixel is the derived position of one LED.
type Pixel struct {
	Index  int
	Angle  float64 // degrees, [0,360)
	Radius float64 // 1 at index 0, towards 0 at the far end
	Ring   int
}

// Ring is a run of consecutive pixels [Start, End) at roughly the same radius.
type Ring struct {
	Index  int
	Start  int
	End    int
	Radius float64 // mean radius of the members
}

// Geometry maps strip indices to angle/radius/ring. Read-only after Build.
type Geometry struct {
	angles []float64
	radii  []float64
	rings  []int
	ringTb []Ring
}

type sample struct {
	index int
	angle float64
}

// Build interpolates sparse index->angle samples over a strip of n pixels.
// Samples may sit at any non-negative index, including n itself.
func Build(samples map[int]float64, n int) (*Geometry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("layout: invalid pixel count %d", n)
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	ss := make([]sample, 0, len(samples))
	for i, a := range samples {
		if i < 0 {
			return nil, fmt.Errorf("layout: negative sample index %d", i)
		}
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, fmt.Errorf("layout: sample %d has invalid angle", i)
		}
		ss = append(ss, sample{index: i, angle: a})
	}
	sort.Slice(ss, func(i, j int) bool { return ss[i].index < ss[j].index })

	// Unwind: each non-increasing step is another turn around the tree.
	unwound := make([]float64, len(ss))
	winds := 0.0
	for k := range ss {
		if k > 0 && ss[k].angle <= ss[k-1].angle {
			winds += 360
		}
		unwound[k] = ss[k].angle + winds
	}

	g := &Geometry{
		angles: make([]float64, n),
		radii:  make([]float64, n),
		rings:  make([]int, n),
	}
	k := 0
	for i := 0; i < n; i++ {
		for k < len(ss)-1 && ss[k+1].index <= i {
			k++
		}
		switch {
		case ss[k].index == i:
			g.angles[i] = Normalize(ss[k].angle)
		case i < ss[0].index:
			g.angles[i] = Normalize(ss[0].angle)
		case k == len(ss)-1:
			g.angles[i] = Normalize(ss[k].angle)
		default:
			lo, hi := ss[k], ss[k+1]
			ratio := float64(i-lo.index) / float64(hi.index-lo.index)
			g.angles[i] = Normalize(unwound[k]*(1-ratio) + unwound[k+1]*ratio)
		}
		g.radii[i] = 1 - float64(i)/float64(n)
	}
	g.buildRings()
	return g, nil
}

func (g *Geometry) buildRings() {
	n := len(g.angles)
	ring := 0
	start := 0
	var sum float64
	flush := func(end int) {
		g.ringTb = append(g.ringTb, Ring{Index: ring, Start: start, End: end, Radius: sum / float64(end-start)})
	}
	for i := 0; i < n; i++ {
		if i > 0 && crosses(g.angles[i-1], g.angles[i], RingAngle) {
			flush(i)
			ring++
			start = i
			sum = 0
		}
		g.rings[i] = ring
		sum += g.radii[i]
	}
	flush(n)
}

// crosses reports whether the step a->b passes through ref (landing on ref
// counts, leaving it does not).
func crosses(a, b, ref float64) bool {
	da := signedDelta(a, ref)
	db := signedDelta(b, ref)
	if math.Abs(db-da) > 180 {
		// jumped across the antipode, not across ref
		return false
	}
	return (da < 0 && db >= 0) || (da > 0 && db <= 0)
}

// signedDelta returns a-ref folded into (-180, 180].
func signedDelta(a, ref float64) float64 {
	d := math.Mod(a-ref, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

func (g *Geometry) Len() int { return len(g.angles) }

func (g *Geometry) Angle(i int) float64  { return g.angles[i] }
func (g *Geometry) Radius(i int) float64 { return g.radii[i] }
func (g *Geometry) Ring(i int) int       { return g.rings[i] }

func (g *Geometry) Pixel(i int) Pixel {
	return Pixel{Index: i, Angle: g.angles[i], Radius: g.radii[i], Ring: g.rings[i]}
}

// Rings returns a copy of the ring table.
func (g *Geometry) Rings() []Ring {
	out := make([]Ring, len(g.ringTb))
	copy(out, g.ringTb)
	return out
}

// IndicesNearAngle returns, for each ring, the pixel closest to angle.
func (g *Geometry) IndicesNearAngle(angle float64) []int {
	out := make([]int, 0, len(g.ringTb))
	for _, r := range g.ringTb {
		best, bestD := r.Start, math.Inf(1)
		for i := r.Start; i < r.End; i++ {
			if d := AngleDistance(g.angles[i], angle); d < bestD {
				best, bestD = i, d
			}
		}
		out = append(out, best)
	}
	return out
}

// AngleDistance is the circular distance between two angles, in [0,180].
func AngleDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

// Normalize folds an angle into [0,360).
func Normalize(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
