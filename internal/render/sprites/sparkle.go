package sprites

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// Sparkle flashes a random handful of pixels, re-rolled every frame of
// virtual time.
type Sparkle struct {
	Chance float64 // per pixel, per roll

	n    int
	rnd  *rand.Rand
	last float64
	init bool
	idx  []int
	hsv  [][3]float64
}

func NewSparkle(n int, rnd *rand.Rand) *Sparkle {
	return &Sparkle{Chance: 0.001, n: n, rnd: rnd}
}

func (s *Sparkle) Step(t float64) {
	if s.init && math.Abs(t-s.last) < 1.0/framesPerSecond {
		return
	}
	s.init, s.last = true, t
	s.idx, s.hsv = s.idx[:0], s.hsv[:0]
	for i := 0; i < s.n; i++ {
		if s.rnd.Float64() < s.Chance {
			s.idx = append(s.idx, i)
			s.hsv = append(s.hsv, [3]float64{s.rnd.Float64(), 0.3, s.rnd.Float64()})
		}
	}
}

func (s *Sparkle) Render(buf *pixel.Buffer, _ float64) {
	for k, i := range s.idx {
		buf.AddHSV(i, s.hsv[k][0], s.hsv[k][1], s.hsv[k][2])
	}
}

// SparkleFade keeps Count white sparkles alive, each fading out over
// Lifetime seconds of virtual time.
type SparkleFade struct {
	Count    int
	Lifetime float64
	MaxV     float64

	n      int
	rnd    *rand.Rand
	active map[int]float64 // index -> activation time
}

func NewSparkleFade(n int, rnd *rand.Rand) *SparkleFade {
	return &SparkleFade{Count: 50, Lifetime: 0.8, MaxV: 0.5, n: n, rnd: rnd, active: map[int]float64{}}
}

func (s *SparkleFade) Step(t float64) {
	for i, at := range s.active {
		if math.Abs(t-at) > s.Lifetime {
			delete(s.active, i)
		}
	}
	if s.n == 0 {
		return
	}
	for k := s.Count - len(s.active); k > 0; k-- {
		i := s.rnd.Intn(s.n)
		at := t
		// stagger so they do not all die together
		if i > 10 {
			at -= s.rnd.Float64() * s.Lifetime * 0.5
		}
		s.active[i] = at
	}
}

func (s *SparkleFade) Render(buf *pixel.Buffer, t float64) {
	for i, at := range s.active {
		v := s.MaxV * (1 - math.Abs(t-at)/s.Lifetime)
		if v > 0 {
			buf.Add(i, pixel.Color{R: v, G: v, B: v})
		}
	}
}
