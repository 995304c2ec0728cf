// Package sprites holds the animations scenes are built from. Speeds are
// given in pixels (or turns) per frame at 60 Hz and converted to per-second
// rates, so a speed of 1 moves one pixel per frame.
package sprites

import (
	"math"

	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

const framesPerSecond = 60

// positionEpsilon keeps float error from dropping a whole pixel when a
// position lands exactly on an integer.
const positionEpsilon = 1e-9

// Snake is a run of pixels fading in towards its head, moving along the
// strip and cycling hue as it goes.
type Snake struct {
	Offset     float64
	Saturation float64
	Brightness float64

	n         int
	rate      float64
	hueOffset float64
	run       []pixel.Color
}

func NewSnake(n int, offset, speed float64, length int) *Snake {
	if length < 1 {
		length = 1
	}
	return &Snake{
		Offset:     offset,
		Saturation: 1,
		Brightness: 1,
		n:          n,
		rate:       framesPerSecond * speed,
		hueOffset:  offset,
		run:        make([]pixel.Color, length),
	}
}

func (s *Snake) Len() int { return len(s.run) }

func (s *Snake) Step(float64) {}

// Tail returns the index of the dimmest pixel at time t. The snake covers
// Tail .. Tail+Len()-1, wrapping.
func (s *Snake) Tail(t float64) int {
	if s.n == 0 {
		return 0
	}
	return pixel.Wrap(int(math.Floor(s.Offset+s.rate*t+positionEpsilon)), s.n)
}

func (s *Snake) Render(buf *pixel.Buffer, t float64) {
	if s.n == 0 {
		return
	}
	pos := s.Offset + s.rate*t
	h := mod(0.5*(s.hueOffset+pos), float64(s.n)) / float64(s.n)
	base := pixel.HSV(h, s.Saturation, 1)
	for i := range s.run {
		s.run[i] = base.Scale(float64(i+1) / float64(len(s.run)) * s.Brightness)
	}
	buf.AddRun(s.Tail(t), s.run)
}

// mod is a floored modulo: the result has the sign of m.
func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
