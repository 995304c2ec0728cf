package sprites

import (
	"math"

	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// Calibration patterns, used when measuring the angle table.

// Solid adds one colour to every pixel.
type Solid struct {
	Color pixel.Color
}

func (s *Solid) Step(float64) {}

func (s *Solid) Render(buf *pixel.Buffer, _ float64) {
	buf.AddRange(0, buf.Len(), s.Color)
}

// IndexSweep walks a single white pixel down the strip at Rate pixels per
// second, so each index can be found on the tree.
type IndexSweep struct {
	Rate float64
}

func (s *IndexSweep) Step(float64) {}

// Index is the lit pixel at t on a strip of n.
func (s *IndexSweep) Index(t float64, n int) int {
	return pixel.Wrap(int(math.Floor(s.Rate*t+positionEpsilon)), n)
}

func (s *IndexSweep) Render(buf *pixel.Buffer, t float64) {
	if buf.Len() == 0 {
		return
	}
	buf.Add(s.Index(t, buf.Len()), pixel.Color{R: 1, G: 1, B: 1})
}

// ChannelTest fills the strip red, green and blue in turn, one second
// each, to check the wire colour order.
type ChannelTest struct{}

func (ChannelTest) Step(float64) {}

func (ChannelTest) Render(buf *pixel.Buffer, t float64) {
	var c pixel.Color
	switch int(mod(math.Floor(t), 3)) {
	case 0:
		c.R = 1
	case 1:
		c.G = 1
	default:
		c.B = 1
	}
	buf.AddRange(0, buf.Len(), c)
}
