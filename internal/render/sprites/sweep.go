package sprites

import (
	"github.com/coreman2200/funtimes-treelights/internal/layout"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// Sweep is a vertical stripe circling the tree like a lighthouse beam,
// coloured by height.
type Sweep struct {
	Width float64 // degrees
	Value float64

	geo  *layout.Geometry
	rate float64
}

// NewSweep turns at speed degrees per frame.
func NewSweep(geo *layout.Geometry, speed float64) *Sweep {
	return &Sweep{Width: 30, Value: 0.6, geo: geo, rate: framesPerSecond * speed}
}

func (s *Sweep) Step(float64) {}

func (s *Sweep) Render(buf *pixel.Buffer, t float64) {
	angle := mod(s.rate*t, 360)
	half := s.Width / 2
	rings := float64(len(s.geo.Rings()))
	for i := 0; i < s.geo.Len(); i++ {
		d := layout.AngleDistance(s.geo.Angle(i), angle)
		if d >= half {
			continue
		}
		h := float64(s.geo.Ring(i)) / rings
		buf.AddHSV(i, h, 1, s.Value*(1-d/half))
	}
}
