package sprites

import (
	"math"

	"github.com/coreman2200/funtimes-treelights/internal/layout"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// Tunnel draws a band at a fixed angular distance from a rotating front
// angle. The band widens from the front towards the back, so seen from the
// front it looks like a tunnel opening up.
type Tunnel struct {
	FrontAngle float64
	BandAngle  float64
	BandWidth  float64

	geo *layout.Geometry
}

func NewTunnel(geo *layout.Geometry) *Tunnel {
	return &Tunnel{FrontAngle: 350, BandWidth: 15, geo: geo}
}

func (tu *Tunnel) Step(float64) {}

func (tu *Tunnel) Render(buf *pixel.Buffer, t float64) {
	band := mod(tu.BandAngle+4*framesPerSecond*t, 180)
	front := mod(tu.FrontAngle+framesPerSecond*t, 360)
	half := tu.BandWidth / 2
	c := pixel.HSV(band/90, 1, 0.2)
	for i := 0; i < tu.geo.Len(); i++ {
		if math.Abs(layout.AngleDistance(tu.geo.Angle(i), front)-band) < half {
			buf.Add(i, c)
		}
	}
}
