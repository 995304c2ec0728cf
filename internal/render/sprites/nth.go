package sprites

import (
	"math"

	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

// EveryNth lights evenly spaced grey pixels that crawl along the strip.
type EveryNth struct {
	Offset float64
	Value  float64

	n       int
	num     int
	spacing float64
	rate    float64
}

// NewEveryNth lights factor*n pixels.
func NewEveryNth(n int, offset, speed, factor, value float64) *EveryNth {
	num := int(float64(n) * factor)
	if num < 1 {
		num = 1
	}
	return &EveryNth{
		Offset:  offset,
		Value:   value,
		n:       n,
		num:     num,
		spacing: float64(n) / float64(num),
		rate:    framesPerSecond * speed,
	}
}

func (e *EveryNth) Step(float64) {}

func (e *EveryNth) Render(buf *pixel.Buffer, t float64) {
	if e.n == 0 {
		return
	}
	off := e.Offset + e.rate*t
	c := pixel.Color{R: e.Value, G: e.Value, B: e.Value}
	for i := 0; i < e.num; i++ {
		x := int(math.Floor(mod(off+e.spacing*float64(i), float64(e.n)) + positionEpsilon))
		buf.Add(pixel.Wrap(x, e.n), c)
	}
}
