package pixel

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is one LED in linear light. Channels are nominally 0..1 but are only
// clamped when encoded.
type Color struct{ R, G, B float64 }

var Black = Color{}

// Scale returns c with every channel multiplied by s.
func (c Color) Scale(s float64) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Max returns the largest channel.
func (c Color) Max() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// HSV converts hue (0..1, wrapping), saturation and value to a Color.
func HSV(h, s, v float64) Color {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	c := colorful.Hsv(h*360, s, v)
	return Color{R: c.R, G: c.G, B: c.B}
}

// Buffer is the frame for a strip of fixed length. Index order is the order
// along the strip.
type Buffer struct {
	px []Color
}

func New(n int) *Buffer {
	return &Buffer{px: make([]Color, n)}
}

func (b *Buffer) Len() int { return len(b.px) }

// At returns the colour at i, or black when i is off the strip.
func (b *Buffer) At(i int) Color {
	if i < 0 || i >= len(b.px) {
		return Black
	}
	return b.px[i]
}

// Colors exposes the backing slice. Callers must not keep it across frames.
func (b *Buffer) Colors() []Color { return b.px }

func (b *Buffer) Set(i int, c Color) {
	if i < 0 || i >= len(b.px) {
		return
	}
	b.px[i] = c
}

// Add accumulates c into pixel i, saturating each channel to [0,1].
func (b *Buffer) Add(i int, c Color) {
	if i < 0 || i >= len(b.px) {
		return
	}
	p := &b.px[i]
	p.R = clamp01(p.R + c.R)
	p.G = clamp01(p.G + c.G)
	p.B = clamp01(p.B + c.B)
}

func (b *Buffer) AddHSV(i int, h, s, v float64) {
	b.Add(i, HSV(h, s, v))
}

// AddRange adds c to every pixel in [lo, hi).
func (b *Buffer) AddRange(lo, hi int, c Color) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(b.px) {
		hi = len(b.px)
	}
	for i := lo; i < hi; i++ {
		b.Add(i, c)
	}
}

func (b *Buffer) AddRangeHSV(lo, hi int, h, s, v float64) {
	b.AddRange(lo, hi, HSV(h, s, v))
}

// AddRun adds cs starting at index start, wrapping past the end of the strip.
func (b *Buffer) AddRun(start int, cs []Color) {
	n := len(b.px)
	if n == 0 {
		return
	}
	for k, c := range cs {
		b.Add(Wrap(start+k, n), c)
	}
}

func (b *Buffer) Clear() {
	for i := range b.px {
		b.px[i] = Black
	}
}

func (b *Buffer) Fill(c Color) {
	for i := range b.px {
		b.px[i] = c
	}
}

// Scale multiplies every channel by s.
func (b *Buffer) Scale(s float64) {
	for i := range b.px {
		b.px[i] = b.px[i].Scale(s)
	}
}

// Invert replaces every channel v with 1-clamp(v).
func (b *Buffer) Invert() {
	for i := range b.px {
		p := &b.px[i]
		p.R = 1 - clamp01(p.R)
		p.G = 1 - clamp01(p.G)
		p.B = 1 - clamp01(p.B)
	}
}

// Rotate shifts the frame k pixels towards index 0, wrapping: after the call
// pixel i holds what pixel i+k held.
func (b *Buffer) Rotate(k int) {
	n := len(b.px)
	if n == 0 {
		return
	}
	k = Wrap(k, n)
	if k == 0 {
		return
	}
	tmp := make([]Color, n)
	copy(tmp, b.px[k:])
	copy(tmp[n-k:], b.px[:k])
	copy(b.px, tmp)
}

// CopyFrom copies src into b. Extra pixels on either side are left alone.
func (b *Buffer) CopyFrom(src *Buffer) {
	copy(b.px, src.px)
}

// Floats returns the frame as a flat r,g,b,... slice.
func (b *Buffer) Floats() []float64 {
	out := make([]float64, 0, len(b.px)*3)
	for _, p := range b.px {
		out = append(out, p.R, p.G, p.B)
	}
	return out
}

// SetFloats loads a flat r,g,b,... slice. It reports false and leaves b
// untouched if the length does not match the strip.
func (b *Buffer) SetFloats(v []float64) bool {
	if len(v) != len(b.px)*3 {
		return false
	}
	for i := range b.px {
		b.px[i] = Color{R: v[i*3], G: v[i*3+1], B: v[i*3+2]}
	}
	return true
}

// Wrap reduces i into [0, n).
func Wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
