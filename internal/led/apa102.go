package led

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/coreman2200/funtimes-treelights/internal/pixel"
)

const (
	DefaultGamma  = 2.5
	MaxBrightness = 31

	startFrameLen = 4
	headerBits    = 0xE0
)

var ErrShortFrame = errors.New("led: frame too short")

// Policy selects how the 5-bit per-pixel brightness field is used.
type Policy int

const (
	// Fixed sends every pixel at the same global brightness and carries all
	// dynamic range in the 8-bit channels.
	Fixed Policy = iota
	// Adaptive picks the smallest brightness that can still hold the
	// brightest channel and rescales the channels to fill 8 bits. Dim colours
	// keep more resolution at the cost of per-pixel current steps.
	Adaptive
)

func (p Policy) String() string {
	if p == Adaptive {
		return "adaptive"
	}
	return "fixed"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "fixed":
		return Fixed, nil
	case "adaptive":
		return Adaptive, nil
	}
	return Fixed, fmt.Errorf("led: unknown brightness policy %q", s)
}

// Order is the wire position of each colour channel, e.g. "BGR".
type Order [3]byte

var BGR = Order{'B', 'G', 'R'}

func ParseOrder(s string) (Order, error) {
	if s == "" {
		return BGR, nil
	}
	s = strings.ToUpper(s)
	if len(s) != 3 || !strings.ContainsRune(s, 'R') || !strings.ContainsRune(s, 'G') || !strings.ContainsRune(s, 'B') {
		return Order{}, fmt.Errorf("led: invalid colour order %q", s)
	}
	return Order{s[0], s[1], s[2]}, nil
}

func (o Order) String() string { return string(o[:]) }

// Encoder turns a pixel buffer into an APA102 byte stream.
type Encoder struct {
	Gamma      float64
	Policy     Policy
	Brightness uint8 // used by Fixed, 0..31
	Order      Order
}

func NewEncoder() Encoder {
	return Encoder{Gamma: DefaultGamma, Policy: Fixed, Brightness: MaxBrightness, Order: BGR}
}

// FrameLen is the encoded size for n pixels.
func FrameLen(n int) int {
	return startFrameLen + 4*n + TrailerLen(n)
}

// TrailerLen is the number of 0xFF bytes clocked after the last pixel. Each
// LED delays the data by half a clock, so n/2 extra clocks (n/16 bytes) are
// needed for the last pixel to latch; never fewer than 4.
func TrailerLen(n int) int {
	t := (n + 15) / 16
	if t < 4 {
		t = 4
	}
	return t
}

// Encode returns a freshly allocated frame for buf.
func (e Encoder) Encode(buf *pixel.Buffer) []byte {
	px := buf.Colors()
	out := make([]byte, FrameLen(len(px)))
	off := startFrameLen
	for _, c := range px {
		bright, ch := e.pixel(c)
		out[off] = headerBits | bright
		for k := 0; k < 3; k++ {
			switch e.order()[k] {
			case 'R':
				out[off+1+k] = ch[0]
			case 'G':
				out[off+1+k] = ch[1]
			default:
				out[off+1+k] = ch[2]
			}
		}
		off += 4
	}
	for ; off < len(out); off++ {
		out[off] = 0xFF
	}
	return out
}

func (e Encoder) order() Order {
	if e.Order == (Order{}) {
		return BGR
	}
	return e.Order
}

func (e Encoder) gamma() float64 {
	if e.Gamma <= 0 {
		return DefaultGamma
	}
	return e.Gamma
}

// pixel returns the brightness field and gamma-mapped r,g,b bytes.
func (e Encoder) pixel(c pixel.Color) (uint8, [3]byte) {
	raw := [3]float64{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
	g := e.gamma()
	var out [3]byte
	if e.Policy == Adaptive {
		peak := math.Max(raw[0], math.Max(raw[1], raw[2]))
		bright := int(math.Ceil(MaxBrightness * peak))
		if bright < 1 {
			bright = 1
		}
		scale := float64(MaxBrightness) / float64(bright)
		for k, v := range raw {
			out[k] = quantize(math.Pow(v, g) * scale)
		}
		return uint8(bright), out
	}
	for k, v := range raw {
		out[k] = quantize(math.Pow(v, g))
	}
	b := e.Brightness
	if b > MaxBrightness {
		b = MaxBrightness
	}
	return b, out
}

// Decode reads n pixels back out of an encoded frame, folding the brightness
// field into the channels. It is used by previews, not the hardware path.
func (e Encoder) Decode(frame []byte, n int) ([]color.NRGBA, error) {
	if len(frame) < startFrameLen+4*n {
		return nil, ErrShortFrame
	}
	out := make([]color.NRGBA, n)
	for i := 0; i < n; i++ {
		p := frame[startFrameLen+4*i:]
		scale := float64(p[0]&MaxBrightness) / MaxBrightness
		var rgb [3]uint8
		for k := 0; k < 3; k++ {
			v := uint8(math.Round(float64(p[1+k]) * scale))
			switch e.order()[k] {
			case 'R':
				rgb[0] = v
			case 'G':
				rgb[1] = v
			default:
				rgb[2] = v
			}
		}
		out[i] = color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}
	}
	return out, nil
}

func quantize(v float64) byte {
	v = math.Round(255 * v)
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return byte(v)
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
