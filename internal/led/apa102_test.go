package led

import (
	"image/color"
	"testing"

	"github.com/coreman2200/funtimes-treelights/internal/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBlackFixed(t *testing.T) {
	const n = 10
	frame := NewEncoder().Encode(pixel.New(n))
	require.Len(t, frame, FrameLen(n))

	assert.Equal(t, []byte{0, 0, 0, 0}, frame[:4])
	for i := 0; i < n; i++ {
		assert.Equal(t, []byte{0xFF, 0, 0, 0}, frame[4+4*i:8+4*i], "pixel %d", i)
	}
	for _, b := range frame[4+4*n:] {
		assert.Equal(t, byte(0xFF), b)
	}
}

func TestTrailerLen(t *testing.T) {
	for n, want := range map[int]int{0: 4, 10: 4, 64: 4, 65: 5, 900: 57} {
		assert.Equal(t, want, TrailerLen(n), "n=%d", n)
	}
}

func TestEncodeChannelOrder(t *testing.T) {
	buf := pixel.New(1)
	buf.Set(0, pixel.Color{R: 1})

	e := NewEncoder()
	assert.Equal(t, []byte{0xFF, 0, 0, 255}, e.Encode(buf)[4:8])

	e.Order = Order{'R', 'G', 'B'}
	assert.Equal(t, []byte{0xFF, 255, 0, 0}, e.Encode(buf)[4:8])
}

func TestEncodeGammaAndClamp(t *testing.T) {
	buf := pixel.New(1)
	buf.Set(0, pixel.Color{R: 0.5, G: 2, B: -1})
	e := NewEncoder()
	e.Brightness = 7
	assert.Equal(t, []byte{0xE7, 0, 255, 45}, e.Encode(buf)[4:8])
}

func TestEncodeAdaptive(t *testing.T) {
	buf := pixel.New(2)
	buf.Set(0, pixel.Color{R: 0.5})
	e := NewEncoder()
	e.Policy = Adaptive
	frame := e.Encode(buf)
	// ceil(31*0.5) = 16, 255 * 0.5^2.5 * 31/16 = 87.3
	assert.Equal(t, []byte{0xE0 | 16, 0, 0, 87}, frame[4:8])
	// black keeps the minimum brightness field
	assert.Equal(t, []byte{0xE1, 0, 0, 0}, frame[8:12])
}

func TestDecode(t *testing.T) {
	buf := pixel.New(2)
	buf.Set(0, pixel.Color{R: 1, G: 1, B: 1})
	e := NewEncoder()
	got, err := e.Decode(e.Encode(buf), 2)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, got[0])
	assert.Equal(t, color.NRGBA{A: 255}, got[1])

	_, err = e.Decode([]byte{0, 0, 0, 0}, 2)
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestParse(t *testing.T) {
	o, err := ParseOrder("rgb")
	require.NoError(t, err)
	assert.Equal(t, "RGB", o.String())
	_, err = ParseOrder("RRB")
	assert.Error(t, err)

	p, err := ParsePolicy("Adaptive")
	require.NoError(t, err)
	assert.Equal(t, Adaptive, p)
	_, err = ParsePolicy("loud")
	assert.Error(t, err)
}
