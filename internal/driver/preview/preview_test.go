package preview

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/coreman2200/funtimes-treelights/internal/led"
	"github.com/coreman2200/funtimes-treelights/internal/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	img    *image.NRGBA
	draws  int
	halted bool
}

func (r *recorder) String() string          { return "recorder" }
func (r *recorder) Halt() error             { r.halted = true; return nil }
func (r *recorder) ColorModel() color.Model { return color.NRGBAModel }
func (r *recorder) Bounds() image.Rectangle { return r.img.Bounds() }
func (r *recorder) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	r.draws++
	draw.Draw(r.img, dstRect, src, sp, draw.Src)
	return nil
}

func TestPreviewDrawsDecodedFrame(t *testing.T) {
	rec := &recorder{img: image.NewNRGBA(image.Rect(0, 0, 3, 1))}
	enc := led.NewEncoder()
	d := New(rec, enc, 3)

	buf := pixel.New(3)
	buf.Set(1, pixel.Color{G: 1})
	require.NoError(t, d.Write(enc.Encode(buf)))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, rec.img.NRGBAAt(1, 0))

	// throttled
	require.NoError(t, d.Write(enc.Encode(buf)))
	assert.Equal(t, 1, rec.draws)

	require.NoError(t, d.Close())
	assert.True(t, rec.halted)
}
