package preview

import (
	"image"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-treelights/internal/led"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/screen1d"
)

// Driver decodes APA102 frames and draws them on a display, used in place
// of the strip when no SPI port is present. Output is throttled because a
// terminal cannot keep up with the frame rate.
type Driver struct {
	enc      led.Encoder
	n        int
	dst      display.Drawer
	throttle time.Duration

	mu       sync.Mutex
	lastEmit time.Time
	img      *image.NRGBA
}

// NewTerminal previews n pixels as a single line of ANSI colour blocks.
func NewTerminal(enc led.Encoder, n int) *Driver {
	return New(screen1d.New(&screen1d.Opts{X: n}), enc, n)
}

func New(dst display.Drawer, enc led.Encoder, n int) *Driver {
	return &Driver{
		enc:      enc,
		n:        n,
		dst:      dst,
		throttle: 50 * time.Millisecond, // ~20 FPS
		img:      image.NewNRGBA(image.Rect(0, 0, n, 1)),
	}
}

func (d *Driver) Write(frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if d.lastEmit.Add(d.throttle).After(now) {
		return nil
	}
	d.lastEmit = now

	px, err := d.enc.Decode(frame, d.n)
	if err != nil {
		return err
	}
	for i, c := range px {
		d.img.SetNRGBA(i, 0, c)
	}
	return d.dst.Draw(d.dst.Bounds(), d.img, image.Point{})
}

func (d *Driver) Close() error {
	return d.dst.Halt()
}
