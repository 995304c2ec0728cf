package fake

import (
	"sync"
	"time"

	"github.com/coreman2200/funtimes-treelights/internal/led"
	"github.com/rs/zerolog/log"
)

// Driver records frames instead of sending them anywhere. It backs the
// "null" driver and the tests.
type Driver struct {
	Keep  int           // frames to retain, 0 keeps none
	Delay time.Duration // simulated transfer time per write
	Fail  error         // returned by Write while FailN > 0 (or always if FailN < 0)
	FailN int

	mu     sync.Mutex
	count  int
	frames [][]byte
	closed bool
}

func (d *Driver) Write(frame []byte) error {
	if d.Delay > 0 {
		time.Sleep(d.Delay)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return led.ErrClosed
	}
	if d.Fail != nil && d.FailN != 0 {
		if d.FailN > 0 {
			d.FailN--
		}
		return d.Fail
	}
	d.count++
	if d.Keep > 0 {
		cp := make([]byte, len(frame))
		copy(cp, frame)
		d.frames = append(d.frames, cp)
		if len(d.frames) > d.Keep {
			d.frames = d.frames[1:]
		}
	}
	if d.count%600 == 0 {
		var sum int
		for _, b := range frame {
			sum += int(b)
		}
		log.Debug().Int("frame", d.count).Int("bytes", len(frame)).
			Float64("avg", float64(sum)/float64(max(1, len(frame)))).Msg("fake driver")
	}
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Count is the number of successful writes.
func (d *Driver) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Frames returns the retained frames, oldest first.
func (d *Driver) Frames() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.frames))
	copy(out, d.frames)
	return out
}

// Last returns the most recent retained frame, or nil.
func (d *Driver) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[len(d.frames)-1]
}

func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
