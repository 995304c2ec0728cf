package led

import "errors"

// ErrClosed is returned by drivers written to after Close.
var ErrClosed = errors.New("led: driver closed")

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes one encoded frame (start frame, pixel frames, trailer)
	// to hardware. The driver must not retain frame after returning.
	Write(frame []byte) error
	// Close releases resources.
	Close() error
}
