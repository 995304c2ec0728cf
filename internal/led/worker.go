package led

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrWorkerClosed = errors.New("led: worker closed")

type WorkerOpts struct {
	Retries int           // extra attempts per frame after the first failure
	Backoff time.Duration // delay before the first retry, doubled each time
}

func DefaultWorkerOpts() WorkerOpts {
	return WorkerOpts{Retries: 3, Backoff: 5 * time.Millisecond}
}

type message struct {
	frame []byte
	close bool
}

// Worker owns a Driver and writes frames to it from its own goroutine. The
// queue holds one frame, so the producer is never more than one frame ahead
// of the hardware.
type Worker struct {
	drv  Driver
	opts WorkerOpts
	log  zerolog.Logger

	frames chan message
	errs   chan error
	done   chan struct{}

	closed    atomic.Bool
	written   atomic.Uint64
	failed    atomic.Uint64
	closeOnce sync.Once
	closeErr  error
}

func NewWorker(drv Driver, opts WorkerOpts) *Worker {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	w := &Worker{
		drv:    drv,
		opts:   opts,
		log:    log.With().Str("component", "led-worker").Logger().Sample(&zerolog.BurstSampler{Burst: 5, Period: time.Second}),
		frames: make(chan message, 1),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue hands frame to the worker. The worker owns frame afterwards. It
// blocks only while a previous frame is still queued.
func (w *Worker) Enqueue(ctx context.Context, frame []byte) error {
	if w.closed.Load() {
		return ErrWorkerClosed
	}
	select {
	case w.frames <- message{frame: frame}:
		return nil
	case <-w.done:
		return ErrWorkerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err delivers write failures that survived all retries. Only the most
// recent unread failure is kept.
func (w *Worker) Err() <-chan error { return w.errs }

// Written is the number of frames the driver accepted.
func (w *Worker) Written() uint64 { return w.written.Load() }

// Failed is the number of frames dropped after exhausting retries.
func (w *Worker) Failed() uint64 { return w.failed.Load() }

// Close queues the close sentinel behind any pending frame, waits for the
// worker to exit and then closes the driver. Safe to call more than once.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		w.frames <- message{close: true}
		<-w.done
		w.closeErr = w.drv.Close()
	})
	return w.closeErr
}

func (w *Worker) run() {
	defer close(w.done)
	for m := range w.frames {
		if m.close {
			return
		}
		if err := w.write(m.frame); err != nil {
			w.failed.Add(1)
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Worker) write(frame []byte) error {
	delay := w.opts.Backoff
	var err error
	for attempt := 0; attempt <= w.opts.Retries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay *= 2
		}
		if err = w.drv.Write(frame); err == nil {
			w.written.Add(1)
			return nil
		}
		w.log.Warn().Err(err).Int("attempt", attempt+1).Msg("frame write failed")
	}
	return fmt.Errorf("led: write failed after %d attempts: %w", w.opts.Retries+1, err)
}
