package led_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coreman2200/funtimes-treelights/internal/driver/fake"
	"github.com/coreman2200/funtimes-treelights/internal/led"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerWritesInOrder(t *testing.T) {
	d := &fake.Driver{Keep: 10}
	w := led.NewWorker(d, led.DefaultWorkerOpts())
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Enqueue(context.Background(), []byte{byte(i)}))
	}
	require.NoError(t, w.Close())

	assert.Equal(t, [][]byte{{0}, {1}, {2}, {3}, {4}}, d.Frames())
	assert.Equal(t, uint64(5), w.Written())
}

func TestWorkerCloseDrainsAndReleases(t *testing.T) {
	d := &fake.Driver{Keep: 2, Delay: 20 * time.Millisecond}
	w := led.NewWorker(d, led.DefaultWorkerOpts())
	require.NoError(t, w.Enqueue(context.Background(), []byte{1}))
	require.NoError(t, w.Enqueue(context.Background(), []byte{2}))

	done := make(chan error)
	go func() { done <- w.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
	assert.Equal(t, 2, d.Count())
	assert.True(t, d.Closed())

	assert.ErrorIs(t, w.Enqueue(context.Background(), []byte{3}), led.ErrWorkerClosed)
	assert.NoError(t, w.Close())
}

func TestWorkerRetries(t *testing.T) {
	d := &fake.Driver{Fail: errors.New("bus busy"), FailN: 2}
	w := led.NewWorker(d, led.WorkerOpts{Retries: 3, Backoff: time.Millisecond})
	require.NoError(t, w.Enqueue(context.Background(), []byte{1}))
	require.NoError(t, w.Close())

	assert.Equal(t, 1, d.Count())
	select {
	case err := <-w.Err():
		t.Fatalf("unexpected error %v", err)
	default:
	}
}

func TestWorkerSurfacesFailure(t *testing.T) {
	boom := errors.New("spi gone")
	d := &fake.Driver{Fail: boom, FailN: -1}
	w := led.NewWorker(d, led.WorkerOpts{Retries: 1, Backoff: time.Millisecond})
	defer w.Close()

	require.NoError(t, w.Enqueue(context.Background(), []byte{1}))
	select {
	case err := <-w.Err():
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("no error surfaced")
	}
	assert.Equal(t, uint64(1), w.Failed())
}

func TestWorkerBackpressure(t *testing.T) {
	d := &fake.Driver{Delay: 300 * time.Millisecond}
	w := led.NewWorker(d, led.DefaultWorkerOpts())
	defer w.Close()

	require.NoError(t, w.Enqueue(context.Background(), []byte{1}))
	require.NoError(t, w.Enqueue(context.Background(), []byte{2}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Enqueue(ctx, []byte{3}), context.DeadlineExceeded)
}
