package command

import (
	"sync"
	"sync/atomic"
)

// DefaultQueueSize bounds how many raw messages wait between two frames.
const DefaultQueueSize = 256

// Queue carries raw messages from the transports to the frame loop. Push
// never blocks: when full the oldest message is dropped.
type Queue struct {
	mu      sync.Mutex
	items   [][]byte
	size    int
	dropped atomic.Uint64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{size: size}
}

func (q *Queue) Push(msg []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.size {
		q.items = q.items[1:]
		q.dropped.Add(1)
	}
	q.items = append(q.items, msg)
}

// PushMessage encodes m and queues it.
func (q *Queue) PushMessage(m Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	q.Push(b)
	return nil
}

// Drain returns everything queued so far, oldest first.
func (q *Queue) Drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped counts messages discarded because the queue was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
