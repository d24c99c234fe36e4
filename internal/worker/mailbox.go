package worker

import (
	"sync"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// mailbox is an unbounded FIFO with one sending and one receiving side.
// Either side can hang up: close marks the sender gone, detach the receiver.
// Items queued before close are still delivered.
type mailbox[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	closed   bool
	detached bool
}

func newMailbox[T any]() *mailbox[T] {
	m := &mailbox[T]{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// send never blocks. It fails once either side has hung up.
func (m *mailbox[T]) send(v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.detached {
		return types.ErrSendFailed
	}
	m.items = append(m.items, v)
	m.cond.Signal()
	return nil
}

// recv blocks until an item arrives or the sender is gone.
func (m *mailbox[T]) recv() (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.items) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.items) == 0 {
		var zero T
		return zero, types.ErrChannelClosed
	}
	return m.pop(), nil
}

// tryRecv returns ok=false on an empty but connected mailbox and
// ErrChannelClosed on an empty one whose sender is gone.
func (m *mailbox[T]) tryRecv() (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	if len(m.items) > 0 {
		return m.pop(), true, nil
	}
	if m.closed {
		return zero, false, types.ErrChannelClosed
	}
	return zero, false, nil
}

// drain takes everything queued without blocking.
func (m *mailbox[T]) drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.items
	m.items = nil
	return out
}

func (m *mailbox[T]) close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.cond.Broadcast()
}

// detach drops queued items; later sends fail.
func (m *mailbox[T]) detach() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detached = true
	m.items = nil
}

func (m *mailbox[T]) pop() T {
	v := m.items[0]
	var zero T
	m.items[0] = zero
	m.items = m.items[1:]
	return v
}
