package command

import (
	"context"
	"sync"
)

// Mailbox hands commands from any number of senders to a single receiver.
// It holds at most capacity commands; when full, Send discards the oldest
// pending command, so with capacity 1 only the newest command survives.
// Send never blocks.
type Mailbox struct {
	mu       sync.Mutex
	pending  []Command
	capacity int
	dropped  uint64
	ready    chan struct{}
}

// NewMailbox returns a mailbox holding up to capacity commands. Capacities
// below 1 are treated as 1.
func NewMailbox(capacity int) *Mailbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Mailbox{
		pending:  make([]Command, 0, capacity),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

func (m *Mailbox) Capacity() int { return m.capacity }

func (m *Mailbox) Send(c Command) {
	m.mu.Lock()
	if len(m.pending) == m.capacity {
		copy(m.pending, m.pending[1:])
		m.pending = m.pending[:len(m.pending)-1]
		m.dropped++
	}
	m.pending = append(m.pending, c)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// TryReceive returns the oldest pending command without waiting.
func (m *Mailbox) TryReceive() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return Command{}, false
	}
	c := m.pending[0]
	copy(m.pending, m.pending[1:])
	m.pending = m.pending[:len(m.pending)-1]
	return c, true
}

// Receive waits until a command is pending or ctx is done.
func (m *Mailbox) Receive(ctx context.Context) (Command, error) {
	for {
		if c, ok := m.TryReceive(); ok {
			return c, nil
		}
		select {
		case <-ctx.Done():
			return Command{}, ctx.Err()
		case <-m.ready:
		}
	}
}

// Len reports how many commands are waiting.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Dropped reports how many commands were overwritten before being received.
func (m *Mailbox) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}
