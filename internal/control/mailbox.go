package control

import (
	"context"
	"sync"
)

// Sender is the producing side of a mailbox.
type Sender interface {
	Send(msg Message) error
}

// Receiver is the consuming side of a mailbox.
type Receiver interface {
	Recv(ctx context.Context) (Message, error)
}

// Mailbox is an unbounded FIFO queue of control messages with any number
// of producers and a single consumer.
//
// Send never blocks. Recv blocks until a message arrives, the context is
// cancelled, or the mailbox is closed and drained.
//
// Thread Safety: Send, Close and Len are safe for concurrent use.
// Recv must only be called from one goroutine.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Message
	closed bool

	// ready holds at most one wake-up for the receiver.
	ready chan struct{}
}

// NewMailbox creates an empty, open mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		ready: make(chan struct{}, 1),
	}
}

// Send appends msg to the queue.
//
// Returns:
//   - error: ErrClosed if the mailbox has been closed
func (m *Mailbox) Send(msg Message) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	m.wake()
	return nil
}

// Recv removes and returns the oldest message.
//
// Messages queued before Close are still delivered; ErrClosed is returned
// only once the queue is empty.
//
// Returns:
//   - Message: the oldest queued message
//   - error: ctx.Err() on cancellation, ErrClosed when closed and drained
func (m *Mailbox) Recv(ctx context.Context) (Message, error) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			msg := m.queue[0]
			m.queue[0] = Message{}
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return msg, nil
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return Message{}, ErrClosed
		}

		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-m.ready:
		}
	}
}

// Close stops the mailbox accepting messages and wakes the receiver.
// Calling Close more than once is a no-op.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wake()
}

// Len returns the number of queued messages.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Mailbox) wake() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}
