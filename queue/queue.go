// Package queue provides the bounded multi-producer, single-consumer queue
// carrying payments from producers to the aggregator.
//
// The queue is closed implicitly: it enters its closing state once every
// Sender handle has been released, and the Receiver reports the closure
// signal after the remaining payments have been drained.
package queue

import (
	"context"
	"payment-engine/contract"
	"payment-engine/domain"
	"payment-engine/errors"
	"sync"
	"sync/atomic"
)

var (
	_ contract.PaymentSender   = (*Sender)(nil)
	_ contract.PaymentReceiver = (*Receiver)(nil)
	_ contract.Gauge           = (*Receiver)(nil)
)

type queue struct {
	items chan domain.Payment
	// dropped is closed when the receiver goes away.
	dropped  chan struct{}
	dropOnce sync.Once

	senders atomic.Int64

	// mu serializes the final close of items against in-flight sends.
	mu     sync.RWMutex
	closed bool
}

// Sender is one producer handle. Use Clone to hand a queue to another producer
// and Close to release the handle.
type Sender struct {
	q        *queue
	released atomic.Bool
}

// Receiver is the single consumer handle.
type Receiver struct {
	q *queue
}

// New returns a linked sender/receiver pair for a queue holding at most capacity payments.
func New(capacity int) (*Sender, *Receiver, error) {
	if capacity <= 0 {
		return nil, nil, errors.ErrInvalidCapacity
	}
	q := &queue{
		items:   make(chan domain.Payment, capacity),
		dropped: make(chan struct{}),
	}
	q.senders.Store(1)
	return &Sender{q: q}, &Receiver{q: q}, nil
}

// Send enqueues p, suspending while the queue is full.
func (s *Sender) Send(ctx context.Context, p domain.Payment) error {
	if s.released.Load() {
		return errors.ErrSenderReleased
	}

	s.q.mu.RLock()
	defer s.q.mu.RUnlock()
	if s.q.closed {
		return errors.ErrSenderReleased
	}

	// A dropped receiver wins over free space.
	select {
	case <-s.q.dropped:
		return errors.ErrChannelClosed
	default:
	}

	select {
	case s.q.items <- p:
		return nil
	case <-s.q.dropped:
		return errors.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clone returns a new handle on the same queue. The queue stays open until
// every handle, this one included, is closed.
// A live handle keeps the count above zero, so no lock is needed here.
func (s *Sender) Clone() (*Sender, error) {
	if s.released.Load() {
		return nil, errors.ErrSenderReleased
	}
	s.q.senders.Add(1)
	return &Sender{q: s.q}, nil
}

// Close releases the handle. Closing an already released handle is a no-op.
func (s *Sender) Close() error {
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}
	if s.q.senders.Add(-1) > 0 {
		return nil
	}
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	if !s.q.closed {
		s.q.closed = true
		close(s.q.items)
	}
	return nil
}

// Receive returns the oldest payment. ok is false once the queue is empty and
// every sender is released, and stays false from then on.
func (r *Receiver) Receive(ctx context.Context) (p domain.Payment, ok bool, err error) {
	select {
	case <-r.q.dropped:
		return domain.Payment{}, false, nil
	default:
	}

	select {
	case p, ok = <-r.q.items:
		return p, ok, nil
	case <-ctx.Done():
		return domain.Payment{}, false, ctx.Err()
	}
}

// Close drops the receiver. Pending payments are discarded and further sends
// fail with ErrChannelClosed.
func (r *Receiver) Close() {
	r.q.dropOnce.Do(func() {
		close(r.q.dropped)
	})
}

// Len reports how many payments are waiting. It never blocks.
func (r *Receiver) Len() int {
	return len(r.q.items)
}

func (r *Receiver) Cap() int {
	return cap(r.q.items)
}
