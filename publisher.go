package main

import (
	"sync"

	"github.com/google/uuid"

	"github.com/example/streambench/hooks"
	"github.com/example/streambench/queue"
)

// DeliveryMode selects how a subscriber buffer behaves when it fills up.
type DeliveryMode int

const (
	// DeliverUnbounded buffers every item; nothing is ever dropped.
	DeliverUnbounded DeliveryMode = iota
	// DeliverDropOldest evicts the oldest buffered item on overflow, so a
	// burst leaves exactly the most recent items behind.
	DeliverDropOldest
	// DeliverBlock makes Publish wait for buffer space.
	DeliverBlock
)

func (m DeliveryMode) String() string {
	switch m {
	case DeliverDropOldest:
		return "dropOldest"
	case DeliverBlock:
		return "block"
	default:
		return "unbounded"
	}
}

// BufferPolicy is one subscriber's buffering configuration. The default is
// unbounded buffering; callers needing bounded memory pick a bound plus a
// drop-oldest or block overflow behaviour.
type BufferPolicy struct {
	Mode  DeliveryMode
	Bound int
}

// UnboundedPolicy buffers without limit.
func UnboundedPolicy() BufferPolicy {
	return BufferPolicy{Mode: DeliverUnbounded}
}

// DropOldestPolicy bounds the buffer at n items, evicting the oldest.
func DropOldestPolicy(n int) BufferPolicy {
	return BufferPolicy{Mode: DeliverDropOldest, Bound: n}
}

// BlockPolicy bounds the buffer at n items, blocking the publisher.
func BlockPolicy(n int) BufferPolicy {
	return BufferPolicy{Mode: DeliverBlock, Bound: n}
}

// TransferPublisher fans accepted transfers out to any number of
// subscribers. Delivery order per subscriber matches publish order. A slow
// or absent subscriber never delays Publish unless it explicitly asked for
// a blocking policy.
type TransferPublisher struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*TransferSub
	broker *hooks.Broker

	defaultPolicy BufferPolicy
	published     uint64
	closed        bool
}

// TransferSub is one subscription. Items arrive on C in publish order until
// the subscription is cancelled or the publisher is closed and drained.
//
// Unbounded and block policies stage items in a ring serviced by a pump
// goroutine. Drop-oldest delivers through a channel buffered at exactly the
// bound, so a burst of p unconsumed publishes against bound n drops exactly
// p-n items and keeps the most recent n.
type TransferSub struct {
	handle uuid.UUID
	name   string
	policy BufferPolicy

	mu       sync.Mutex
	cond     *sync.Cond
	buf      *queue.Ring[*TransferItem]
	dropped  uint64
	closing  bool
	flushing bool
	done     chan struct{}
	out      chan *TransferItem

	broker *hooks.Broker
}

// NewTransferPublisher creates a publisher with the given default policy.
// The broker may be nil when no instrumentation is attached.
func NewTransferPublisher(broker *hooks.Broker, defaultPolicy BufferPolicy) *TransferPublisher {
	return &TransferPublisher{
		subs:          make(map[uuid.UUID]*TransferSub),
		broker:        broker,
		defaultPolicy: defaultPolicy,
	}
}

// Subscribe registers a subscriber under the publisher's default policy.
func (p *TransferPublisher) Subscribe(name string) *TransferSub {
	return p.SubscribeWith(name, p.defaultPolicy)
}

// SubscribeWith registers a subscriber with an explicit buffer policy.
func (p *TransferPublisher) SubscribeWith(name string, policy BufferPolicy) *TransferSub {
	if policy.Mode != DeliverUnbounded && policy.Bound < 1 {
		policy.Bound = 1
	}
	sub := &TransferSub{
		handle: uuid.New(),
		name:   name,
		policy: policy,
		done:   make(chan struct{}),
		broker: p.broker,
	}
	sub.cond = sync.NewCond(&sub.mu)
	switch policy.Mode {
	case DeliverDropOldest:
		sub.out = make(chan *TransferItem, policy.Bound)
	case DeliverBlock:
		sub.buf = queue.NewRing[*TransferItem](name, policy.Bound, queue.RingHooks[*TransferItem]{})
		sub.out = make(chan *TransferItem)
	default:
		sub.buf = queue.NewRing[*TransferItem](name, queue.UnlimitedCapacity, queue.RingHooks[*TransferItem]{})
		sub.out = make(chan *TransferItem)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sub.closing = true
		close(sub.done)
		close(sub.out)
		return sub
	}
	p.subs[sub.handle] = sub
	p.mu.Unlock()

	if policy.Mode != DeliverDropOldest {
		go sub.pump()
	}
	return sub
}

// Unsubscribe cancels the subscription with the given handle, discarding
// whatever its buffer still holds; other subscriptions are unaffected.
func (p *TransferPublisher) Unsubscribe(handle uuid.UUID) {
	p.mu.Lock()
	sub, ok := p.subs[handle]
	if ok {
		delete(p.subs, handle)
	}
	p.mu.Unlock()
	if ok {
		sub.cancel(false)
	}
}

// Publish delivers the item to every current subscriber.
func (p *TransferPublisher) Publish(item *TransferItem) {
	if item == nil {
		return
	}
	p.mu.Lock()
	p.published++
	subs := make([]*TransferSub, 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	p.mu.Unlock()

	for _, sub := range subs {
		sub.enqueue(item)
	}
}

// Published returns the number of items published so far.
func (p *TransferPublisher) Published() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.published
}

// Close stops accepting subscriptions and ends every stream. Items already
// buffered remain drainable until each stream's channel closes.
func (p *TransferPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	subs := make([]*TransferSub, 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	p.subs = make(map[uuid.UUID]*TransferSub)
	p.mu.Unlock()

	for _, sub := range subs {
		sub.cancel(true)
	}
}

// C returns the delivery channel. It closes once the subscription ends;
// items buffered at that point remain receivable.
func (s *TransferSub) C() <-chan *TransferItem { return s.out }

// Handle returns the opaque unsubscribe handle.
func (s *TransferSub) Handle() uuid.UUID { return s.handle }

// Name returns the subscriber name.
func (s *TransferSub) Name() string { return s.name }

// Dropped returns how many items this subscriber's buffer evicted.
func (s *TransferSub) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Cancel ends the subscription immediately, discarding buffered items.
func (s *TransferSub) Cancel() { s.cancel(false) }

func (s *TransferSub) enqueue(item *TransferItem) {
	switch s.policy.Mode {
	case DeliverDropOldest:
		s.enqueueDropOldest(item)
	case DeliverBlock:
		s.enqueueBlocking(item)
	default:
		s.mu.Lock()
		if !s.closing && !s.flushing {
			s.buf.Push(item)
			s.cond.Broadcast()
		}
		s.mu.Unlock()
	}
}

// enqueueDropOldest sends straight into the bounded channel, evicting the
// head on overflow. All sends happen under the subscription lock, so cancel
// can close the channel without racing a send.
func (s *TransferSub) enqueueDropOldest(item *TransferItem) {
	var dropped uint64
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	for {
		select {
		case s.out <- item:
			s.mu.Unlock()
			if dropped > 0 {
				s.broker.EmitDrop(&hooks.DropContext{Subscriber: s.name, Dropped: dropped})
			}
			return
		default:
		}
		select {
		case <-s.out:
			s.dropped++
			dropped = s.dropped
		default:
			// Consumer raced us for the head; retry the send.
		}
	}
}

func (s *TransferSub) enqueueBlocking(item *TransferItem) {
	s.mu.Lock()
	for s.buf.Full() && !s.closing && !s.flushing {
		s.cond.Wait()
	}
	if s.closing || s.flushing {
		s.mu.Unlock()
		return
	}
	s.buf.Push(item)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// cancel ends the subscription. With flush set, items already buffered are
// still delivered before the channel closes; otherwise they are discarded.
func (s *TransferSub) cancel(flush bool) {
	s.mu.Lock()
	if s.closing || (flush && s.flushing) {
		s.mu.Unlock()
		return
	}
	if s.policy.Mode == DeliverDropOldest {
		// Sole sender is the enqueue path, which holds the lock; safe to
		// close here. A buffered channel stays drainable after close, so
		// flush and discard coincide.
		s.closing = true
		close(s.done)
		close(s.out)
		s.mu.Unlock()
		return
	}
	if flush {
		s.flushing = true
	} else {
		s.closing = true
		close(s.done)
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

// pump services ring-buffered modes, forwarding items to the out channel in
// FIFO order. On discard-cancel it closes immediately; on flush it delivers
// the remaining buffer first.
func (s *TransferSub) pump() {
	for {
		s.mu.Lock()
		for s.buf.Len() == 0 && !s.closing && !s.flushing {
			s.cond.Wait()
		}
		if s.closing || s.buf.Len() == 0 {
			s.mu.Unlock()
			close(s.out)
			return
		}
		item, _ := s.buf.Pop()
		s.cond.Broadcast()
		s.mu.Unlock()

		select {
		case s.out <- item:
		case <-s.done:
			close(s.out)
			return
		}
	}
}
