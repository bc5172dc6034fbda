package queue

// UnlimitedCapacity disables the capacity bound on a Ring.
const UnlimitedCapacity = -1

// RingHooks carries optional callbacks fired on queue transitions.
type RingHooks[T any] struct {
	OnPush func(item T)
	OnPop  func(item T)
	OnDrop func(item T)
}

// Ring is a FIFO deque with an optional capacity bound. When bounded, Push
// either rejects the new item or evicts the oldest one, depending on the
// caller's choice per call. Dropped items are counted so that overflow is
// observable after the fact.
//
// Ring is not synchronized; owners serialize access themselves.
type Ring[T any] struct {
	name     string
	capacity int
	hooks    RingHooks[T]
	items    []T
	dropped  uint64
}

// NewRing creates an empty ring with the given capacity
// (UnlimitedCapacity for no bound).
func NewRing[T any](name string, capacity int, hooks RingHooks[T]) *Ring[T] {
	return &Ring[T]{
		name:     name,
		capacity: capacity,
		hooks:    hooks,
	}
}

// Name returns the ring name.
func (r *Ring[T]) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Len returns the current item count.
func (r *Ring[T]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// Capacity returns the configured bound (-1 for unlimited).
func (r *Ring[T]) Capacity() int {
	if r == nil {
		return 0
	}
	return r.capacity
}

// Full reports whether the ring is at its bound.
func (r *Ring[T]) Full() bool {
	if r == nil {
		return true
	}
	return r.capacity >= 0 && len(r.items) >= r.capacity
}

// Dropped returns the number of items evicted so far.
func (r *Ring[T]) Dropped() uint64 {
	if r == nil {
		return 0
	}
	return r.dropped
}

// Push appends an item. When the ring is full it fails and leaves the
// contents untouched; use PushEvict for drop-oldest behaviour.
func (r *Ring[T]) Push(item T) bool {
	if r == nil || r.Full() {
		return false
	}
	r.items = append(r.items, item)
	if r.hooks.OnPush != nil {
		r.hooks.OnPush(item)
	}
	return true
}

// PushEvict appends an item, evicting the oldest entry when the ring is
// full. Returns the number of items dropped (0 or 1).
func (r *Ring[T]) PushEvict(item T) int {
	if r == nil {
		return 0
	}
	dropped := 0
	if r.capacity == 0 {
		// Zero capacity: the new item itself is the casualty.
		r.dropped++
		if r.hooks.OnDrop != nil {
			r.hooks.OnDrop(item)
		}
		return 1
	}
	if r.Full() {
		victim := r.items[0]
		r.items = r.items[1:]
		r.dropped++
		dropped = 1
		if r.hooks.OnDrop != nil {
			r.hooks.OnDrop(victim)
		}
	}
	r.items = append(r.items, item)
	if r.hooks.OnPush != nil {
		r.hooks.OnPush(item)
	}
	return dropped
}

// Pop removes and returns the oldest item.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r == nil || len(r.items) == 0 {
		return zero, false
	}
	item := r.items[0]
	r.items[0] = zero
	r.items = r.items[1:]
	if r.hooks.OnPop != nil {
		r.hooks.OnPop(item)
	}
	return item, true
}

// Peek returns the oldest item without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	var zero T
	if r == nil || len(r.items) == 0 {
		return zero, false
	}
	return r.items[0], true
}

// Drain removes and returns all items in FIFO order.
func (r *Ring[T]) Drain() []T {
	if r == nil || len(r.items) == 0 {
		return nil
	}
	out := make([]T, len(r.items))
	copy(out, r.items)
	r.items = r.items[:0]
	if r.hooks.OnPop != nil {
		for _, item := range out {
			r.hooks.OnPop(item)
		}
	}
	return out
}
