// Package hooks provides the instrumentation broker the harness emits its
// run-time events through. Consumers (live monitors, scoreboards, logging
// taps) register handlers; producers emit contexts. Handlers run on the
// emitting goroutine, so they must be quick and must not block.
package hooks

import "sync"

// TransferContext carries one accepted stream transfer.
type TransferContext struct {
	Tick uint64
	Seq  uint64
	Item any
}

// MismatchContext carries one checker failure.
type MismatchContext struct {
	Tick          uint64
	Expected      string
	Actual        string
	Indeterminate bool
}

// DropContext carries one subscriber buffer eviction.
type DropContext struct {
	Subscriber string
	Dropped    uint64
}

// RunContext carries the end-of-run totals.
type RunContext struct {
	Ticks      uint64
	Transfers  uint64
	Mismatches uint64
	Dropped    uint64
	Passed     bool
}

// TransferHook observes accepted transfers.
type TransferHook func(ctx *TransferContext)

// MismatchHook observes checker failures.
type MismatchHook func(ctx *MismatchContext)

// DropHook observes subscriber buffer evictions.
type DropHook func(ctx *DropContext)

// RunCompletedHook observes the end-of-run summary.
type RunCompletedHook func(ctx *RunContext)

// Bundle groups handlers that belong to one consumer.
type Bundle struct {
	Transfer     []TransferHook
	Mismatch     []MismatchHook
	Drop         []DropHook
	RunCompleted []RunCompletedHook
}

// Broker coordinates hook registration and triggering.
type Broker struct {
	mu sync.RWMutex

	transferHooks     []TransferHook
	mismatchHooks     []MismatchHook
	dropHooks         []DropHook
	runCompletedHooks []RunCompletedHook
}

// NewBroker creates an empty broker instance.
func NewBroker() *Broker {
	return &Broker{}
}

// RegisterTransfer adds a hook executed for every accepted transfer.
func (b *Broker) RegisterTransfer(h TransferHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transferHooks = append(b.transferHooks, h)
}

// RegisterMismatch adds a hook executed for every checker failure.
func (b *Broker) RegisterMismatch(h MismatchHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mismatchHooks = append(b.mismatchHooks, h)
}

// RegisterDrop adds a hook executed for every buffer eviction.
func (b *Broker) RegisterDrop(h DropHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropHooks = append(b.dropHooks, h)
}

// RegisterRunCompleted adds a hook executed once when the run finishes.
func (b *Broker) RegisterRunCompleted(h RunCompletedHook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runCompletedHooks = append(b.runCompletedHooks, h)
}

// RegisterBundle registers every handler in the bundle.
func (b *Broker) RegisterBundle(bundle Bundle) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transferHooks = append(b.transferHooks, bundle.Transfer...)
	b.mismatchHooks = append(b.mismatchHooks, bundle.Mismatch...)
	b.dropHooks = append(b.dropHooks, bundle.Drop...)
	b.runCompletedHooks = append(b.runCompletedHooks, bundle.RunCompleted...)
}

// EmitTransfer triggers transfer hooks.
func (b *Broker) EmitTransfer(ctx *TransferContext) {
	if b == nil || ctx == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]TransferHook, len(b.transferHooks))
	copy(handlers, b.transferHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(ctx)
	}
}

// EmitMismatch triggers mismatch hooks.
func (b *Broker) EmitMismatch(ctx *MismatchContext) {
	if b == nil || ctx == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]MismatchHook, len(b.mismatchHooks))
	copy(handlers, b.mismatchHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(ctx)
	}
}

// EmitDrop triggers drop hooks.
func (b *Broker) EmitDrop(ctx *DropContext) {
	if b == nil || ctx == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]DropHook, len(b.dropHooks))
	copy(handlers, b.dropHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(ctx)
	}
}

// EmitRunCompleted triggers run-completed hooks.
func (b *Broker) EmitRunCompleted(ctx *RunContext) {
	if b == nil || ctx == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]RunCompletedHook, len(b.runCompletedHooks))
	copy(handlers, b.runCompletedHooks)
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(ctx)
	}
}
