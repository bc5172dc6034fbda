package main

import (
	"errors"
	"sync"
)

// ErrSchedulerInactive is returned when subscribing to a scheduler that has
// already been stopped.
var ErrSchedulerInactive = errors.New("tick scheduler is inactive")

// Tick is one discrete clock-period boundary event.
type Tick struct {
	Seq uint64
}

type tickPhase int

const (
	phaseSample tickPhase = iota
	phaseCommit
)

// TickScheduler issues the global tick sequence to all subscribed streams.
// Every tick is processed in two barrier-separated phases:
//
//	sample phase: opened when TickStream.Next returns; subscribers read all
//	pre-tick values they need and must not write shared state.
//	commit phase: opened once every subscriber finished sampling
//	(AwaitCommit); subscribers apply their post-tick updates.
//
// The scheduler advances to tick n+1 only after every subscriber called
// EndTick for tick n, so no subscriber can observe tick n+1 state while
// another is still inside tick n.
type TickScheduler struct {
	mu   sync.Mutex
	cond *sync.Cond

	tick  uint64
	phase tickPhase

	// maxDelivered is the highest tick handed to any subscriber; late
	// joiners participate from the following tick.
	maxDelivered uint64

	subs    map[*TickStream]struct{}
	stopped bool
}

// TickStream is one subscriber's private delivery position in the tick
// sequence. The owning goroutine drives it as:
//
//	for {
//		tick, ok := ts.Next()       // sample phase opens
//		if !ok { return }           // scheduler stopped
//		... read pre-tick values ...
//		if !ts.AwaitCommit() { return }
//		... apply post-tick updates ...
//		ts.EndTick()
//	}
type TickStream struct {
	sched *TickScheduler
	name  string

	from      uint64 // first tick this stream participates in
	delivered uint64 // last tick handed out by Next
	sampled   uint64 // last tick whose sample phase work completed
	ended     uint64 // last tick fully completed
	closed    bool
}

// NewTickScheduler creates a scheduler positioned before tick 1.
func NewTickScheduler() *TickScheduler {
	s := &TickScheduler{
		tick:  1,
		phase: phaseSample,
		subs:  make(map[*TickStream]struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Subscribe registers a named stream. A stream created while a tick is in
// flight joins at the next tick boundary. Fails once the scheduler stopped.
func (s *TickScheduler) Subscribe(name string) (*TickStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrSchedulerInactive
	}
	ts := &TickStream{
		sched: s,
		name:  name,
		from:  s.maxDelivered + 1,
	}
	s.subs[ts] = struct{}{}
	return ts, nil
}

// Unsubscribe detaches a stream. The barrier immediately stops waiting on
// it, so a departed subscriber can never stall the remaining ones.
func (s *TickScheduler) Unsubscribe(ts *TickStream) {
	if ts == nil || ts.sched != s {
		return
	}
	s.mu.Lock()
	if !ts.closed {
		ts.closed = true
		delete(s.subs, ts)
		s.maybeOpenCommitLocked()
		s.maybeAdvanceLocked()
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

// Stop terminates tick generation and releases every waiter. Pending Next
// and AwaitCommit calls resolve with ok=false.
func (s *TickScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// CurrentTick returns the tick currently in flight.
func (s *TickScheduler) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Ticks returns the number of fully completed ticks.
func (s *TickScheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick - 1
}

// Next blocks until the sample phase of the stream's next tick opens.
// Returns ok=false when the scheduler stopped or the stream unsubscribed.
func (ts *TickStream) Next() (Tick, bool) {
	s := ts.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.stopped || ts.closed {
			return Tick{}, false
		}
		if s.phase == phaseSample && s.tick >= ts.from && ts.delivered < s.tick {
			ts.delivered = s.tick
			if s.tick > s.maxDelivered {
				s.maxDelivered = s.tick
			}
			return Tick{Seq: s.tick}, true
		}
		s.cond.Wait()
	}
}

// AwaitCommit marks the stream's sample phase work complete and blocks until
// every subscriber has done the same, at which point the commit phase is
// open. Returns false on cancellation.
func (ts *TickStream) AwaitCommit() bool {
	s := ts.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.sampled < ts.delivered {
		ts.sampled = ts.delivered
		s.maybeOpenCommitLocked()
		s.cond.Broadcast()
	}
	for {
		if s.stopped || ts.closed {
			return false
		}
		if s.phase == phaseCommit && s.tick == ts.delivered {
			return true
		}
		s.cond.Wait()
	}
}

// EndTick marks the stream done with the commit phase. Once every subscriber
// ended the tick the scheduler advances. Never blocks.
func (ts *TickStream) EndTick() {
	s := ts.sched
	s.mu.Lock()
	if ts.ended < ts.delivered {
		ts.ended = ts.delivered
		s.maybeAdvanceLocked()
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

// Name returns the subscriber name the stream was registered under.
func (ts *TickStream) Name() string { return ts.name }

func (s *TickScheduler) maybeOpenCommitLocked() {
	if s.phase != phaseSample {
		return
	}
	for ts := range s.subs {
		if ts.from <= s.tick && ts.sampled < s.tick {
			return
		}
	}
	// Only open the commit phase if someone is actually inside the tick;
	// with no participants there is nothing to order.
	if s.maxDelivered < s.tick {
		return
	}
	s.phase = phaseCommit
}

func (s *TickScheduler) maybeAdvanceLocked() {
	if s.phase != phaseCommit {
		return
	}
	for ts := range s.subs {
		if ts.from <= s.tick && ts.ended < s.tick {
			return
		}
	}
	s.tick++
	s.phase = phaseSample
}
