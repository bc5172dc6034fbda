package main

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/example/streambench/hooks"
)

// Testbench wires the scheduler, the unit under test, and the verification
// roles together. Each role runs as its own goroutine on a private tick
// stream; shared signal groups have exactly one writing role and are only
// written in the commit phase, so the barrier keeps every read consistent.
//
// Per tick n:
//
//	sample phase  unit role snapshots the inputs; the shadow model reads
//	              the same pre-tick inputs and computes the expectation for
//	              tick n+1; the checker compares the output as updated
//	              through tick n-1's commit against the expectation
//	              computed at tick n-1; the monitor samples the bus.
//	commit phase  the unit steps from its snapshot; the shadow publishes
//	              its expectation; the stimulus drives the inputs and bus
//	              for tick n+1.
type Testbench struct {
	cfg    *Config
	sched  *TickScheduler
	broker *hooks.Broker

	unit      Unit
	stim      Stimulus
	shadow    *ShadowRegister
	checker   *OutputChecker
	monitor   *StreamMonitor
	publisher *TransferPublisher

	// Shared signal groups. in and bus are written by the stimulus role,
	// out by the unit role, expect by the shadow role; all in the commit
	// phase only.
	in  UnitInputs
	bus BusSignals
	out Value

	expect       Value
	expectPrimed bool

	dropped atomic.Uint64
}

// NewTestbench builds a harness for the given unit. A nil unit defaults to
// the reference SyncRegister; a nil stimulus defaults to the configured
// random stimulus.
func NewTestbench(cfg *Config, unit Unit, stim Stimulus) (*Testbench, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	policy, err := cfg.BufferPolicy()
	if err != nil {
		return nil, err
	}
	if unit == nil {
		unit = NewSyncRegister(cfg.FieldWidths.Data)
	}
	if stim == nil {
		stim = NewRandomStimulus(cfg)
	}

	broker := hooks.NewBroker()
	publisher := NewTransferPublisher(broker, policy)

	tb := &Testbench{
		cfg:       cfg,
		sched:     NewTickScheduler(),
		broker:    broker,
		unit:      unit,
		stim:      stim,
		shadow:    NewShadowRegister(cfg.FieldWidths.Data),
		checker:   NewOutputChecker(broker),
		publisher: publisher,
		out:       unit.Output(),
	}
	tb.monitor = NewStreamMonitor(&tb.bus, cfg.FieldWidths, publisher, broker)
	broker.RegisterDrop(func(*hooks.DropContext) { tb.dropped.Add(1) })
	return tb, nil
}

// Broker exposes the instrumentation broker for attaching consumers.
func (tb *Testbench) Broker() *hooks.Broker { return tb.broker }

// Publisher exposes the transfer publisher for attaching subscribers.
func (tb *Testbench) Publisher() *TransferPublisher { return tb.publisher }

// Checker exposes the output checker.
func (tb *Testbench) Checker() *OutputChecker { return tb.checker }

// Run executes the harness to completion and returns the run summary.
func (tb *Testbench) Run() (*RunSummary, error) {
	stimTS, err := tb.sched.Subscribe("stimulus")
	if err != nil {
		return nil, fmt.Errorf("subscribe stimulus: %w", err)
	}
	unitTS, err := tb.sched.Subscribe("unit")
	if err != nil {
		return nil, fmt.Errorf("subscribe unit: %w", err)
	}
	shadowTS, err := tb.sched.Subscribe("shadow")
	if err != nil {
		return nil, fmt.Errorf("subscribe shadow: %w", err)
	}
	checkTS, err := tb.sched.Subscribe("checker")
	if err != nil {
		return nil, fmt.Errorf("subscribe checker: %w", err)
	}
	monTS, err := tb.sched.Subscribe("monitor")
	if err != nil {
		return nil, fmt.Errorf("subscribe monitor: %w", err)
	}

	// Prime the very first tick's inputs before any role starts; this is
	// the drive that tick 1 samples.
	tb.stim.Drive(0, &tb.in, &tb.bus)

	var g errgroup.Group
	g.Go(func() error { return tb.stimulusRole(stimTS) })
	g.Go(func() error { return tb.unitRole(unitTS) })
	g.Go(func() error { return tb.shadowRole(shadowTS) })
	g.Go(func() error { return tb.checkerRole(checkTS) })
	g.Go(func() error { return tb.monitorRole(monTS) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tb.publisher.Close()

	summary := &RunSummary{
		Ticks:         tb.sched.Ticks(),
		Transfers:     tb.monitor.Observed(),
		Published:     tb.publisher.Published(),
		Mismatches:    tb.checker.Mismatches(),
		Indeterminate: tb.checker.Indeterminate(),
		Dropped:       tb.dropped.Load(),
		Failures:      tb.checker.Failures(),
	}
	tb.broker.EmitRunCompleted(&hooks.RunContext{
		Ticks:      summary.Ticks,
		Transfers:  summary.Transfers,
		Mismatches: summary.Mismatches,
		Dropped:    summary.Dropped,
		Passed:     summary.Passed(),
	})
	GetLogger().Infof("run complete: %d ticks, %d transfers, %d mismatches",
		summary.Ticks, summary.Transfers, summary.Mismatches)
	return summary, nil
}

// Stop aborts the run; all roles wind down at the current tick boundary.
func (tb *Testbench) Stop() { tb.sched.Stop() }

// stimulusRole drives the next tick's inputs during each commit phase. One
// neutral drain tick after the stimulus is exhausted lets the final staged
// expectation be checked before the scheduler stops.
func (tb *Testbench) stimulusRole(ts *TickStream) error {
	drained := false
	for {
		tick, ok := ts.Next()
		if !ok {
			return nil
		}
		if !ts.AwaitCommit() {
			return nil
		}
		if drained {
			ts.EndTick()
			tb.sched.Stop()
			return nil
		}
		if !tb.stim.Drive(tick.Seq, &tb.in, &tb.bus) {
			tb.in.Reset = false
			tb.in.Enable = false
			tb.bus.Valid = false
			tb.bus.Ready = false
			drained = true
		}
		ts.EndTick()
	}
}

// unitRole snapshots the pre-tick inputs and steps the unit at the tick
// boundary.
func (tb *Testbench) unitRole(ts *TickStream) error {
	for {
		_, ok := ts.Next()
		if !ok {
			return nil
		}
		snapshot := tb.in
		if !ts.AwaitCommit() {
			return nil
		}
		tb.out = tb.unit.Step(snapshot)
		ts.EndTick()
	}
}

// shadowRole computes the expectation from the same pre-tick inputs the
// unit acts on, publishing it only at the commit boundary so the checker
// can never see a same-tick expectation.
func (tb *Testbench) shadowRole(ts *TickStream) error {
	for {
		_, ok := ts.Next()
		if !ok {
			return nil
		}
		expected := tb.shadow.Observe(tb.in)
		if !ts.AwaitCommit() {
			return nil
		}
		tb.expect = expected
		tb.expectPrimed = true
		ts.EndTick()
	}
}

// checkerRole compares the post-tick output against the expectation staged
// one tick earlier.
func (tb *Testbench) checkerRole(ts *TickStream) error {
	for {
		tick, ok := ts.Next()
		if !ok {
			return nil
		}
		if tb.expectPrimed {
			tb.checker.Compare(tick.Seq, tb.expect, tb.out)
		}
		if !ts.AwaitCommit() {
			return nil
		}
		ts.EndTick()
	}
}

// monitorRole samples the bus once per tick.
func (tb *Testbench) monitorRole(ts *TickStream) error {
	for {
		tick, ok := ts.Next()
		if !ok {
			return nil
		}
		tb.monitor.Sample(tick.Seq)
		if !ts.AwaitCommit() {
			return nil
		}
		ts.EndTick()
	}
}
