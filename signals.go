package main

// BusSignals is the observed stream bus. Ownership is per field: the
// stimulus (or whatever drives the source side) writes Valid and the data
// fields, the sink side writes Ready. All writes happen in the commit phase;
// the monitor and every other reader sample only during the sample phase,
// so no field is ever seen half-updated.
type BusSignals struct {
	Valid bool
	Ready bool

	Data Value
	Keep Value
	Strb Value
	Last bool
	ID   Value
	Dest Value
	User Value
}

// UnitInputs is the unit-under-test input bundle. The stimulus is its only
// writer; the unit role and the shadow model read it in the sample phase.
type UnitInputs struct {
	Reset  bool
	Enable bool
	Data   Value
}

// Unit is the opaque unit under test: apply inputs, advance one tick,
// expose the post-tick output. Step is called exactly once per tick, in the
// commit phase, with the inputs as they stood at the tick boundary.
type Unit interface {
	Step(in UnitInputs) Value
	Output() Value
}

// SyncRegister is the reference unit: synchronous reset to zero, enable
// loads the input, otherwise the output holds. The output is explicitly
// unknown until the first reset or load defines it.
type SyncRegister struct {
	width uint
	out   Value
}

// NewSyncRegister creates a register of the given data width.
func NewSyncRegister(width uint) *SyncRegister {
	return &SyncRegister{width: width, out: X()}
}

func (r *SyncRegister) Step(in UnitInputs) Value {
	switch {
	case in.Reset:
		r.out = V(0)
	case in.Enable:
		r.out = in.Data.Masked(r.width)
	}
	return r.out
}

func (r *SyncRegister) Output() Value { return r.out }

// DelayedRegister is a fault-injected register that applies every input one
// tick late. It exists so the harness can demonstrate that it catches a
// classic off-by-one-cycle bug; see the end-to-end tests.
type DelayedRegister struct {
	width   uint
	out     Value
	pending UnitInputs
	primed  bool
}

// NewDelayedRegister creates the buggy register of the given data width.
func NewDelayedRegister(width uint) *DelayedRegister {
	return &DelayedRegister{width: width, out: X()}
}

func (r *DelayedRegister) Step(in UnitInputs) Value {
	if r.primed {
		prev := r.pending
		switch {
		case prev.Reset:
			r.out = V(0)
		case prev.Enable:
			r.out = prev.Data.Masked(r.width)
		}
	}
	r.pending = in
	r.primed = true
	return r.out
}

func (r *DelayedRegister) Output() Value { return r.out }
