package main

// ShadowRegister is the reference model for the synchronous register. Each
// tick it observes the same pre-tick inputs the unit itself acts on and
// predicts the output the unit must show after the tick: reset wins, enable
// loads, otherwise the previous value holds. The prediction is explicitly
// unknown until a reset or load has defined the register, so the checker
// can never mistake an uninitialized output for a passing zero.
type ShadowRegister struct {
	width uint
	next  Value
}

// NewShadowRegister creates a shadow model for the given data width.
func NewShadowRegister(width uint) *ShadowRegister {
	return &ShadowRegister{width: width, next: X()}
}

// Observe consumes this tick's pre-update inputs and returns the
// expectation for the next tick.
func (s *ShadowRegister) Observe(in UnitInputs) Value {
	switch {
	case in.Reset:
		s.next = V(0)
	case in.Enable:
		s.next = in.Data.Masked(s.width)
	}
	// Neither reset nor enable: the register holds, so the previous
	// prediction (possibly still unknown) stands.
	return s.next
}

// Expected returns the current prediction without advancing the model.
func (s *ShadowRegister) Expected() Value { return s.next }
