package main

import (
	"github.com/example/streambench/hooks"
)

// Verdict classifies one comparison.
type Verdict int

const (
	// VerdictPass means expected and actual were both defined and equal.
	VerdictPass Verdict = iota
	// VerdictMismatch means both were defined but differ.
	VerdictMismatch
	// VerdictIndeterminate means at least one side was explicitly unknown.
	// It counts as a failure: an unknown is never silently a pass.
	VerdictIndeterminate
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictMismatch:
		return "mismatch"
	default:
		return "indeterminate"
	}
}

// Mismatch is one recorded checker failure.
type Mismatch struct {
	Tick     uint64
	Expected Value
	Actual   Value
	Verdict  Verdict
}

// maxRecordedMismatches caps the retained failure records; the counts stay
// exact past the cap.
const maxRecordedMismatches = 64

// OutputChecker compares the unit's post-tick output against the
// expectation the shadow model produced one tick earlier. The testbench
// pipeline enforces the mandatory one-tick delay: an expectation only
// becomes visible to the checker on the tick after it was computed, so a
// just-computed expectation can never be compared against. Failures are
// recorded and counted, never thrown; one bad tick must not hide the next
// one.
type OutputChecker struct {
	broker *hooks.Broker

	checked  uint64
	failures []Mismatch

	mismatches    uint64
	indeterminate uint64
}

// NewOutputChecker creates an empty checker.
func NewOutputChecker(broker *hooks.Broker) *OutputChecker {
	return &OutputChecker{broker: broker}
}

// Compare verifies one tick's actual output against the expectation staged
// one tick earlier, recording any failure.
func (c *OutputChecker) Compare(tick uint64, expected, actual Value) Verdict {
	c.checked++

	verdict := VerdictPass
	switch {
	case !expected.Comparable(actual):
		verdict = VerdictIndeterminate
		c.indeterminate++
	case !expected.Equal(actual):
		verdict = VerdictMismatch
	}
	if verdict == VerdictPass {
		return verdict
	}

	c.mismatches++
	if len(c.failures) < maxRecordedMismatches {
		c.failures = append(c.failures, Mismatch{
			Tick:     tick,
			Expected: expected,
			Actual:   actual,
			Verdict:  verdict,
		})
	}
	GetLogger().Warnf("tick %d: expected %s, got %s (%s)", tick, expected, actual, verdict)
	c.broker.EmitMismatch(&hooks.MismatchContext{
		Tick:          tick,
		Expected:      expected.String(),
		Actual:        actual.String(),
		Indeterminate: verdict == VerdictIndeterminate,
	})
	return verdict
}

// Mismatches returns the total failure count (defined-value mismatches plus
// indeterminate comparisons).
func (c *OutputChecker) Mismatches() uint64 { return c.mismatches }

// Indeterminate returns how many failures involved an unknown value.
func (c *OutputChecker) Indeterminate() uint64 { return c.indeterminate }

// Checked returns how many comparisons were performed.
func (c *OutputChecker) Checked() uint64 { return c.checked }

// Failures returns the retained failure records in tick order.
func (c *OutputChecker) Failures() []Mismatch { return c.failures }
