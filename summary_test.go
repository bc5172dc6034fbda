package main

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestSummaryPassed(t *testing.T) {
	require.True(t, (&RunSummary{Ticks: 10}).Passed())
	require.False(t, (&RunSummary{Mismatches: 1}).Passed())
	require.False(t, (*RunSummary)(nil).Passed())
}

func TestSummaryRenderPass(t *testing.T) {
	s := &RunSummary{Ticks: 7, Transfers: 2, Published: 2}
	out := s.Render()
	require.Contains(t, out, "Result: PASS\n")
	require.NotContains(t, out, "=== Failures ===")
}

func TestSummaryRenderGolden(t *testing.T) {
	s := &RunSummary{
		Ticks:         12,
		Transfers:     3,
		Published:     3,
		Mismatches:    2,
		Indeterminate: 1,
		Failures: []Mismatch{
			{Tick: 4, Expected: V(0xab), Actual: V(0), Verdict: VerdictMismatch},
			{Tick: 6, Expected: V(0x1), Actual: X(), Verdict: VerdictIndeterminate},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "run_summary", []byte(s.Render()))
}
