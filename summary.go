package main

import (
	"fmt"
	"strings"
)

// RunSummary reports the end-of-run totals. Mismatch counts are always
// exact; the retained records are capped (see maxRecordedMismatches).
type RunSummary struct {
	Ticks         uint64
	Transfers     uint64
	Published     uint64
	Mismatches    uint64
	Indeterminate uint64
	Dropped       uint64
	Failures      []Mismatch
}

// Passed reports whether the run finished without a single failure.
func (s *RunSummary) Passed() bool {
	return s != nil && s.Mismatches == 0
}

// Render formats the summary the way PrintSummary prints it.
func (s *RunSummary) Render() string {
	if s == nil {
		return "No summary available\n"
	}
	var b strings.Builder
	b.WriteString("=== Run Summary ===\n")
	fmt.Fprintf(&b, "Ticks: %d\n", s.Ticks)
	fmt.Fprintf(&b, "Transfers Observed: %d\n", s.Transfers)
	fmt.Fprintf(&b, "Items Published: %d\n", s.Published)
	fmt.Fprintf(&b, "Mismatches: %d\n", s.Mismatches)
	fmt.Fprintf(&b, "Indeterminate: %d\n", s.Indeterminate)
	fmt.Fprintf(&b, "Subscriber Drops: %d\n", s.Dropped)
	if len(s.Failures) > 0 {
		b.WriteString("\n=== Failures ===\n")
		for _, m := range s.Failures {
			fmt.Fprintf(&b, "tick %d: expected %s, actual %s (%s)\n",
				m.Tick, m.Expected, m.Actual, m.Verdict)
		}
	}
	b.WriteString("\n")
	if s.Passed() {
		b.WriteString("Result: PASS\n")
	} else {
		b.WriteString("Result: FAIL\n")
	}
	return b.String()
}

// PrintSummary writes the summary to stdout.
func PrintSummary(s *RunSummary) {
	fmt.Print(s.Render())
}
