package main

import "math/rand"

// Stimulus drives the unit inputs and the bus source/sink signals once per
// tick. Drive is called in the commit phase, so its writes become visible
// only from the next tick's sample phase; it returns false when the
// stimulus is exhausted and the run should wind down. Reset restores the
// generator to its initial state.
type Stimulus interface {
	Drive(tick uint64, in *UnitInputs, bus *BusSignals) bool
	Reset()
}

// RandomStimulus asserts reset for ResetTicks ticks, then drives
// pseudo-random (enable, data) pairs at the unit and pseudo-random
// valid/ready traffic at the bus for Iterations ticks. A fixed seed makes
// the whole run reproducible.
type RandomStimulus struct {
	ResetTicks int
	Iterations int

	EnableRate float64
	ValidRate  float64
	ReadyRate  float64

	widths FieldWidths
	seed   int64
	rng    *rand.Rand
	driven int
}

// NewRandomStimulus creates a seeded random stimulus.
func NewRandomStimulus(cfg *Config) *RandomStimulus {
	return &RandomStimulus{
		ResetTicks: cfg.ResetTicks,
		Iterations: cfg.Iterations,
		EnableRate: cfg.EnableRate,
		ValidRate:  cfg.ValidRate,
		ReadyRate:  cfg.ReadyRate,
		widths:     cfg.FieldWidths,
		seed:       cfg.Seed,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (g *RandomStimulus) Drive(tick uint64, in *UnitInputs, bus *BusSignals) bool {
	if g.driven >= g.ResetTicks+g.Iterations {
		return false
	}
	g.driven++

	if g.driven <= g.ResetTicks {
		in.Reset = true
		in.Enable = false
		in.Data = V(0)
		bus.Valid = false
		bus.Ready = false
		return true
	}

	in.Reset = false
	in.Enable = g.rng.Float64() < g.EnableRate
	in.Data = V(g.rng.Uint64()).Masked(g.widths.Data)

	bus.Valid = g.rng.Float64() < g.ValidRate
	bus.Ready = g.rng.Float64() < g.ReadyRate
	if bus.Valid {
		bus.Data = V(g.rng.Uint64()).Masked(g.widths.Data)
		bus.Keep = V(g.rng.Uint64()).Masked(g.widths.Keep)
		bus.Strb = V(g.rng.Uint64()).Masked(g.widths.Strb)
		bus.Last = g.rng.Intn(8) == 0
		bus.ID = V(g.rng.Uint64()).Masked(g.widths.ID)
		bus.Dest = V(g.rng.Uint64()).Masked(g.widths.Dest)
		bus.User = V(g.rng.Uint64()).Masked(g.widths.User)
	}
	return true
}

func (g *RandomStimulus) Reset() {
	g.rng = rand.New(rand.NewSource(g.seed))
	g.driven = 0
}

// ScheduleStep is one scripted tick of directed stimulus.
type ScheduleStep struct {
	Reset  bool
	Enable bool
	Data   uint64

	Valid   bool
	Ready   bool
	BusData uint64
	Last    bool
}

// ScheduleStimulus replays a fixed per-tick script, for directed tests and
// scenario files. Ticks beyond the script end the run.
type ScheduleStimulus struct {
	steps  []ScheduleStep
	widths FieldWidths
	pos    int
}

// NewScheduleStimulus creates a stimulus that replays steps in order.
func NewScheduleStimulus(steps []ScheduleStep, widths FieldWidths) *ScheduleStimulus {
	return &ScheduleStimulus{steps: steps, widths: widths}
}

func (g *ScheduleStimulus) Drive(tick uint64, in *UnitInputs, bus *BusSignals) bool {
	if g.pos >= len(g.steps) {
		return false
	}
	step := g.steps[g.pos]
	g.pos++

	in.Reset = step.Reset
	in.Enable = step.Enable
	in.Data = V(step.Data).Masked(g.widths.Data)

	bus.Valid = step.Valid
	bus.Ready = step.Ready
	bus.Data = V(step.BusData).Masked(g.widths.Data)
	bus.Last = step.Last
	return true
}

func (g *ScheduleStimulus) Reset() { g.pos = 0 }

// Len returns the script length in ticks.
func (g *ScheduleStimulus) Len() int { return len(g.steps) }
