package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShadowUnknownBeforeReset(t *testing.T) {
	s := NewShadowRegister(8)
	require.False(t, s.Expected().Known)

	// Holding without ever resetting or loading keeps the prediction
	// undefined; it must not decay to zero.
	e := s.Observe(UnitInputs{})
	require.False(t, e.Known)
}

func TestShadowResetDominates(t *testing.T) {
	s := NewShadowRegister(8)
	e := s.Observe(UnitInputs{Reset: true, Enable: true, Data: V(0x5a)})
	require.True(t, e.Equal(V(0)))
}

func TestShadowEnableLoads(t *testing.T) {
	s := NewShadowRegister(8)
	s.Observe(UnitInputs{Reset: true})
	e := s.Observe(UnitInputs{Enable: true, Data: V(0x7c)})
	require.True(t, e.Equal(V(0x7c)))
}

func TestShadowHoldKeepsPreviousPrediction(t *testing.T) {
	s := NewShadowRegister(8)
	s.Observe(UnitInputs{Reset: true})
	s.Observe(UnitInputs{Enable: true, Data: V(0x7c)})
	e := s.Observe(UnitInputs{Data: V(0x11)})
	require.True(t, e.Equal(V(0x7c)))
}

func TestShadowMasksLoadedData(t *testing.T) {
	s := NewShadowRegister(4)
	e := s.Observe(UnitInputs{Enable: true, Data: V(0xff)})
	require.True(t, e.Equal(V(0xf)))
}

func TestSyncRegisterMatchesShadowSemantics(t *testing.T) {
	r := NewSyncRegister(8)
	require.False(t, r.Output().Known)

	require.True(t, r.Step(UnitInputs{Reset: true}).Equal(V(0)))
	require.True(t, r.Step(UnitInputs{Enable: true, Data: V(0x42)}).Equal(V(0x42)))
	require.True(t, r.Step(UnitInputs{Data: V(0x99)}).Equal(V(0x42)))
}

func TestDelayedRegisterAppliesInputsOneTickLate(t *testing.T) {
	r := NewDelayedRegister(8)

	out := r.Step(UnitInputs{Reset: true})
	require.False(t, out.Known, "bug model must still be undefined on the first tick")

	out = r.Step(UnitInputs{Enable: true, Data: V(0x42)})
	require.True(t, out.Equal(V(0)), "reset lands one tick late")

	out = r.Step(UnitInputs{})
	require.True(t, out.Equal(V(0x42)), "load lands one tick late")
}
