package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueMasking(t *testing.T) {
	require.Equal(t, uint64(0xab), V(0x1ab).Masked(8).Bits)
	require.Equal(t, uint64(0x1ab), V(0x1ab).Masked(16).Bits)
	require.Equal(t, uint64(0x1ab), V(0x1ab).Masked(64).Bits)
	require.Equal(t, uint64(0), V(0xff).Masked(0).Bits)
	require.True(t, V(0xff).Masked(0).Known)
}

func TestUnknownSurvivesMasking(t *testing.T) {
	require.False(t, X().Masked(8).Known)
}

func TestValueEqualityIsDefinedValueSensitive(t *testing.T) {
	require.True(t, V(5).Equal(V(5)))
	require.False(t, V(5).Equal(V(6)))

	// Unknown never equals anything, itself included, and never equals
	// zero.
	require.False(t, X().Equal(X()))
	require.False(t, X().Equal(V(0)))
	require.False(t, V(0).Equal(X()))

	require.True(t, V(1).Comparable(V(2)))
	require.False(t, V(1).Comparable(X()))
}

func TestValueString(t *testing.T) {
	require.Equal(t, "x", X().String())
	require.Equal(t, "0xab", V(0xab).String())
}

func TestFieldWidthsValidate(t *testing.T) {
	require.NoError(t, DefaultFieldWidths().Validate())

	bad := DefaultFieldWidths()
	bad.Data = 65
	require.Error(t, bad.Validate())
}
