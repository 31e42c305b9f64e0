package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundingBoxCenter(t *testing.T) {
	b := BoundingBox{X: 10, Y: 20, Width: 8, Height: 6}
	x, y := b.Center()
	require.InDelta(t, 14, x, 1e-9)
	require.InDelta(t, 23, y, 1e-9)
}

func TestBoundingBoxArea(t *testing.T) {
	b := BoundingBox{X: 0, Y: 0, Width: 8, Height: 6}
	require.InDelta(t, 48, b.Area(), 1e-9)
}

func TestAnalysisDerivedCounts(t *testing.T) {
	a := &Analysis{TotalTeethDetected: 8, TotalCariesDetected: 2}
	require.Equal(t, 6, a.HealthyTeethCount())
	require.InDelta(t, 25.0, a.CariesPercent(), 1e-9)
}

func TestAnalysisCariesPercentEmpty(t *testing.T) {
	a := &Analysis{}
	require.Equal(t, 0.0, a.CariesPercent())
}
