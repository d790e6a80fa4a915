package gates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingGate3() Gate3Result {
	return Gate3Result{BaseResult: pass("gate3", "")}
}

func TestEvaluateGate4_ValidSignalPassesWithDistance(t *testing.T) {
	signal := healthySignal()

	result := EvaluateGate4(passingGate3(), signal, 500)

	require.True(t, result.EntryAllowed)
	assert.InDelta(t, 500.0, result.SLDistance, 1e-9)
}

func TestEvaluateGate4_RRBelowMinimum(t *testing.T) {
	signal := healthySignal()
	signal.RawRR = signal.Constraints.MinRR - 0.01

	result := EvaluateGate4(passingGate3(), signal, 500)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, "rr_below_min", result.BlockReason)
}

func TestEvaluateGate4_SLDistanceBand(t *testing.T) {
	// Constraints from the fixture: 0.5*atr <= d <= 3*atr with atr=500.
	cases := []struct {
		name    string
		sl      float64
		allowed bool
	}{
		{"below_min", 49999, false}, // d=1 < 250
		{"at_lower_edge", 49750, true},
		{"inside", 49500, true},
		{"at_upper_edge", 48500, true},
		{"above_max", 48000, false}, // d=2000 > 1500
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signal := healthySignal()
			signal.SL = tc.sl

			result := EvaluateGate4(passingGate3(), signal, 500)

			assert.Equal(t, tc.allowed, result.EntryAllowed)
			if !tc.allowed {
				assert.Equal(t, "sl_distance_out_of_range", result.BlockReason)
			}
		})
	}
}

func TestEvaluateGate4_InvertedLevelsBlock(t *testing.T) {
	signal := healthySignal()
	signal.SL, signal.TP = signal.TP, signal.SL // LONG with SL above entry

	result := EvaluateGate4(passingGate3(), signal, 500)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, "sl_distance_out_of_range", result.BlockReason)
}

func TestEvaluateGate4_NonFiniteLevelBlocks(t *testing.T) {
	signal := healthySignal()
	signal.TP = math.Inf(1)

	result := EvaluateGate4(passingGate3(), signal, 500)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, "sl_distance_out_of_range", result.BlockReason)
}

func TestEvaluateGate4_PropagatesUpstreamBlock(t *testing.T) {
	gate3 := Gate3Result{BaseResult: block("gate3", "incompatible_strategy_regime", "")}

	result := EvaluateGate4(gate3, healthySignal(), 500)

	assert.False(t, result.EntryAllowed)
	assert.Equal(t, "gate4_blocked: incompatible_strategy_regime", result.BlockReason)
}
