package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
)

func passingGate1() Gate1Result {
	return Gate1Result{BaseResult: pass("gate1", "trading mode LIVE")}
}

func regime(class model.RegimeClass, confidence float64) model.RegimeResult {
	return model.RegimeResult{Class: class, Confidence: confidence}
}

func TestEvaluateGate2_AgreementTracksMRC(t *testing.T) {
	cfg := config.Default().Gate2

	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeTrendUp, 0.8), regime(model.RegimeTrendUp, 0.7), model.DRPNormal, 0)

	require.True(t, result.EntryAllowed)
	assert.Equal(t, model.RegimeTrendUp, result.Final.Class)
	assert.Equal(t, 0, result.ConflictStreak)
}

func TestEvaluateGate2_TrendVsRangeStillTrend(t *testing.T) {
	cfg := config.Default().Gate2

	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeTrendUp, 0.8), regime(model.RegimeRange, 0.7), model.DRPNormal, 0)

	require.True(t, result.EntryAllowed)
	assert.Equal(t, model.RegimeTrendUp, result.Final.Class)
}

func TestEvaluateGate2_OppositeConflictProbeWhenConditionsMet(t *testing.T) {
	cfg := config.Default().Gate2

	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeTrendUp, 0.8), regime(model.RegimeTrendDown, 0.7), model.DRPNormal, 0)

	require.True(t, result.EntryAllowed)
	assert.Equal(t, model.RegimeProbeTrade, result.Final.Class)
	assert.Equal(t, 1, result.ConflictStreak)
}

func TestEvaluateGate2_OppositeConflictNoTradeWhenDRPNotNormal(t *testing.T) {
	cfg := config.Default().Gate2

	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeTrendUp, 0.8), regime(model.RegimeTrendDown, 0.7), model.DRPDefensive, 0)

	require.True(t, result.EntryAllowed)
	assert.Equal(t, model.RegimeNoTrade, result.Final.Class)
}

func TestEvaluateGate2_OppositeConflictNoTradeWhenConfidenceLow(t *testing.T) {
	cfg := config.Default().Gate2

	// Above min_regime_confidence but below min_probe_confidence: the
	// conflict resolves, just never into a probe.
	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeTrendUp, 0.5), regime(model.RegimeTrendDown, 0.5), model.DRPNormal, 0)

	require.True(t, result.EntryAllowed)
	assert.Equal(t, model.RegimeNoTrade, result.Final.Class)
}

func TestEvaluateGate2_SustainedConflictBlocks(t *testing.T) {
	cfg := config.Default().Gate2

	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeTrendUp, 0.8), regime(model.RegimeTrendDown, 0.7), model.DRPNormal, cfg.ConflictSustainedBars-1)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, "regime_conflict_sustained", result.BlockReason)
	assert.Equal(t, cfg.ConflictSustainedBars, result.ConflictStreak)
}

func TestEvaluateGate2_StreakResetsWhenConflictClears(t *testing.T) {
	cfg := config.Default().Gate2

	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeTrendUp, 0.8), regime(model.RegimeTrendUp, 0.7), model.DRPNormal, 2)

	require.True(t, result.EntryAllowed)
	assert.Equal(t, 0, result.ConflictStreak)
}

func TestEvaluateGate2_LowConfidenceForcesNoTrade(t *testing.T) {
	cfg := config.Default().Gate2

	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeTrendUp, 0.3), regime(model.RegimeTrendUp, 0.9), model.DRPNormal, 0)

	require.True(t, result.EntryAllowed)
	assert.Equal(t, model.RegimeNoTrade, result.Final.Class)
	assert.InDelta(t, 0.3, result.Final.Confidence, 1e-9)
}

func TestEvaluateGate2_NoiseForcesNoTrade(t *testing.T) {
	cfg := config.Default().Gate2

	result := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeNoise, 0.9), regime(model.RegimeTrendUp, 0.9), model.DRPNormal, 0)

	require.True(t, result.EntryAllowed)
	assert.Equal(t, model.RegimeNoTrade, result.Final.Class)
}

func TestEvaluateGate2_BreakoutConfirmedByBaselineTrend(t *testing.T) {
	cfg := config.Default().Gate2

	up := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeBreakoutUp, 0.8), regime(model.RegimeTrendUp, 0.7), model.DRPNormal, 0)
	down := EvaluateGate2(cfg, passingGate1(), regime(model.RegimeBreakoutDown, 0.8), regime(model.RegimeTrendDown, 0.7), model.DRPNormal, 0)

	assert.Equal(t, model.RegimeBreakoutUp, up.Final.Class)
	assert.Equal(t, model.RegimeBreakoutDown, down.Final.Class)
}

func TestEvaluateGate2_PropagatesUpstreamBlockAndKeepsStreak(t *testing.T) {
	cfg := config.Default().Gate2
	gate1 := Gate1Result{BaseResult: block("gate1", "manual_halt_all_trading", "")}

	result := EvaluateGate2(cfg, gate1, regime(model.RegimeTrendUp, 0.8), regime(model.RegimeTrendDown, 0.7), model.DRPNormal, 2)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, "gate2_blocked: manual_halt_all_trading", result.BlockReason)
	assert.Equal(t, 2, result.ConflictStreak)
}
