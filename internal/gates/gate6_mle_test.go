package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
)

func passingGate5() Gate5Result {
	return Gate5Result{BaseResult: pass("gate5", ""), UnitRiskBps: 100}
}

func mleOutput(p, muS, muF float64) model.MLEOutput {
	return model.MLEOutput{PSuccess: p, MuSuccessR: muS, MuFailR: muF, Confidence: 0.8}
}

func TestEvaluateGate6_Categories(t *testing.T) {
	cfg := config.Default().Gate6

	// With zero post-MLE cost, net_edge equals EV_R_price exactly.
	cases := []struct {
		name     string
		mle      model.MLEOutput
		category MLECategory
		riskMult float64
		allowed  bool
	}{
		{"reject_negative_edge", mleOutput(0.40, 0.8, 1.0), CategoryReject, 0, false}, // EV_R = -0.28
		{"weak", mleOutput(0.55, 1.0, 1.0), CategoryWeak, 0.5, true},                  // EV_R = 0.10
		{"normal", mleOutput(0.60, 1.0, 1.0), CategoryNormal, 1.0, true},              // EV_R = 0.20
		{"strong", mleOutput(0.75, 1.0, 1.0), CategoryStrong, 1.5, true},              // EV_R = 0.50
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := EvaluateGate6(cfg, passingGate5(), tc.mle, false)

			assert.Equal(t, tc.category, result.Category)
			assert.InDelta(t, tc.riskMult, result.RiskMult, 1e-9)
			assert.Equal(t, tc.allowed, result.EntryAllowed)
			if !tc.allowed {
				assert.Equal(t, "net_edge_below_reject", result.BlockReason)
			}
		})
	}
}

func TestEvaluateGate6_CostErodesEdge(t *testing.T) {
	cfg := config.Default().Gate6
	mle := mleOutput(0.60, 1.0, 1.0) // EV_R = 0.20
	mle.ExpectedCostBpsPost = 10     // 10 bps / 100 bps unit risk = 0.10 R

	result := EvaluateGate6(cfg, passingGate5(), mle, false)

	require.True(t, result.EntryAllowed)
	assert.InDelta(t, 0.20, result.EVRPrice, 1e-9)
	assert.InDelta(t, 0.10, result.ExpectedCostRPostMLE, 1e-9)
	assert.InDelta(t, 0.10, result.NetEdge, 1e-9)
	assert.Equal(t, CategoryWeak, result.Category)
}

func TestEvaluateGate6_LowConfidenceRejectsRegardlessOfEdge(t *testing.T) {
	cfg := config.Default().Gate6
	mle := mleOutput(0.75, 1.0, 1.0)
	mle.Confidence = cfg.MinConfidence - 0.01

	result := EvaluateGate6(cfg, passingGate5(), mle, false)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, CategoryReject, result.Category)
	assert.InDelta(t, 0.0, result.RiskMult, 1e-9)
}

func TestEvaluateGate6_RiskMultMonotonicInNetEdge(t *testing.T) {
	cfg := config.Default().Gate6

	prev := -1.0
	for p := 0.05; p <= 0.95; p += 0.05 {
		result := EvaluateGate6(cfg, passingGate5(), mleOutput(p, 1.0, 1.0), false)
		assert.GreaterOrEqual(t, result.RiskMult, prev, "risk_mult decreased at p=%.2f", p)
		prev = result.RiskMult
	}
}

func TestEvaluateGate6_ShadowModeShortCircuitsWithDiagnostics(t *testing.T) {
	cfg := config.Default().Gate6

	result := EvaluateGate6(cfg, passingGate5(), mleOutput(0.75, 1.0, 1.0), true)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, "shadow_mode_early_exit", result.BlockReason)
	// Telemetry still gets the full decision even though entry is refused.
	assert.Equal(t, CategoryStrong, result.Category)
	assert.InDelta(t, 0.50, result.NetEdge, 1e-9)
	assert.InDelta(t, 1.5, result.RiskMult, 1e-9)
}

func TestEvaluateGate6_PropagatesUpstreamBlock(t *testing.T) {
	cfg := config.Default().Gate6
	gate5 := Gate5Result{BaseResult: block("gate5", "rr_below_min", "")}

	result := EvaluateGate6(cfg, gate5, mleOutput(0.75, 1.0, 1.0), false)

	assert.False(t, result.EntryAllowed)
	assert.Equal(t, "gate6_blocked: rr_below_min", result.BlockReason)
}
