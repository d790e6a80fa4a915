// Package dqs evaluates the Data Quality Score: staleness per source,
// cross-source validation, glitch sanity, and the composite score and
// risk-attenuation multiplier the DRP machine and Gate 0 consume.
package dqs

import (
	"fmt"
	"math"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/numerics"
)

// SourceStatus is one source's staleness classification.
type SourceStatus string

const (
	StatusFresh    SourceStatus = "fresh"
	StatusDegraded SourceStatus = "degraded"
	StatusHardGate SourceStatus = "hard_gate"
)

// SourceDiagnostic is the per-source staleness result.
type SourceDiagnostic struct {
	Source   string
	AgeMs    int64
	Status   SourceStatus
	Score    float64 // s_i in [0,1]
	Critical bool
}

// Result is the full DQS evaluation for one bar.
type Result struct {
	DQS               float64
	DQSMult           float64
	HardGateTriggered bool
	BlockReason       string
	SourceDiagnostics []SourceDiagnostic
	Xdev              float64
	OracleDev         *float64
}

// Evaluate runs the four DQS stages from spec §4.5 against a MarketState
// snapshot at nowMs.
func Evaluate(cfg config.DQSConfig, market model.MarketState, nowMs int64) Result {
	result := Result{}

	critical := []struct {
		name string
		ageMs int64
	}{
		{"price", nowMs - market.SourceTimestamps.PriceMs},
		{"liquidity", nowMs - market.SourceTimestamps.LiquidityMs},
		{"orderbook", nowMs - market.SourceTimestamps.OrderbookMs},
		{"volatility", nowMs - market.SourceTimestamps.VolatilityMs},
	}
	nonCritical := []struct {
		name  string
		ageMs int64
	}{
		{"funding", nowMs - market.SourceTimestamps.FundingMs},
		{"open_interest", nowMs - market.SourceTimestamps.OpenInterestMs},
		{"basis", nowMs - market.SourceTimestamps.BasisMs},
		{"derivatives", nowMs - market.SourceTimestamps.DerivativesMs},
	}

	// Stage 1: staleness.
	for _, s := range critical {
		diag := classify(s.name, s.ageMs, cfg.SoftStalenessMsCritical, cfg.HardStalenessMsCritical, true)
		result.SourceDiagnostics = append(result.SourceDiagnostics, diag)
		if diag.Status == StatusHardGate {
			result.HardGateTriggered = true
			if result.BlockReason == "" {
				result.BlockReason = fmt.Sprintf("hard_gate:stale_%s", s.name)
			}
		}
	}
	for _, s := range nonCritical {
		diag := classify(s.name, s.ageMs, cfg.SoftStalenessMsNonCritical, cfg.HardStalenessMsNonCritical, false)
		result.SourceDiagnostics = append(result.SourceDiagnostics, diag)
	}

	// Stage 2: cross-validation.
	result.Xdev = numerics.SafeDivide(
		math.Abs(market.PriceSrcA-market.PriceSrcB),
		math.Max(market.PriceSrcA, market.PriceSrcB),
		0,
	)
	if result.Xdev >= cfg.XdevHardThreshold {
		result.HardGateTriggered = true
		if result.BlockReason == "" {
			result.BlockReason = "hard_gate:cross_source_deviation"
		}
	}

	if market.OracleC != nil {
		oracleAge := int64(0)
		if market.OracleStalenessMs != nil {
			oracleAge = *market.OracleStalenessMs
		}
		if oracleAge > cfg.OracleHardStalenessMs {
			result.HardGateTriggered = true
			if result.BlockReason == "" {
				result.BlockReason = "hard_gate:oracle_stale"
			}
		} else {
			dev := numerics.SafeDivide(
				math.Abs(market.PriceSrcA-*market.OracleC),
				math.Max(market.PriceSrcA, *market.OracleC),
				0,
			)
			result.OracleDev = &dev
			if *result.OracleDev >= cfg.XdevHardThreshold {
				result.HardGateTriggered = true
				if result.BlockReason == "" {
					result.BlockReason = "hard_gate:oracle_deviation"
				}
			}
		}
	}

	// Stage 3: glitch sanity. Checked in a fixed order so block_reason is
	// deterministic when more than one field is non-finite.
	glitchFields := []struct {
		name string
		v    float64
	}{
		{"price", market.Last},
		{"atr", market.ATR},
		{"spread_bps", market.SpreadBps},
		{"bid", market.Bid},
		{"ask", market.Ask},
		{"liquidity_depth", market.DepthBidUSD + market.DepthAskUSD},
		{"volatility", market.ATRZShort},
	}
	for _, f := range glitchFields {
		if !numerics.IsFinite(f.v) {
			result.HardGateTriggered = true
			if result.BlockReason == "" {
				result.BlockReason = fmt.Sprintf("hard_gate:glitch_%s", glitchKind(f.v))
			}
		}
	}

	// Stage 4: DQS score.
	totalWeight := 0.0
	weighted := 0.0
	for _, diag := range result.SourceDiagnostics {
		w, ok := cfg.SourceWeights[diag.Source]
		if !ok {
			continue
		}
		weighted += w * diag.Score
		totalWeight += w
	}
	result.DQS = numerics.SafeDivide(weighted, totalWeight, 0)
	result.DQSMult = dqsMult(cfg, result.DQS)

	return result
}

func glitchKind(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return "inf"
}

func classify(name string, ageMs, soft, hard int64, isCritical bool) SourceDiagnostic {
	diag := SourceDiagnostic{Source: name, AgeMs: ageMs, Critical: isCritical}
	switch {
	case ageMs <= soft:
		diag.Status = StatusFresh
		diag.Score = 1.0
	case ageMs <= hard:
		diag.Status = StatusDegraded
		span := float64(hard - soft)
		diag.Score = numerics.SafeDivide(float64(hard-ageMs), span, 0)
	default:
		if isCritical {
			diag.Status = StatusHardGate
		} else {
			diag.Status = StatusDegraded
		}
		diag.Score = 0
	}
	return diag
}

// dqsMult implements the piecewise-linear mult from spec §4.5 stage 4:
// 1.0 for dqs >= fullAt, linearly down to DQSMultPartial at dqs ==
// DQSMultPartialAt, 0.0 below that.
func dqsMult(cfg config.DQSConfig, dqs float64) float64 {
	switch {
	case dqs >= cfg.DQSMultFullAt:
		return 1.0
	case dqs >= cfg.DQSMultPartialAt:
		span := cfg.DQSMultFullAt - cfg.DQSMultPartialAt
		frac := numerics.SafeDivide(dqs-cfg.DQSMultPartialAt, span, 0)
		return cfg.DQSMultPartial + frac*(1.0-cfg.DQSMultPartial)
	default:
		return 0.0
	}
}
