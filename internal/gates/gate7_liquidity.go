package gates

import (
	"math"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/numerics"
)

// Gate7Result is the liquidity gate (spec §4.14).
type Gate7Result struct {
	BaseResult
	SpreadMult    float64
	ImpactMult    float64
	LiquidityMult float64
}

// EvaluateGate7 hard-fails on depth/spread/volume/OBI thresholds, otherwise
// computes smooth [0,1] degradation multipliers between the soft and hard
// bounds.
func EvaluateGate7(cfg config.Gate7Config, gate6 Gate6Result, market model.MarketState, direction model.Direction) Gate7Result {
	if !gate6.EntryAllowed {
		return Gate7Result{BaseResult: propagateBlock("gate7", gate6.BlockReason)}
	}

	depthSide := market.DepthBidUSD
	if direction == model.Short {
		depthSide = market.DepthAskUSD
	}

	if depthSide < cfg.DepthHardMinUSD {
		return Gate7Result{BaseResult: block("gate7", "liquidity_hard_fail", "depth below hard minimum")}
	}
	if market.SpreadBps > cfg.SpreadHardMaxBps {
		return Gate7Result{BaseResult: block("gate7", "liquidity_hard_fail", "spread above hard maximum")}
	}
	if market.Volume24hUSD < cfg.VolumeHardMinUSD {
		return Gate7Result{BaseResult: block("gate7", "liquidity_hard_fail", "24h volume below hard minimum")}
	}
	if math.Abs(market.OBI) > cfg.OBIHardMax {
		return Gate7Result{BaseResult: block("gate7", "liquidity_hard_fail", "order book imbalance above hard maximum")}
	}

	spreadMult := smoothDegradation(market.SpreadBps, cfg.SpreadSoftMaxBps, cfg.SpreadHardMaxBps, true)
	impactMult := smoothDegradation(depthSide, cfg.DepthHardMinUSD, cfg.DepthSoftMinUSD, false)
	liquidityMult := math.Min(spreadMult, impactMult)

	return Gate7Result{
		BaseResult:    pass("gate7", "liquidity within bounds"),
		SpreadMult:    spreadMult,
		ImpactMult:    impactMult,
		LiquidityMult: liquidityMult,
	}
}

// smoothDegradation returns 1.0 at the "good" extreme, 0.0 at the "bad"
// extreme, linearly interpolated between lo and hi. higherIsWorse controls
// which bound is the good side (spread: higher is worse; depth: lower is
// worse).
func smoothDegradation(value, lo, hi float64, higherIsWorse bool) float64 {
	if higherIsWorse {
		if value <= lo {
			return 1.0
		}
		if value >= hi {
			return 0.0
		}
		return 1.0 - numerics.SafeDivide(value-lo, hi-lo, 0)
	}
	if value >= hi {
		return 1.0
	}
	if value <= lo {
		return 0.0
	}
	return numerics.SafeDivide(value-lo, hi-lo, 0)
}
