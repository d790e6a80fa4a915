package gates

import (
	"math"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/numerics"
)

// Gate9Result is the funding/proximity gate (spec §4.16).
type Gate9Result struct {
	BaseResult
	FundingCostR    float64
	NetYieldR       float64
	ProximityMult   float64
	TimeToFundingSec float64
}

// EvaluateGate9 converts the funding cost over the signal's expected hold
// to R, applies a proximity multiplier as the next funding event
// approaches, and blacks out entries close to expensive funding events.
func EvaluateGate9(cfg config.Gate9Config, gate8 Gate8Result, signal model.Signal, market model.MarketState, unitRiskAllinNet, evRPriceNet, fundingBonusRUsed float64, nowMs int64) Gate9Result {
	if !gate8.EntryAllowed {
		return Gate9Result{BaseResult: propagateBlock("gate9", gate8.BlockReason)}
	}

	directionSign := 1.0
	if signal.Direction == model.Short {
		directionSign = -1.0
	}

	nEvents := math.Ceil(numerics.SafeDivide(signal.HoldHoursEstimate, cfg.FundingIntervalHours, 0))
	fundingPnlFrac := -directionSign * market.FundingRate * nEvents
	fundingCostR := numerics.SafeDivide(-fundingPnlFrac*signal.Entry, unitRiskAllinNet, 0)

	netYieldR := evRPriceNet - fundingCostR + fundingBonusRUsed

	timeToFundingSec := float64(market.NextFundingTs-nowMs) / 1000.0
	tau := clip(numerics.SafeDivide(cfg.ProximitySoftSec-timeToFundingSec, cfg.ProximitySoftSec-cfg.ProximityHardSec, 0), 0, 1)
	proximityMult := 1 - (1-cfg.ProximityMultMin)*math.Pow(tau, cfg.ProximityPower)

	result := Gate9Result{
		FundingCostR:     fundingCostR,
		NetYieldR:        netYieldR,
		ProximityMult:    proximityMult,
		TimeToFundingSec: timeToFundingSec,
	}

	blackout := timeToFundingSec < cfg.ProximityHardSec &&
		fundingCostR > cfg.BlackoutCostRThreshold &&
		signal.HoldHoursEstimate < cfg.BlackoutHoldHoursMax

	if blackout {
		result.BaseResult = block("gate9", "funding_blackout", "hard window to next funding with costly, short-hold exposure")
		return result
	}

	result.BaseResult = pass("gate9", "funding cost within bounds")
	return result
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
