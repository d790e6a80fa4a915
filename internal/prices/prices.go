// Package prices bakes spread/fee/slippage/impact costs into effective
// entry/take-profit/stop-loss prices and derives the all-in unit risk those
// effective prices imply.
package prices

import (
	"fmt"
	"math"

	"github.com/sawpanic/admission-core/internal/model"
)

// UnitRiskTooSmallError is raised when unit_risk_allin_net fails validation.
type UnitRiskTooSmallError struct {
	UnitRisk float64
	Floor    float64
}

func (e *UnitRiskTooSmallError) Error() string {
	return fmt.Sprintf("unit_risk_too_small_block: %.8f < %.8f", e.UnitRisk, e.Floor)
}

// EffectivePrices is the result of baking costs into nominal entry/TP/SL.
type EffectivePrices struct {
	EntryEff         float64
	TPEff            float64
	SLEff            float64
	UnitRiskAllinNet float64

	CEntryFrac float64
	CExitFrac  float64
	CSLFrac    float64
}

// bps converts a basis-point value into a fraction.
func bps(x float64) float64 { return x / 1e4 }

// Compute applies spec §4.3's cost model for the given direction, nominal
// entry/TP/SL, and ATR (used only for unit-risk validation). absMinUnitRiskUSD
// and unitRiskMinATRMult come from the single authoritative Config (see
// internal/config) so the floor is never duplicated across callers.
func Compute(direction model.Direction, entry, tp, sl, atr, absMinUnitRiskUSD, unitRiskMinATRMult float64, costs model.CostComponentsBps) (EffectivePrices, error) {
	stopSlipMult := costs.StopSlippageMult
	if stopSlipMult < 1 {
		stopSlipMult = 1
	}

	half_spread := bps(costs.SpreadBps) / 2

	cEntry := half_spread + bps(costs.FeeEntryBps) + bps(costs.SlippageEntryBps) + bps(costs.ImpactEntryBps)
	cExit := half_spread + bps(costs.FeeExitBps) + bps(costs.SlippageTPBps) + bps(costs.ImpactExitBps)
	cSL := half_spread + stopSlipMult*bps(costs.FeeExitBps) + bps(costs.SlippageStopBps) + bps(costs.ImpactStopBps)

	var entryEff, tpEff, slEff float64
	switch direction {
	case model.Long:
		entryEff = entry * (1 + cEntry)
		tpEff = tp * (1 - cExit)
		slEff = sl * (1 - cSL)
	case model.Short:
		entryEff = entry * (1 - cEntry)
		tpEff = tp * (1 + cExit)
		slEff = sl * (1 + cSL)
	default:
		return EffectivePrices{}, fmt.Errorf("prices: unknown direction %q", direction)
	}

	unitRisk := math.Abs(entryEff - slEff)
	floor := math.Max(absMinUnitRiskUSD, atr*unitRiskMinATRMult)
	if unitRisk < floor {
		return EffectivePrices{}, &UnitRiskTooSmallError{UnitRisk: unitRisk, Floor: floor}
	}

	return EffectivePrices{
		EntryEff:         entryEff,
		TPEff:            tpEff,
		SLEff:            slEff,
		UnitRiskAllinNet: unitRisk,
		CEntryFrac:       cEntry,
		CExitFrac:        cExit,
		CSLFrac:          cSL,
	}, nil
}
