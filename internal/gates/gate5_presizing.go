package gates

import (
	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/numerics"
	"github.com/sawpanic/admission-core/internal/prices"
)

// Gate5Result is the size-invariant pre-sizing gate (spec §4.12).
type Gate5Result struct {
	BaseResult
	Effective            prices.EffectivePrices
	UnitRiskBps          float64
	ExpectedCostRPreMLE  float64
}

// EvaluateGate5 computes unit_risk_bps and the pre-MLE expected cost in R,
// assuming a full SL exit, from the already-validated Signal. A too-small
// unit risk is an invariant violation per spec §7 (the caller handed us an
// un-sizeable signal) and bubbles up as an error rather than a gate block.
func EvaluateGate5(cfg config.PricesConfig, gate4 Gate4Result, signal model.Signal, atr float64, costs model.CostComponentsBps) (Gate5Result, error) {
	if !gate4.EntryAllowed {
		return Gate5Result{BaseResult: propagateBlock("gate5", gate4.BlockReason)}, nil
	}

	eff, err := prices.Compute(signal.Direction, signal.Entry, signal.TP, signal.SL, atr, cfg.AbsMinUnitRiskUSD, cfg.UnitRiskMinATRMult, costs)
	if err != nil {
		return Gate5Result{}, err
	}

	unitRiskBps := numerics.SafeDivide(1e4*eff.UnitRiskAllinNet, eff.EntryEff, 0)
	expectedCostRPreMLE := numerics.SafeDivide((eff.CEntryFrac+eff.CSLFrac)*signal.Entry, eff.UnitRiskAllinNet, 0)

	return Gate5Result{
		BaseResult:          pass("gate5", "pre-sizing computed"),
		Effective:           eff,
		UnitRiskBps:         unitRiskBps,
		ExpectedCostRPreMLE: expectedCostRPreMLE,
	}, nil
}
