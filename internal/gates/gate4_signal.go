package gates

import (
	"math"

	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/numerics"
)

// Gate4Result is the signal-validation gate (spec §4.11).
type Gate4Result struct {
	BaseResult
	SLDistance float64
}

// EvaluateGate4 checks raw-RR against the engine's minimum, SL distance
// against the ATR-multiple band, and basic sanity of the proposed levels.
func EvaluateGate4(gate3 Gate3Result, signal model.Signal, atr float64) Gate4Result {
	if !gate3.EntryAllowed {
		return Gate4Result{BaseResult: propagateBlock("gate4", gate3.BlockReason)}
	}

	if err := signal.Valid(); err != nil {
		return Gate4Result{BaseResult: block("gate4", "sl_distance_out_of_range", err.Error())}
	}
	if !numerics.IsFinite(signal.Entry) || !numerics.IsFinite(signal.TP) || !numerics.IsFinite(signal.SL) ||
		signal.Entry <= 0 || signal.TP <= 0 || signal.SL <= 0 {
		return Gate4Result{BaseResult: block("gate4", "sl_distance_out_of_range", "non-finite or non-positive price level")}
	}

	if signal.RawRR < signal.Constraints.MinRR {
		return Gate4Result{BaseResult: block("gate4", "rr_below_min", "raw_rr below engine minimum")}
	}

	slDistance := math.Abs(signal.Entry - signal.SL)
	minDist := signal.Constraints.SLMinATRMult * atr
	maxDist := signal.Constraints.SLMaxATRMult * atr
	if slDistance < minDist || slDistance > maxDist {
		return Gate4Result{
			BaseResult: block("gate4", "sl_distance_out_of_range", "SL distance outside [sl_min_atr_mult, sl_max_atr_mult] * atr"),
			SLDistance: slDistance,
		}
	}

	return Gate4Result{
		BaseResult: pass("gate4", "signal validated"),
		SLDistance: slDistance,
	}
}
