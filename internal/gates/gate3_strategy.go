package gates

import "github.com/sawpanic/admission-core/internal/model"

// Gate3Result is the engine<->regime compatibility gate (spec §4.10).
type Gate3Result struct {
	BaseResult
}

var trendCompatible = map[model.RegimeClass]bool{
	model.RegimeTrendUp:      true,
	model.RegimeTrendDown:    true,
	model.RegimeBreakoutUp:   true,
	model.RegimeBreakoutDown: true,
	model.RegimeProbeTrade:   true,
}

var rangeCompatible = map[model.RegimeClass]bool{
	model.RegimeRange: true,
}

// EvaluateGate3 checks the strategy-compatibility matrix.
func EvaluateGate3(gate2 Gate2Result, engine model.EngineType) Gate3Result {
	if !gate2.EntryAllowed {
		return Gate3Result{BaseResult: propagateBlock("gate3", gate2.BlockReason)}
	}

	class := gate2.Final.Class
	if class == model.RegimeNoTrade || class == model.RegimeNoise {
		return Gate3Result{BaseResult: block("gate3", "incompatible_strategy_regime", "regime blocks all engines")}
	}

	compatible := false
	switch engine {
	case model.EngineTrend:
		compatible = trendCompatible[class]
	case model.EngineRange:
		compatible = rangeCompatible[class]
	}

	if !compatible {
		return Gate3Result{BaseResult: block("gate3", "incompatible_strategy_regime", "engine not compatible with final regime")}
	}
	return Gate3Result{BaseResult: pass("gate3", "engine compatible with final regime")}
}
