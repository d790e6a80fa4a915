package gates

import (
	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
)

// Gate2Result is the regime conflict-resolution gate (spec §4.9).
type Gate2Result struct {
	BaseResult
	Final          model.RegimeResult
	ConflictStreak int
}

// EvaluateGate2 resolves MRC vs. Baseline disagreement into a Final regime
// per the conflict-resolution table, tracking the opposite-trend conflict
// streak so sustained conflicts become a diagnostic block rather than
// silently oscillating between PROBE_TRADE and NO_TRADE every bar.
func EvaluateGate2(cfg config.Gate2Config, gate1 Gate1Result, mrc, baseline model.RegimeResult, drpState model.DRPState, prevConflictStreak int) Gate2Result {
	if !gate1.EntryAllowed {
		return Gate2Result{
			BaseResult:     propagateBlock("gate2", gate1.BlockReason),
			ConflictStreak: prevConflictStreak,
		}
	}

	oppositeConflict := isOppositeTrend(mrc.Class, baseline.Class)
	streak := 0
	if oppositeConflict {
		streak = prevConflictStreak + 1
	}

	lowConfidence := mrc.Confidence < cfg.MinRegimeConfidence || baseline.Confidence < cfg.MinRegimeConfidence

	if oppositeConflict && streak >= cfg.ConflictSustainedBars {
		return Gate2Result{
			BaseResult:     block("gate2", "regime_conflict_sustained", "MRC/Baseline opposite-trend conflict sustained across conflict_sustained_bars"),
			ConflictStreak: streak,
		}
	}

	if lowConfidence {
		return Gate2Result{
			BaseResult:     pass("gate2", "low confidence: final regime NO_TRADE"),
			Final:          model.RegimeResult{Class: model.RegimeNoTrade, Confidence: minConfidence(mrc, baseline)},
			ConflictStreak: streak,
		}
	}

	if mrc.Class == model.RegimeNoise {
		return Gate2Result{
			BaseResult:     pass("gate2", "MRC NOISE forces NO_TRADE"),
			Final:          model.RegimeResult{Class: model.RegimeNoTrade, Confidence: mrc.Confidence},
			ConflictStreak: streak,
		}
	}

	if oppositeConflict {
		probeMet := mrc.Confidence >= cfg.MinProbeConfidence &&
			baseline.Confidence >= cfg.MinProbeConfidence &&
			streak < cfg.ConflictSustainedBars &&
			drpState == model.DRPNormal

		final := model.RegimeClass(model.RegimeNoTrade)
		if probeMet {
			final = model.RegimeProbeTrade
		}
		return Gate2Result{
			BaseResult:     pass("gate2", "MRC/Baseline opposite-trend conflict resolved"),
			Final:          model.RegimeResult{Class: final, Confidence: mrc.Confidence},
			ConflictStreak: streak,
		}
	}

	if mrc.Class == model.RegimeRange && baseline.Class == model.RegimeRange {
		return Gate2Result{
			BaseResult:     pass("gate2", "both classifiers agree RANGE"),
			Final:          model.RegimeResult{Class: model.RegimeRange, Confidence: mrc.Confidence},
			ConflictStreak: streak,
		}
	}

	if mrc.Class == model.RegimeBreakoutUp && baseline.Class == model.RegimeTrendUp {
		return Gate2Result{
			BaseResult:     pass("gate2", "breakout confirmed by baseline trend"),
			Final:          model.RegimeResult{Class: model.RegimeBreakoutUp, Confidence: mrc.Confidence},
			ConflictStreak: streak,
		}
	}
	if mrc.Class == model.RegimeBreakoutDown && baseline.Class == model.RegimeTrendDown {
		return Gate2Result{
			BaseResult:     pass("gate2", "breakout confirmed by baseline trend"),
			Final:          model.RegimeResult{Class: model.RegimeBreakoutDown, Confidence: mrc.Confidence},
			ConflictStreak: streak,
		}
	}

	// Default: final tracks MRC's class unless a rule above overruled it.
	return Gate2Result{
		BaseResult:     pass("gate2", "default to MRC classification"),
		Final:          model.RegimeResult{Class: mrc.Class, Confidence: mrc.Confidence},
		ConflictStreak: streak,
	}
}

func isOppositeTrend(a, b model.RegimeClass) bool {
	return (a == model.RegimeTrendUp && b == model.RegimeTrendDown) ||
		(a == model.RegimeTrendDown && b == model.RegimeTrendUp)
}

func minConfidence(a, b model.RegimeResult) float64 {
	if a.Confidence < b.Confidence {
		return a.Confidence
	}
	return b.Confidence
}
