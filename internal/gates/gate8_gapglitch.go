package gates

import (
	"math"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/numerics"
)

// DRPTrigger is the optional side-channel output of Gate 8, consumed by the
// host on the next bar (spec §4.15, §6).
type DRPTrigger struct {
	Cause model.EmergencyCause
}

// Gate8Result is the gap/glitch gate (spec §4.15).
type Gate8Result struct {
	BaseResult
	JumpFrac           float64
	SpikeZ             float64
	StaleBook          bool
	SuspectedDataGlitch bool
	Trigger            *DRPTrigger
}

// EvaluateGate8 detects price jumps, statistical spikes, and a stale book
// paired with a fresh price feed. Any hard anomaly sets
// suspected_data_glitch and emits a DRPTrigger for the next bar.
func EvaluateGate8(cfg config.Gate8Config, gate7 Gate7Result, market model.MarketState, nowMs int64) Gate8Result {
	if !gate7.EntryAllowed {
		return Gate8Result{BaseResult: propagateBlock("gate8", gate7.BlockReason)}
	}

	history := market.PriceHistory
	var jumpFrac float64
	if len(history) > 0 {
		prev := history[len(history)-1]
		jumpFrac = numerics.SafeDivide(math.Abs(market.Last-prev), math.Abs(prev), 0)
	}

	var spikeZ float64
	if len(history) >= 2 {
		mean, stddev := meanStddev(history)
		spikeZ = numerics.SafeDivide(math.Abs(market.Last-mean), stddev, 0)
	}

	priceAgeMs := nowMs - market.SourceTimestamps.PriceMs
	staleBook := market.OrderbookAgeMs > cfg.BookStaleMaxMs && priceAgeMs < cfg.PriceFreshMaxMs

	jumpHard := jumpFrac > cfg.JumpHardFrac
	spikeHard := spikeZ > cfg.SpikeZHard
	suspectedGlitch := jumpHard || spikeHard || staleBook

	result := Gate8Result{
		JumpFrac:            jumpFrac,
		SpikeZ:              spikeZ,
		StaleBook:           staleBook,
		SuspectedDataGlitch: suspectedGlitch,
	}

	if suspectedGlitch {
		result.Trigger = &DRPTrigger{Cause: model.CauseDataGlitch}
	}

	switch {
	case jumpHard:
		result.BaseResult = block("gate8", "gap_hard", "price jump exceeds jump_hard_frac")
	case spikeHard:
		result.BaseResult = block("gate8", "spike_hard", "price spike z-score exceeds z_hard")
	case staleBook:
		result.BaseResult = block("gate8", "stale_book", "orderbook stale while price feed fresh")
	default:
		result.BaseResult = pass("gate8", "no gap/glitch detected")
	}

	return result
}

func meanStddev(xs []float64) (mean, stddev float64) {
	n := float64(len(xs))
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean = sum / n
	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= n
	return mean, math.Sqrt(variance)
}
