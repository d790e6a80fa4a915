package gates

import (
	"github.com/google/uuid"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
)

// PipelineInputs is everything one bar's pipeline invocation needs. It is
// assembled by the host from external collaborators (MRC, Baseline, MLE,
// Clock) per spec §6.
type PipelineInputs struct {
	Config    *config.Config
	Portfolio model.PortfolioState
	Market    model.MarketState
	Signal    model.Signal
	MLE       model.MLEOutput
	MRC       model.RegimeResult
	Baseline  model.RegimeResult
	NowMs     int64

	EmergencyCause         model.EmergencyCause
	SuccessfulBarCompleted bool
	ManualHaltAllTrading   bool
	ManualHaltNewEntries   bool
	Costs                  model.CostComponentsBps

	PrevConflictStreak int
	CandidateAsset     string
	CandidateSector    string
	CandidateExposureR float64
	FundingBonusRUsed  float64
}

// PipelineResult is the full Gate 0-10 chain plus the portfolio delta the
// host must persist.
type PipelineResult struct {
	DecisionID uuid.UUID

	Gate0  Gate0Result
	Gate1  Gate1Result
	Gate2  Gate2Result
	Gate3  Gate3Result
	Gate4  Gate4Result
	Gate5  Gate5Result
	Gate6  Gate6Result
	Gate7  Gate7Result
	Gate8  Gate8Result
	Gate9  Gate9Result
	Gate10 Gate10Result

	NewPortfolio   model.PortfolioState
	ConflictStreak int

	EntryAllowed bool
	BlockReason  string
}

// Run executes Gate 0 through Gate 10 in order. Every gate is called; once a
// gate blocks, each later gate only wraps the upstream reason as
// "gate<N>_blocked: ..." without evaluating its own checks. Gate 5's unit-risk validation is an invariant violation
// (spec §7) and is returned as an error, not folded into the result chain.
func Run(in PipelineInputs) (PipelineResult, error) {
	cfg := in.Config
	result := PipelineResult{DecisionID: uuid.New()}

	result.Gate0 = EvaluateGate0(cfg, in.Portfolio, in.Market, in.NowMs, in.Market.ATRZShort, in.EmergencyCause, in.SuccessfulBarCompleted)
	result.NewPortfolio = result.Gate0.Portfolio

	haltAll := in.ManualHaltAllTrading || in.Portfolio.ManualHaltAllTrading
	haltNew := in.ManualHaltNewEntries || in.Portfolio.ManualHaltNewEntries
	result.Gate1 = EvaluateGate1(result.Gate0, result.NewPortfolio.TradingMode, haltAll, haltNew)

	result.Gate2 = EvaluateGate2(cfg.Gate2, result.Gate1, in.MRC, in.Baseline, result.NewPortfolio.DRPState, in.PrevConflictStreak)
	result.ConflictStreak = result.Gate2.ConflictStreak

	result.Gate3 = EvaluateGate3(result.Gate2, in.Signal.Engine)

	result.Gate4 = EvaluateGate4(result.Gate3, in.Signal, in.Market.ATR)

	gate5, err := EvaluateGate5(cfg.Prices, result.Gate4, in.Signal, in.Market.ATR, in.Costs)
	if err != nil {
		return PipelineResult{}, err
	}
	result.Gate5 = gate5

	result.Gate6 = EvaluateGate6(cfg.Gate6, result.Gate5, in.MLE, result.Gate1.IsShadowMode)

	result.Gate7 = EvaluateGate7(cfg.Gate7, result.Gate6, in.Market, in.Signal.Direction)

	result.Gate8 = EvaluateGate8(cfg.Gate8, result.Gate7, in.Market, in.NowMs)

	evRPriceNet := result.Gate6.NetEdge
	result.Gate9 = EvaluateGate9(cfg.Gate9, result.Gate8, in.Signal, in.Market, result.Gate5.Effective.UnitRiskAllinNet, evRPriceNet, in.FundingBonusRUsed, in.NowMs)

	result.Gate10 = EvaluateGate10(cfg.Gate10, result.Gate9, result.NewPortfolio, in.Signal, in.CandidateAsset, in.CandidateSector, in.CandidateExposureR, in.Market.Correlations)

	result.EntryAllowed = result.Gate10.EntryAllowed
	if !result.EntryAllowed {
		// The top-level reason is that of the first gate that actually
		// blocked; Gate10.BlockReason keeps the full wrapped chain.
		result.BlockReason = firstBlockReason(result)
	}

	return result, nil
}

func firstBlockReason(r PipelineResult) string {
	chain := []BaseResult{
		r.Gate0.BaseResult, r.Gate1.BaseResult, r.Gate2.BaseResult, r.Gate3.BaseResult,
		r.Gate4.BaseResult, r.Gate5.BaseResult, r.Gate6.BaseResult, r.Gate7.BaseResult,
		r.Gate8.BaseResult, r.Gate9.BaseResult, r.Gate10.BaseResult,
	}
	for _, g := range chain {
		if !g.EntryAllowed {
			return g.BlockReason
		}
	}
	return ""
}
