package gates

import (
	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/dqs"
	"github.com/sawpanic/admission-core/internal/drp"
	"github.com/sawpanic/admission-core/internal/model"
)

// Gate0Result composes the DQS evaluator and DRP machine into the entry
// point of the pipeline (spec §4.7).
type Gate0Result struct {
	BaseResult
	DQS    dqs.Result
	DRP    drp.Result
	Portfolio model.PortfolioState
}

// EvaluateGate0 integrates DQS + DRP and blocks on hard-gates, new
// EMERGENCY, or RECOVERY with warm-up still pending.
func EvaluateGate0(cfg *config.Config, portfolio model.PortfolioState, market model.MarketState, nowMs int64, atrZShort float64, emergencyCause model.EmergencyCause, successfulBarCompleted bool) Gate0Result {
	drpIn := drp.Inputs{
		CurrentState:           portfolio.DRPState,
		WarmupBarsRemaining:    portfolio.WarmupBarsRemaining,
		DRPFlapCount:           portfolio.DRPFlapCount,
		HibernateUntilMs:       portfolio.HibernateUntilMs,
		NowMs:                  nowMs,
		ATRZShort:              atrZShort,
		EmergencyCause:         emergencyCause,
		SuccessfulBarCompleted: successfulBarCompleted,
		History:                portfolio.TransitionHistory,
	}

	// If currently HIBERNATE, resolve the unlock/stay decision first, as
	// spec §4.7 step 1 requires, before looking at DQS at all.
	if portfolio.DRPState == model.DRPHibernate {
		hibResult := drp.Evaluate(cfg.DRP, drpIn)
		if hibResult.NewState == model.DRPHibernate {
			newPortfolio := applyDRP(portfolio, hibResult)
			return Gate0Result{
				BaseResult: block("gate0", "hibernate_mode", hibResult.Reason),
				DRP:        hibResult,
				Portfolio:  newPortfolio,
			}
		}
		// Unlocked: fall through to a normal DQS+DRP evaluation this bar
		// using the unlocked state as the new current state.
		portfolio = applyDRP(portfolio, hibResult)
		drpIn.CurrentState = portfolio.DRPState
		drpIn.WarmupBarsRemaining = portfolio.WarmupBarsRemaining
		drpIn.DRPFlapCount = portfolio.DRPFlapCount
		drpIn.HibernateUntilMs = portfolio.HibernateUntilMs
		drpIn.History = portfolio.TransitionHistory
	}

	dqsResult := dqs.Evaluate(cfg.DQS, market, nowMs)
	drpIn.DQS = dqsResult.DQS
	drpIn.HardGateTriggered = dqsResult.HardGateTriggered

	drpResult := drp.Evaluate(cfg.DRP, drpIn)
	newPortfolio := applyDRP(portfolio, drpResult)

	switch {
	case dqsResult.HardGateTriggered:
		return Gate0Result{
			BaseResult: block("gate0", dqsResult.BlockReason, "dqs hard gate"),
			DQS:        dqsResult,
			DRP:        drpResult,
			Portfolio:  newPortfolio,
		}
	case drpResult.NewState == model.DRPEmergency:
		return Gate0Result{
			BaseResult: block("gate0", "emergency_mode", drpResult.Reason),
			DQS:        dqsResult,
			DRP:        drpResult,
			Portfolio:  newPortfolio,
		}
	case drpResult.NewState == model.DRPRecovery && newPortfolio.WarmupBarsRemaining > 0:
		return Gate0Result{
			BaseResult: block("gate0", "warmup_in_progress", drpResult.Reason),
			DQS:        dqsResult,
			DRP:        drpResult,
			Portfolio:  newPortfolio,
		}
	case drpResult.NewState == model.DRPHibernate:
		return Gate0Result{
			BaseResult: block("gate0", "hibernate_mode", drpResult.Reason),
			DQS:        dqsResult,
			DRP:        drpResult,
			Portfolio:  newPortfolio,
		}
	default:
		return Gate0Result{
			BaseResult: pass("gate0", drpResult.Reason),
			DQS:        dqsResult,
			DRP:        drpResult,
			Portfolio:  newPortfolio,
		}
	}
}

func applyDRP(portfolio model.PortfolioState, result drp.Result) model.PortfolioState {
	newPortfolio := portfolio
	newPortfolio.DRPState = result.NewState
	newPortfolio.WarmupBarsRemaining = result.WarmupBarsRemaining
	newPortfolio.DRPFlapCount = result.DRPFlapCount
	newPortfolio.HibernateUntilMs = result.HibernateUntilMs
	newPortfolio.TransitionHistory = result.History
	return newPortfolio
}
