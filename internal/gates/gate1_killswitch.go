package gates

import "github.com/sawpanic/admission-core/internal/model"

// Gate1Result is the manual-halt / trading-mode gate (spec §4.8).
type Gate1Result struct {
	BaseResult
	IsShadowMode bool
}

// EvaluateGate1 is a pure function of Gate0's result and the portfolio's
// halt flags and trading mode.
func EvaluateGate1(gate0 Gate0Result, tradingMode model.TradingMode, manualHaltAll, manualHaltNewEntries bool) Gate1Result {
	if !gate0.EntryAllowed {
		return Gate1Result{BaseResult: propagateBlock("gate1", gate0.BlockReason)}
	}

	if manualHaltAll {
		return Gate1Result{BaseResult: block("gate1", "manual_halt_all_trading", "operator halted all trading")}
	}
	if manualHaltNewEntries {
		return Gate1Result{BaseResult: block("gate1", "manual_halt_new_entries", "operator halted new entries")}
	}

	switch tradingMode {
	case model.TradingPaper:
		return Gate1Result{BaseResult: block("gate1", "trading_mode_paper", "trading mode is PAPER")}
	case model.TradingBacktest:
		return Gate1Result{BaseResult: block("gate1", "trading_mode_backtest", "trading mode is BACKTEST")}
	case model.TradingShadow:
		return Gate1Result{
			BaseResult:   pass("gate1", "shadow mode: runs to Gate 6 for telemetry only"),
			IsShadowMode: true,
		}
	default:
		return Gate1Result{BaseResult: pass("gate1", "trading mode LIVE")}
	}
}
