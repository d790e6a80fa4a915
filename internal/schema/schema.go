// Package schema is the JSON-contract validation boundary spec §9 calls
// for: it decodes the four stable wire contracts (market_state,
// portfolio_state, engine_signal, mle_output) and refuses malformed input
// before it ever reaches the pipeline, in the style of cryptorun's
// internal/quality.DataValidator — accumulate field-level errors into a
// Result rather than failing fast on the first one, so a caller can log or
// surface every problem with a bad payload at once.
package schema

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/sawpanic/admission-core/internal/model"
)

// Result accumulates every schema problem found in a payload. Valid is
// false as soon as any required field is missing or a value is out of its
// documented domain.
type Result struct {
	Valid  bool
	Errors []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r Result) asError(contract string) error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Contract: contract, Errors: r.Errors}
}

// ValidationError is returned when a decoded contract fails schema
// validation; Errors lists every problem found, not just the first.
type ValidationError struct {
	Contract string
	Errors   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: %s invalid: %v", e.Contract, e.Errors)
}

// marketStateWire mirrors spec §3/§6's market_state JSON contract:
// timestamps as integer milliseconds, rates as dimensionless fractions
// unless suffixed _bps, monetary amounts as USD decimals.
type marketStateWire struct {
	Symbol      string  `json:"symbol"`
	TimestampMs int64   `json:"timestamp_ms"`
	Last        float64 `json:"last"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	SpreadBps   float64 `json:"spread_bps"`

	ATR       float64 `json:"atr"`
	ATRZShort float64 `json:"atr_z_short"`

	DepthBidUSD  float64 `json:"depth_bid_usd"`
	DepthAskUSD  float64 `json:"depth_ask_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
	OBI          float64 `json:"obi"`

	FundingRate   float64 `json:"funding_rate"`
	NextFundingTs int64   `json:"next_funding_ts"`
	OpenInterest  float64 `json:"open_interest"`
	Basis         float64 `json:"basis"`

	PriceSrcA         float64  `json:"price_src_a"`
	PriceSrcB         float64  `json:"price_src_b"`
	OracleC           *float64 `json:"oracle_c,omitempty"`
	OracleStalenessMs *int64   `json:"oracle_staleness_ms,omitempty"`

	SourceTimestamps struct {
		PriceMs        int64 `json:"price_ms"`
		LiquidityMs    int64 `json:"liquidity_ms"`
		OrderbookMs    int64 `json:"orderbook_ms"`
		VolatilityMs   int64 `json:"volatility_ms"`
		FundingMs      int64 `json:"funding_ms"`
		OpenInterestMs int64 `json:"open_interest_ms"`
		BasisMs        int64 `json:"basis_ms"`
		DerivativesMs  int64 `json:"derivatives_ms"`
	} `json:"source_timestamps"`

	Correlations   map[string]float64 `json:"correlations,omitempty"`
	PriceHistory   []float64          `json:"price_history,omitempty"`
	OrderbookAgeMs int64              `json:"orderbook_age_ms"`
}

// DecodeMarketState validates and decodes a market_state JSON payload into
// model.MarketState.
func DecodeMarketState(data []byte) (model.MarketState, error) {
	var w marketStateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return model.MarketState{}, fmt.Errorf("schema: market_state: %w", err)
	}

	var result Result
	result.Valid = true
	if w.Symbol == "" {
		result.fail("missing required field: symbol")
	}
	if w.TimestampMs <= 0 {
		result.fail("timestamp_ms must be a positive integer millisecond epoch")
	}
	if !(w.Bid <= w.Last && w.Last <= w.Ask) {
		result.fail("invariant violated: bid <= last <= ask")
	}
	if w.SpreadBps < 0 {
		result.fail("spread_bps must be >= 0")
	}
	if w.ATR <= 0 {
		result.fail("atr must be > 0")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"last", w.Last}, {"bid", w.Bid}, {"ask", w.Ask}, {"atr", w.ATR},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			result.fail("%s must be finite", f.name)
		}
	}
	if err := result.asError("market_state"); err != nil {
		return model.MarketState{}, err
	}

	return model.MarketState{
		Symbol: w.Symbol, TimestampMs: w.TimestampMs,
		Last: w.Last, Bid: w.Bid, Ask: w.Ask, SpreadBps: w.SpreadBps,
		ATR: w.ATR, ATRZShort: w.ATRZShort,
		DepthBidUSD: w.DepthBidUSD, DepthAskUSD: w.DepthAskUSD,
		Volume24hUSD: w.Volume24hUSD, OBI: w.OBI,
		FundingRate: w.FundingRate, NextFundingTs: w.NextFundingTs,
		OpenInterest: w.OpenInterest, Basis: w.Basis,
		PriceSrcA: w.PriceSrcA, PriceSrcB: w.PriceSrcB,
		OracleC: w.OracleC, OracleStalenessMs: w.OracleStalenessMs,
		SourceTimestamps: model.SourceTimestamps{
			PriceMs: w.SourceTimestamps.PriceMs, LiquidityMs: w.SourceTimestamps.LiquidityMs,
			OrderbookMs: w.SourceTimestamps.OrderbookMs, VolatilityMs: w.SourceTimestamps.VolatilityMs,
			FundingMs: w.SourceTimestamps.FundingMs, OpenInterestMs: w.SourceTimestamps.OpenInterestMs,
			BasisMs: w.SourceTimestamps.BasisMs, DerivativesMs: w.SourceTimestamps.DerivativesMs,
		},
		Correlations: w.Correlations, PriceHistory: w.PriceHistory,
		OrderbookAgeMs: w.OrderbookAgeMs,
	}, nil
}

type positionWire struct {
	ID         string  `json:"id"`
	Symbol     string  `json:"symbol"`
	Direction  string  `json:"direction"`
	Entry      float64 `json:"entry"`
	SL         float64 `json:"sl"`
	TP         float64 `json:"tp"`
	Quantity   float64 `json:"quantity"`
	OpenedAtMs int64   `json:"opened_at_ms"`
	ExposureR  float64 `json:"exposure_r"`
	Asset      string  `json:"asset"`
	Sector     string  `json:"sector"`
}

type portfolioStateWire struct {
	EquityUSD            float64        `json:"equity_usd"`
	Positions            []positionWire `json:"positions"`
	DRPState             string         `json:"drp_state"`
	TradingMode          string         `json:"trading_mode"`
	ManualHaltAllTrading bool           `json:"manual_halt_all_trading"`
	ManualHaltNewEntries bool           `json:"manual_halt_new_entries"`
	WarmupBarsRemaining  int            `json:"warmup_bars_remaining"`
	DRPFlapCount         int            `json:"drp_flap_count"`
	HibernateUntilMs     int64          `json:"hibernate_until_ts"`
}

var validDRPStates = map[string]model.DRPState{
	"NORMAL": model.DRPNormal, "DEGRADED": model.DRPDegraded,
	"DEFENSIVE": model.DRPDefensive, "EMERGENCY": model.DRPEmergency,
	"RECOVERY": model.DRPRecovery, "HIBERNATE": model.DRPHibernate,
}

var validTradingModes = map[string]model.TradingMode{
	"LIVE": model.TradingLive, "SHADOW": model.TradingShadow,
	"PAPER": model.TradingPaper, "BACKTEST": model.TradingBacktest,
}

var validDirections = map[string]model.Direction{
	"LONG": model.Long, "SHORT": model.Short,
}

// DecodePortfolioState validates and decodes a portfolio_state JSON
// payload into model.PortfolioState. Position IDs are expected to be
// well-formed UUIDs; malformed IDs are rejected rather than silently
// coerced to the zero UUID.
func DecodePortfolioState(data []byte) (model.PortfolioState, error) {
	var w portfolioStateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return model.PortfolioState{}, fmt.Errorf("schema: portfolio_state: %w", err)
	}

	var result Result
	result.Valid = true
	if w.EquityUSD <= model.EquityMinForPctCalc {
		result.fail("equity_usd must be > equity_min_for_pct_calc")
	}
	drpState, ok := validDRPStates[w.DRPState]
	if !ok {
		result.fail("drp_state %q is not one of NORMAL/DEGRADED/DEFENSIVE/EMERGENCY/RECOVERY/HIBERNATE", w.DRPState)
	}
	tradingMode, ok := validTradingModes[w.TradingMode]
	if !ok {
		result.fail("trading_mode %q is not one of LIVE/SHADOW/PAPER/BACKTEST", w.TradingMode)
	}

	positions := make([]model.Position, 0, len(w.Positions))
	for i, pw := range w.Positions {
		dir, ok := validDirections[pw.Direction]
		if !ok {
			result.fail("positions[%d].direction %q is not LONG/SHORT", i, pw.Direction)
			continue
		}
		id, err := parseUUIDOrZero(pw.ID)
		if err != nil {
			result.fail("positions[%d].id %q is not a valid UUID", i, pw.ID)
			continue
		}
		positions = append(positions, model.Position{
			ID: id, Symbol: pw.Symbol, Direction: dir,
			Entry: pw.Entry, SL: pw.SL, TP: pw.TP, Quantity: pw.Quantity,
			OpenedAtMs: pw.OpenedAtMs, ExposureR: pw.ExposureR,
			Asset: pw.Asset, Sector: pw.Sector,
		})
	}

	if err := result.asError("portfolio_state"); err != nil {
		return model.PortfolioState{}, err
	}

	return model.PortfolioState{
		EquityUSD: w.EquityUSD, Positions: positions,
		DRPState: drpState, TradingMode: tradingMode,
		ManualHaltAllTrading: w.ManualHaltAllTrading, ManualHaltNewEntries: w.ManualHaltNewEntries,
		WarmupBarsRemaining: w.WarmupBarsRemaining, DRPFlapCount: w.DRPFlapCount,
		HibernateUntilMs: w.HibernateUntilMs,
	}, nil
}

type signalWire struct {
	Engine    string  `json:"engine"`
	Symbol    string  `json:"symbol"`
	Direction string  `json:"direction"`
	Entry     float64 `json:"entry"`
	TP        float64 `json:"tp"`
	SL        float64 `json:"sl"`
	RawRR     float64 `json:"raw_rr"`
	Constraints struct {
		MinRR        float64 `json:"min_rr"`
		SLMinATRMult float64 `json:"sl_min_atr_mult"`
		SLMaxATRMult float64 `json:"sl_max_atr_mult"`
	} `json:"constraints"`
	HoldHoursEstimate float64 `json:"hold_hours_estimate"`
}

var validEngines = map[string]model.EngineType{
	"TREND": model.EngineTrend, "RANGE": model.EngineRange,
}

// DecodeEngineSignal validates and decodes an engine_signal JSON payload
// into model.Signal.
func DecodeEngineSignal(data []byte) (model.Signal, error) {
	var w signalWire
	if err := json.Unmarshal(data, &w); err != nil {
		return model.Signal{}, fmt.Errorf("schema: engine_signal: %w", err)
	}

	var result Result
	result.Valid = true
	engine, ok := validEngines[w.Engine]
	if !ok {
		result.fail("engine %q is not TREND/RANGE", w.Engine)
	}
	direction, ok := validDirections[w.Direction]
	if !ok {
		result.fail("direction %q is not LONG/SHORT", w.Direction)
	}
	if w.Entry <= 0 || w.TP <= 0 || w.SL <= 0 {
		result.fail("entry/tp/sl must be positive")
	}
	if ok && direction == model.Long && !(w.SL < w.Entry && w.Entry < w.TP) {
		result.fail("LONG requires sl < entry < tp")
	}
	if ok && direction == model.Short && !(w.TP < w.Entry && w.Entry < w.SL) {
		result.fail("SHORT requires tp < entry < sl")
	}

	if err := result.asError("engine_signal"); err != nil {
		return model.Signal{}, err
	}

	return model.Signal{
		Engine: engine, Symbol: w.Symbol, Direction: direction,
		Entry: w.Entry, TP: w.TP, SL: w.SL, RawRR: w.RawRR,
		Constraints: model.SignalConstraints{
			MinRR: w.Constraints.MinRR, SLMinATRMult: w.Constraints.SLMinATRMult,
			SLMaxATRMult: w.Constraints.SLMaxATRMult,
		},
		HoldHoursEstimate: w.HoldHoursEstimate,
	}, nil
}

type mleOutputWire struct {
	PSuccess            float64 `json:"p_success"`
	MuSuccessR          float64 `json:"mu_success_r"`
	MuFailR             float64 `json:"mu_fail_r"`
	Confidence          float64 `json:"confidence"`
	ExpectedCostBpsPost float64 `json:"expected_cost_bps_post"`
}

// DecodeMLEOutput validates and decodes an mle_output JSON payload into
// model.MLEOutput.
func DecodeMLEOutput(data []byte) (model.MLEOutput, error) {
	var w mleOutputWire
	if err := json.Unmarshal(data, &w); err != nil {
		return model.MLEOutput{}, fmt.Errorf("schema: mle_output: %w", err)
	}

	var result Result
	result.Valid = true
	if w.PSuccess < 0 || w.PSuccess > 1 {
		result.fail("p_success must be in [0,1]")
	}
	if w.MuSuccessR < 0 {
		result.fail("mu_success_r must be >= 0")
	}
	if w.MuFailR < 0 {
		result.fail("mu_fail_r must be >= 0")
	}
	if w.Confidence < 0 || w.Confidence > 1 {
		result.fail("confidence must be in [0,1]")
	}

	if err := result.asError("mle_output"); err != nil {
		return model.MLEOutput{}, err
	}

	return model.MLEOutput{
		PSuccess: w.PSuccess, MuSuccessR: w.MuSuccessR, MuFailR: w.MuFailR,
		Confidence: w.Confidence, ExpectedCostBpsPost: w.ExpectedCostBpsPost,
	}, nil
}
