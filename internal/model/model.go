// Package model defines the immutable value objects shared across the
// admission core: market snapshots, portfolio state, positions, signals,
// MLE output, and regime classifications. Every value here is constructed
// once and never mutated — producing an updated view means building a new
// value.
package model

import "github.com/google/uuid"

// Direction is a trade side.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// EngineType identifies the strategy engine that produced a Signal.
type EngineType string

const (
	EngineTrend EngineType = "TREND"
	EngineRange EngineType = "RANGE"
)

// DRPState is the disaster-recovery-protocol state machine's state.
type DRPState string

const (
	DRPNormal     DRPState = "NORMAL"
	DRPDegraded   DRPState = "DEGRADED" // reserved; never entered, see DESIGN.md
	DRPDefensive  DRPState = "DEFENSIVE"
	DRPEmergency  DRPState = "EMERGENCY"
	DRPRecovery   DRPState = "RECOVERY"
	DRPHibernate  DRPState = "HIBERNATE"
)

// TradingMode gates whether a pipeline invocation may result in a live
// order.
type TradingMode string

const (
	TradingLive     TradingMode = "LIVE"
	TradingShadow   TradingMode = "SHADOW"
	TradingPaper    TradingMode = "PAPER"
	TradingBacktest TradingMode = "BACKTEST"
)

// EmergencyCause classifies why the DRP machine entered EMERGENCY, which in
// turn sets the RECOVERY warm-up length.
type EmergencyCause string

const (
	CauseDataGlitch EmergencyCause = "DATA_GLITCH"
	CauseLiquidity  EmergencyCause = "LIQUIDITY"
	CauseDepeg      EmergencyCause = "DEPEG"
	CauseOther      EmergencyCause = "OTHER"
)

// RegimeClass is the set of classifications a regime classifier (MRC or
// Baseline) or the Gate 2 conflict-resolution table can produce.
type RegimeClass string

const (
	RegimeTrendUp      RegimeClass = "TREND_UP"
	RegimeTrendDown    RegimeClass = "TREND_DOWN"
	RegimeRange        RegimeClass = "RANGE"
	RegimeNoise        RegimeClass = "NOISE"
	RegimeBreakoutUp   RegimeClass = "BREAKOUT_UP"
	RegimeBreakoutDown RegimeClass = "BREAKOUT_DOWN"
	RegimeNoTrade      RegimeClass = "NO_TRADE"
	RegimeProbeTrade   RegimeClass = "PROBE_TRADE"
)

// RegimeResult carries a classification and its confidence, used for both
// MRC and Baseline inputs as well as the Gate 2 final output.
type RegimeResult struct {
	Class      RegimeClass
	Confidence float64
	HorizonMin int
}

// SourceTimestamps carries last-update wall-clock millis per data source,
// used by the DQS evaluator's staleness stage.
type SourceTimestamps struct {
	PriceMs     int64
	LiquidityMs int64
	OrderbookMs int64
	VolatilityMs int64
	FundingMs    int64
	OpenInterestMs int64
	BasisMs        int64
	DerivativesMs  int64
}

// MarketState is an immutable per-symbol snapshot at a wall-clock instant.
type MarketState struct {
	Symbol    string
	TimestampMs int64

	Last     float64
	Bid      float64
	Ask      float64
	SpreadBps float64

	ATR        float64
	ATRZShort  float64

	DepthBidUSD   float64
	DepthAskUSD   float64
	Volume24hUSD  float64
	OBI           float64

	FundingRate    float64
	NextFundingTs  int64
	OpenInterest   float64
	Basis          float64

	PriceSrcA float64
	PriceSrcB float64
	OracleC   *float64 // optional; nil when no oracle feed is configured

	SourceTimestamps SourceTimestamps
	OracleStalenessMs *int64

	// Correlations maps other symbol -> correlation coefficient in [-1,1].
	Correlations map[string]float64

	// PriceHistory is the recent trailing close-price series, most-recent
	// last, consumed by Gate 8's jump/spike detection.
	PriceHistory []float64

	OrderbookAgeMs int64
}

// Valid checks the MarketState invariants from spec §3.
func (m MarketState) Valid() error {
	if !(m.Bid <= m.Last && m.Last <= m.Ask) {
		return errInvariant("market_state: bid <= last <= ask violated")
	}
	if m.SpreadBps < 0 {
		return errInvariant("market_state: spread_bps must be >= 0")
	}
	if m.ATR <= 0 {
		return errInvariant("market_state: atr must be > 0")
	}
	return nil
}

// Position is an open trade in the portfolio.
type Position struct {
	ID        uuid.UUID
	Symbol    string
	Direction Direction
	Entry     float64
	SL        float64
	TP        float64
	Quantity  float64
	OpenedAtMs int64
	ExposureR  float64
	Asset      string
	Sector     string
}

// Valid checks the Position invariant from spec §3.
func (p Position) Valid() error {
	switch p.Direction {
	case Long:
		if !(p.SL < p.Entry && p.Entry < p.TP) {
			return errInvariant("position: LONG requires SL < entry < TP")
		}
	case Short:
		if !(p.TP < p.Entry && p.Entry < p.SL) {
			return errInvariant("position: SHORT requires TP < entry < SL")
		}
	default:
		return errInvariant("position: unknown direction")
	}
	if p.ExposureR < 0 {
		return errInvariant("position: exposure_R must be >= 0")
	}
	return nil
}

// PortfolioState is durable across bars; the gate pipeline consumes one and
// produces a new value reflecting DRP/warm-up updates (see PortfolioStateDelta).
type PortfolioState struct {
	EquityUSD float64
	Positions []Position

	DRPState             DRPState
	TradingMode          TradingMode
	ManualHaltAllTrading bool
	ManualHaltNewEntries bool
	WarmupBarsRemaining  int
	DRPFlapCount         int
	HibernateUntilMs     int64

	// TransitionHistory is the DRP machine's bounded ring of past
	// transitions, pruned to the flap window. Owned exclusively by the DRP
	// machine instance for this symbol.
	TransitionHistory []DRPTransition
}

// EquityMinForPctCalc floors PortfolioState.EquityUSD for the portfolio
// invariant in spec §3.
const EquityMinForPctCalc = 1e-6

// Valid checks the PortfolioState invariant from spec §3.
func (p PortfolioState) Valid() error {
	if p.EquityUSD <= EquityMinForPctCalc {
		return errInvariant("portfolio_state: equity must be > equity_min_for_pct_calc")
	}
	return nil
}

// DRPTransition records one DRP state change for the flap-window buffer.
type DRPTransition struct {
	TimestampMs int64
	From        DRPState
	To          DRPState
}

// SignalConstraints are the per-engine admissibility bounds a Signal must
// satisfy at Gate 4.
type SignalConstraints struct {
	MinRR          float64
	SLMinATRMult   float64
	SLMaxATRMult   float64
}

// Signal is a candidate trade proposed by an engine.
type Signal struct {
	Engine    EngineType
	Symbol    string
	Direction Direction
	Entry     float64
	TP        float64
	SL        float64
	RawRR     float64
	Constraints SignalConstraints
	HoldHoursEstimate float64
}

// Valid checks the Signal invariant from spec §3: direction must be
// consistent with level ordering.
func (s Signal) Valid() error {
	switch s.Direction {
	case Long:
		if !(s.SL < s.Entry && s.Entry < s.TP) {
			return errInvariant("signal: LONG requires SL < entry < TP")
		}
	case Short:
		if !(s.TP < s.Entry && s.Entry < s.SL) {
			return errInvariant("signal: SHORT requires TP < entry < SL")
		}
	default:
		return errInvariant("signal: unknown direction")
	}
	return nil
}

// MLEOutput is the ML price-edge predictor's decision for a candidate
// Signal (external collaborator per spec §6).
type MLEOutput struct {
	PSuccess          float64
	MuSuccessR        float64
	MuFailR           float64
	Confidence        float64
	ExpectedCostBpsPost float64
}

// CostComponentsBps carries the basis-point cost inputs to effective-price
// arithmetic (spec §4.3).
type CostComponentsBps struct {
	SpreadBps          float64
	FeeEntryBps        float64
	FeeExitBps         float64
	SlippageEntryBps   float64
	SlippageTPBps      float64
	SlippageStopBps    float64
	ImpactEntryBps     float64
	ImpactExitBps      float64
	ImpactStopBps      float64
	StopSlippageMult   float64
}

func errInvariant(msg string) error {
	return &InvariantError{Msg: msg}
}

// InvariantError is the typed error returned for data-model invariant
// violations (spec §7 channel 1: bugs in caller or data).
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return e.Msg }
