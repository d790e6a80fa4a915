// Package host is the reference bar-driver spec §5-§6 describes as an
// external collaborator: it injects a Clock, calls the MRC/Baseline/MLE
// external classifiers, invokes the pure gate pipeline, persists the
// resulting PortfolioState, and fans bar evaluation out across symbols.
// None of this lives in internal/gates — the pipeline stays a pure
// function with no I/O, per spec §5's "no gate suspends, blocks on I/O, or
// awaits".
package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/gates"
	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/telemetry"
)

// Clock is injected per spec §9's design note ("inject a clock interface;
// never read wall clock inside gates"). Every gate receives NowMs's value,
// never the clock itself.
type Clock interface {
	NowMs() int64
}

// SystemClock is the production Clock, backed by wall-clock time.
type SystemClock struct{}

// NowMs returns the current time as milliseconds since the Unix epoch.
func (SystemClock) NowMs() int64 { return time.Now().UnixMilli() }

// MRCClassifier is the Multi-Resolution Classifier external collaborator
// (spec §6).
type MRCClassifier interface {
	Classify(market model.MarketState) (model.RegimeResult, error)
}

// BaselineClassifier is the Baseline regime classifier external
// collaborator (spec §6).
type BaselineClassifier interface {
	Classify(market model.MarketState) (model.RegimeResult, error)
}

// MLEPredictor is the ML price-edge predictor external collaborator (spec
// §6).
type MLEPredictor interface {
	Predict(signal model.Signal, market model.MarketState) (model.MLEOutput, error)
}

// PortfolioStore persists PortfolioState between bars, keyed by symbol.
// Exclusive mutation per symbol mirrors the DRP machine's single-writer
// transition-history ownership (spec §5).
type PortfolioStore interface {
	Get(symbol string) (model.PortfolioState, bool)
	Put(symbol string, state model.PortfolioState)
}

// MemoryPortfolioStore is an in-memory PortfolioStore, sufficient for the
// reference harness and for tests; a production host would back this with
// its own durable storage (out of scope per spec §1).
type MemoryPortfolioStore struct {
	mu     sync.RWMutex
	states map[string]model.PortfolioState
}

// NewMemoryPortfolioStore builds an empty store.
func NewMemoryPortfolioStore() *MemoryPortfolioStore {
	return &MemoryPortfolioStore{states: make(map[string]model.PortfolioState)}
}

// Get returns the stored state for symbol, if any.
func (s *MemoryPortfolioStore) Get(symbol string) (model.PortfolioState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[symbol]
	return st, ok
}

// Put stores state for symbol, overwriting any previous value.
func (s *MemoryPortfolioStore) Put(symbol string, state model.PortfolioState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[symbol] = state
}

// BarInput is everything one symbol's one-bar invocation needs beyond the
// persisted PortfolioState, which the Driver looks up from its Store.
type BarInput struct {
	Symbol string
	Market model.MarketState
	Signal model.Signal

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

// Driver wires the pure gate pipeline to its external collaborators: the
// regime classifiers, the MLE predictor, the clock, the portfolio store,
// logging, telemetry, and the append-only decision log.
type Driver struct {
	Config    *config.Config
	Clock     Clock
	MRC       MRCClassifier
	Baseline  BaselineClassifier
	MLE       MLEPredictor
	Store     PortfolioStore
	Metrics   *telemetry.Registry
	Decisions *DecisionLog
	Log       zerolog.Logger
}

// RunBar evaluates the pipeline for one symbol's one bar: it calls the
// external classifiers/predictor, runs Gate 0 through Gate 10, persists the
// resulting PortfolioState, and records telemetry.
func (d *Driver) RunBar(in BarInput) (gates.PipelineResult, error) {
	portfolio, ok := d.Store.Get(in.Symbol)
	if !ok {
		return gates.PipelineResult{}, fmt.Errorf("host: no portfolio state seeded for symbol %q", in.Symbol)
	}

	mrc, err := d.MRC.Classify(in.Market)
	if err != nil {
		return gates.PipelineResult{}, fmt.Errorf("host: MRC classify: %w", err)
	}
	baseline, err := d.Baseline.Classify(in.Market)
	if err != nil {
		return gates.PipelineResult{}, fmt.Errorf("host: baseline classify: %w", err)
	}
	mle, err := d.MLE.Predict(in.Signal, in.Market)
	if err != nil {
		return gates.PipelineResult{}, fmt.Errorf("host: MLE predict: %w", err)
	}

	nowMs := d.Clock.NowMs()
	result, err := gates.Run(gates.PipelineInputs{
		Config:    d.Config,
		Portfolio: portfolio,
		Market:    in.Market,
		Signal:    in.Signal,
		MLE:       mle,
		MRC:       mrc,
		Baseline:  baseline,
		NowMs:     nowMs,

		EmergencyCause:         in.EmergencyCause,
		SuccessfulBarCompleted: in.SuccessfulBarCompleted,
		ManualHaltAllTrading:   in.ManualHaltAllTrading,
		ManualHaltNewEntries:   in.ManualHaltNewEntries,
		Costs:                  in.Costs,

		PrevConflictStreak: in.PrevConflictStreak,
		CandidateAsset:     in.CandidateAsset,
		CandidateSector:    in.CandidateSector,
		CandidateExposureR: in.CandidateExposureR,
		FundingBonusRUsed:  in.FundingBonusRUsed,
	})
	if err != nil {
		d.Log.Error().Str("symbol", in.Symbol).Err(err).Msg("pipeline invariant violation")
		return gates.PipelineResult{}, err
	}

	d.Store.Put(in.Symbol, result.NewPortfolio)

	if d.Metrics != nil {
		d.Metrics.Observe(in.Symbol, result)
	}
	if d.Decisions != nil {
		if err := d.Decisions.Append(in.Symbol, nowMs, result); err != nil {
			return gates.PipelineResult{}, err
		}
	}

	if result.EntryAllowed {
		d.Log.Info().
			Str("symbol", in.Symbol).
			Str("decision_id", result.DecisionID.String()).
			Str("category", string(result.Gate6.Category)).
			Float64("risk_mult", result.Gate6.RiskMult).
			Msg("entry admitted")
	} else {
		d.Log.Warn().
			Str("symbol", in.Symbol).
			Str("decision_id", result.DecisionID.String()).
			Str("block_reason", result.BlockReason).
			Msg("entry blocked")
	}

	return result, nil
}

// RunBars fans RunBar out across symbols concurrently, one goroutine per
// symbol, matching spec §5: "Multiple symbols run in parallel by
// replicating the pipeline; each instance owns its own DRP machine." Each
// symbol only ever touches its own PortfolioStore entry, so no cross-goroutine
// contention exists beyond the store's own locking.
func (d *Driver) RunBars(ctx context.Context, ins map[string]BarInput) (map[string]gates.PipelineResult, error) {
	results := make(map[string]gates.PipelineResult, len(ins))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for symbol, in := range ins {
		symbol, in := symbol, in
		g.Go(func() error {
			result, err := d.RunBar(in)
			if err != nil {
				return fmt.Errorf("symbol %s: %w", symbol, err)
			}
			mu.Lock()
			results[symbol] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
