package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/gates"
	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/schema"
)

// fixtureBundle is the debug driver's single-file input: the four stable
// JSON contracts (spec §6) plus the MRC/Baseline classifications a real
// host would obtain from its own classifier services, and the scalar
// per-bar controls EvaluateGate0/Gate2/etc. need. It is not itself one of
// the named JSON contracts — it exists only so `admission-core run` has
// one file to point at.
type fixtureBundle struct {
	MarketState    json.RawMessage `json:"market_state"`
	PortfolioState json.RawMessage `json:"portfolio_state"`
	EngineSignal   json.RawMessage `json:"engine_signal"`
	MLEOutput      json.RawMessage `json:"mle_output"`

	MRCResult      regimeWire `json:"mrc_result"`
	BaselineResult regimeWire `json:"baseline_result"`

	NowMs                  int64                   `json:"now_ms"`
	EmergencyCause         string                  `json:"emergency_cause"`
	SuccessfulBarCompleted bool                    `json:"successful_bar_completed"`
	ManualHaltAllTrading   bool                    `json:"manual_halt_all_trading"`
	ManualHaltNewEntries   bool                    `json:"manual_halt_new_entries"`
	Costs                  model.CostComponentsBps `json:"costs"`
	PrevConflictStreak     int                     `json:"prev_conflict_streak"`
	CandidateAsset         string                  `json:"candidate_asset"`
	CandidateSector        string                  `json:"candidate_sector"`
	CandidateExposureR     float64                 `json:"candidate_exposure_r"`
	FundingBonusRUsed      float64                 `json:"funding_bonus_r_used"`
}

type regimeWire struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	HorizonMin int     `json:"horizon_min"`
}

func (w regimeWire) toModel() model.RegimeResult {
	return model.RegimeResult{Class: model.RegimeClass(w.Class), Confidence: w.Confidence, HorizonMin: w.HorizonMin}
}

// loadFixture reads and validates a fixtureBundle from path, decoding its
// four embedded contracts through internal/schema so a malformed fixture
// is refused before the pipeline ever sees it.
func loadFixture(path string) (gates.PipelineInputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gates.PipelineInputs{}, fmt.Errorf("read fixture: %w", err)
	}

	var bundle fixtureBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return gates.PipelineInputs{}, fmt.Errorf("parse fixture: %w", err)
	}

	market, err := schema.DecodeMarketState(bundle.MarketState)
	if err != nil {
		return gates.PipelineInputs{}, err
	}
	portfolio, err := schema.DecodePortfolioState(bundle.PortfolioState)
	if err != nil {
		return gates.PipelineInputs{}, err
	}
	signal, err := schema.DecodeEngineSignal(bundle.EngineSignal)
	if err != nil {
		return gates.PipelineInputs{}, err
	}
	mle, err := schema.DecodeMLEOutput(bundle.MLEOutput)
	if err != nil {
		return gates.PipelineInputs{}, err
	}

	return gates.PipelineInputs{
		Config:    config.Default(),
		Portfolio: portfolio,
		Market:    market,
		Signal:    signal,
		MLE:       mle,
		MRC:       bundle.MRCResult.toModel(),
		Baseline:  bundle.BaselineResult.toModel(),
		NowMs:     bundle.NowMs,

		EmergencyCause:         model.EmergencyCause(bundle.EmergencyCause),
		SuccessfulBarCompleted: bundle.SuccessfulBarCompleted,
		ManualHaltAllTrading:   bundle.ManualHaltAllTrading,
		ManualHaltNewEntries:   bundle.ManualHaltNewEntries,
		Costs:                  bundle.Costs,

		PrevConflictStreak: bundle.PrevConflictStreak,
		CandidateAsset:     bundle.CandidateAsset,
		CandidateSector:    bundle.CandidateSector,
		CandidateExposureR: bundle.CandidateExposureR,
		FundingBonusRUsed:  bundle.FundingBonusRUsed,
	}, nil
}
