package gates

import (
	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
)

// testNowMs is the bar timestamp shared by every fixture below.
const testNowMs int64 = 1_000_000

// healthyMarket returns a fully fresh, internally-consistent MarketState
// that clears every gate from 0 through 9 on its own.
func healthyMarket() model.MarketState {
	return model.MarketState{
		Symbol:      "BTC-USD",
		TimestampMs: testNowMs,
		Last:        50000, Bid: 49990, Ask: 50010, SpreadBps: 4,
		ATR: 500, ATRZShort: 1.0,
		DepthBidUSD: 200000, DepthAskUSD: 200000,
		Volume24hUSD: 2_000_000,
		OBI:          0.1,
		FundingRate:  0.0001, NextFundingTs: testNowMs + 18_000_000,
		PriceSrcA: 50000, PriceSrcB: 50005,
		SourceTimestamps: model.SourceTimestamps{
			PriceMs: testNowMs - 100, LiquidityMs: testNowMs - 200,
			OrderbookMs: testNowMs - 300, VolatilityMs: testNowMs - 400,
			FundingMs: testNowMs - 1000, OpenInterestMs: testNowMs - 1000,
			BasisMs: testNowMs - 1000, DerivativesMs: testNowMs - 1000,
		},
		Correlations:   map[string]float64{"ETH-USD": 0.1},
		PriceHistory:   []float64{49900, 49950, 49970, 49990},
		OrderbookAgeMs: 100,
	}
}

func healthyPortfolio() model.PortfolioState {
	return model.PortfolioState{
		EquityUSD: 100000,
		Positions: []model.Position{
			{
				Symbol: "ETH-USD", Direction: model.Long,
				Entry: 3000, SL: 2900, TP: 3200, Quantity: 1,
				OpenedAtMs: testNowMs - 60_000, ExposureR: 5.0,
				Asset: "ETH", Sector: "L1",
			},
		},
		DRPState:    model.DRPNormal,
		TradingMode: model.TradingLive,
	}
}

func healthySignal() model.Signal {
	return model.Signal{
		Engine: model.EngineTrend, Symbol: "BTC-USD", Direction: model.Long,
		Entry: 50000, TP: 51000, SL: 49500, RawRR: 2.0,
		Constraints:       model.SignalConstraints{MinRR: 1.5, SLMinATRMult: 0.5, SLMaxATRMult: 3.0},
		HoldHoursEstimate: 10,
	}
}

func healthyMLE() model.MLEOutput {
	return model.MLEOutput{
		PSuccess: 0.6, MuSuccessR: 1.5, MuFailR: 0.5,
		Confidence: 0.8, ExpectedCostBpsPost: 10,
	}
}

func healthyCosts() model.CostComponentsBps {
	return model.CostComponentsBps{
		SpreadBps: 4, FeeEntryBps: 5, FeeExitBps: 5,
		SlippageEntryBps: 2, SlippageTPBps: 2, SlippageStopBps: 3,
		ImpactEntryBps: 1, ImpactExitBps: 1, ImpactStopBps: 1,
		StopSlippageMult: 1.2,
	}
}

func healthyRegime() model.RegimeResult {
	return model.RegimeResult{Class: model.RegimeTrendUp, Confidence: 0.8}
}

func healthyInputs() PipelineInputs {
	return PipelineInputs{
		Config:    config.Default(),
		Portfolio: healthyPortfolio(),
		Market:    healthyMarket(),
		Signal:    healthySignal(),
		MLE:       healthyMLE(),
		MRC:       healthyRegime(),
		Baseline:  healthyRegime(),
		NowMs:     testNowMs,

		SuccessfulBarCompleted: true,
		Costs:                  healthyCosts(),

		CandidateAsset:     "BTC",
		CandidateSector:    "L1",
		CandidateExposureR: 1.0,
	}
}
