package gates

import (
	"math"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
)

// Gate10Result is the portfolio-level correlation/exposure gate
// (spec §4.17). Basis-risk conflicts are explicitly future work per
// spec §9's second Open Question.
type Gate10Result struct {
	BaseResult
	CorrelationMult float64
	TotalExposureR  float64
}

// EvaluateGate10 checks correlation conflicts against open positions and
// exposure caps per asset/sector/total, including the candidate.
func EvaluateGate10(cfg config.Gate10Config, gate9 Gate9Result, portfolio model.PortfolioState, candidate model.Signal, candidateAsset, candidateSector string, candidateExposureR float64, correlations map[string]float64) Gate10Result {
	if !gate9.EntryAllowed {
		return Gate10Result{BaseResult: propagateBlock("gate10", gate9.BlockReason)}
	}

	correlationMult := 1.0
	for _, pos := range portfolio.Positions {
		rho := correlations[pos.Symbol]
		sameDirection := pos.Direction == candidate.Direction
		absRho := math.Abs(rho)

		if sameDirection && absRho >= cfg.CorrHardMax {
			return Gate10Result{BaseResult: block("gate10", "correlation_conflict", "correlated same-direction position exceeds corr_hard_max")}
		}
		if sameDirection && absRho >= cfg.CorrSoftMax {
			mult := 1 - (absRho-cfg.CorrSoftMax)/(cfg.CorrHardMax-cfg.CorrSoftMax)
			if mult < correlationMult {
				correlationMult = mult
			}
		}
	}

	assetExposure, sectorExposure, totalExposure := 0.0, 0.0, 0.0
	for _, pos := range portfolio.Positions {
		totalExposure += pos.ExposureR
		if pos.Asset == candidateAsset {
			assetExposure += pos.ExposureR
		}
		if pos.Sector == candidateSector {
			sectorExposure += pos.ExposureR
		}
	}

	if assetExposure+candidateExposureR > cfg.MaxExposureAssetR {
		return Gate10Result{BaseResult: block("gate10", "exposure_exceeded", "asset exposure cap exceeded")}
	}
	if sectorExposure+candidateExposureR > cfg.MaxExposureSectorR {
		return Gate10Result{BaseResult: block("gate10", "exposure_exceeded", "sector exposure cap exceeded")}
	}
	newTotalExposure := totalExposure + candidateExposureR
	if newTotalExposure > cfg.MaxExposureTotalR {
		return Gate10Result{BaseResult: block("gate10", "exposure_exceeded", "total exposure cap exceeded")}
	}

	if len(portfolio.Positions)+1 > cfg.MaxPositions {
		return Gate10Result{BaseResult: block("gate10", "exposure_exceeded", "max_positions exceeded")}
	}

	// Concentration is measured against an existing book: with no open
	// positions the candidate is the whole book and the cap does not apply.
	if len(portfolio.Positions) > 0 && newTotalExposure > 0 && (assetExposure+candidateExposureR) > cfg.MaxConcentrationRFrac*newTotalExposure {
		return Gate10Result{BaseResult: block("gate10", "exposure_exceeded", "single-asset concentration cap exceeded")}
	}

	return Gate10Result{
		BaseResult:      pass("gate10", "correlation/exposure within bounds"),
		CorrelationMult: correlationMult,
		TotalExposureR:  newTotalExposure,
	}
}
