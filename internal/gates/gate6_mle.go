package gates

import (
	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
	"github.com/sawpanic/admission-core/internal/numerics"
)

// MLECategory classifies the net-edge decision (spec §4.13).
type MLECategory string

const (
	CategoryReject MLECategory = "REJECT"
	CategoryWeak   MLECategory = "WEAK"
	CategoryNormal MLECategory = "NORMAL"
	CategoryStrong MLECategory = "STRONG"
)

// Gate6Result is the MLE decision gate (spec §4.13).
type Gate6Result struct {
	BaseResult
	EVRPrice              float64
	ExpectedCostRPostMLE  float64
	NetEdge               float64
	Category              MLECategory
	RiskMult              float64
}

// EvaluateGate6 computes EV_R_price, net_edge, and the category-driven risk
// multiplier. In SHADOW mode the gate short-circuits: entry_allowed=false
// with reason shadow_mode_early_exit, even when the net edge itself would
// pass, matching spec §4.8/§4.13's described short-circuit point.
func EvaluateGate6(cfg config.Gate6Config, gate5 Gate5Result, mle model.MLEOutput, isShadowMode bool) Gate6Result {
	if !gate5.EntryAllowed {
		return Gate6Result{BaseResult: propagateBlock("gate6", gate5.BlockReason)}
	}

	evRPrice := mle.PSuccess*mle.MuSuccessR - (1-mle.PSuccess)*mle.MuFailR
	expectedCostRPostMLE := numerics.SafeDivide(mle.ExpectedCostBpsPost, gate5.UnitRiskBps, 0)
	netEdge := evRPrice - expectedCostRPostMLE

	category, riskMult := classifyNetEdge(cfg, netEdge, mle.Confidence)

	if isShadowMode {
		return Gate6Result{
			BaseResult:           block("gate6", "shadow_mode_early_exit", "shadow mode runs to Gate 6 for telemetry only"),
			EVRPrice:             evRPrice,
			ExpectedCostRPostMLE: expectedCostRPostMLE,
			NetEdge:              netEdge,
			Category:             category,
			RiskMult:             riskMult,
		}
	}

	if category == CategoryReject {
		return Gate6Result{
			BaseResult:           block("gate6", "net_edge_below_reject", "net_edge below theta_reject or confidence below minimum"),
			EVRPrice:             evRPrice,
			ExpectedCostRPostMLE: expectedCostRPostMLE,
			NetEdge:              netEdge,
			Category:             category,
			RiskMult:             0,
		}
	}

	return Gate6Result{
		BaseResult:           pass("gate6", "MLE decision computed"),
		EVRPrice:             evRPrice,
		ExpectedCostRPostMLE: expectedCostRPostMLE,
		NetEdge:              netEdge,
		Category:             category,
		RiskMult:             riskMult,
	}
}

// classifyNetEdge is monotonic non-decreasing in net_edge by construction:
// each band's risk_mult is >= the previous band's.
func classifyNetEdge(cfg config.Gate6Config, netEdge, confidence float64) (MLECategory, float64) {
	if netEdge < cfg.ThetaReject || confidence < cfg.MinConfidence {
		return CategoryReject, 0
	}
	switch {
	case netEdge < cfg.ThetaNormal:
		return CategoryWeak, cfg.RiskMultWeak
	case netEdge < cfg.ThetaStrong:
		return CategoryNormal, cfg.RiskMultNormal
	default:
		return CategoryStrong, cfg.RiskMultStrong
	}
}
