// Package riskunits converts between USD, equity-fraction (percent), and
// R-units. All conversions are size-invariant: they never look at a
// quantity, only at price/risk/equity scalars.
package riskunits

import (
	"fmt"

	"github.com/sawpanic/admission-core/internal/numerics"
)

// EquityEffectiveFloor is the minimum equity used for percent-of-equity
// calculations, guarding against division blowups on near-zero accounts.
const EquityEffectiveFloor = 1e-6

// RiskAmountMinAbsoluteUSD is the minimum absolute risk, in USD, that any
// computed risk amount must clear.
const RiskAmountMinAbsoluteUSD = 0.10

// EquityEffective floors equity at EquityEffectiveFloor.
func EquityEffective(equity float64) float64 {
	if equity < EquityEffectiveFloor {
		return EquityEffectiveFloor
	}
	return equity
}

// RiskBelowMinimumError is returned when a risk-pct-to-USD conversion
// produces an amount below RiskAmountMinAbsoluteUSD.
type RiskBelowMinimumError struct {
	USD float64
}

func (e *RiskBelowMinimumError) Error() string {
	return fmt.Sprintf("risk_amount_below_minimum_block: %.6f < %.2f", e.USD, RiskAmountMinAbsoluteUSD)
}

// RiskPctToUSD converts a risk fraction of equity (e.g. 0.01 for 1%) into an
// absolute USD amount, validating it clears RiskAmountMinAbsoluteUSD.
func RiskPctToUSD(pct, equity float64) (float64, error) {
	usd := pct * EquityEffective(equity)
	if usd < RiskAmountMinAbsoluteUSD {
		return usd, &RiskBelowMinimumError{USD: usd}
	}
	return usd, nil
}

// RiskUSDToPct is the exact inverse of RiskPctToUSD on the validated domain
// (usd >= RiskAmountMinAbsoluteUSD).
func RiskUSDToPct(usd, equity float64) (float64, error) {
	if usd < RiskAmountMinAbsoluteUSD {
		return 0, &RiskBelowMinimumError{USD: usd}
	}
	eff := EquityEffective(equity)
	return usd / eff, nil
}

// PnLToRValue expresses a PnL amount in units of the committed risk.
func PnLToRValue(pnl, risk float64) float64 {
	return numerics.SafeDivide(pnl, risk, 0)
}

// RValueToPnL is the inverse of PnLToRValue.
func RValueToPnL(rValue, risk float64) float64 {
	return rValue * risk
}
