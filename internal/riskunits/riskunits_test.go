package riskunits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskPctToUSDBelowMinimum(t *testing.T) {
	_, err := RiskPctToUSD(0.0001, 100)
	require.Error(t, err)
	var belowMin *RiskBelowMinimumError
	assert.ErrorAs(t, err, &belowMin)
}

func TestRoundTripUSDPctUSD(t *testing.T) {
	equity := 10000.0
	usd, err := RiskPctToUSD(0.02, equity)
	require.NoError(t, err)

	pct, err := RiskUSDToPct(usd, equity)
	require.NoError(t, err)

	usd2, err := RiskPctToUSD(pct, equity)
	require.NoError(t, err)

	assert.InEpsilon(t, usd, usd2, 1e-7)
}

func TestRoundTripPnLRPnL(t *testing.T) {
	risk := 150.0
	pnl := 73.25
	r := PnLToRValue(pnl, risk)
	pnl2 := RValueToPnL(r, risk)
	assert.InEpsilon(t, pnl, pnl2, 1e-9)
}

func TestSLInvariant(t *testing.T) {
	unitRisk := 42.0
	r := PnLToRValue(-unitRisk, unitRisk)
	assert.InDelta(t, -1.0, r, 1e-9)
}
