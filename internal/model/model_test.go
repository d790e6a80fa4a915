package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMarket() MarketState {
	return MarketState{
		Symbol: "BTC-USD",
		Last:   50000, Bid: 49990, Ask: 50010, SpreadBps: 4,
		ATR: 500,
	}
}

func TestMarketStateValid(t *testing.T) {
	require.NoError(t, validMarket().Valid())

	crossed := validMarket()
	crossed.Bid = 50020
	assert.Error(t, crossed.Valid())

	negSpread := validMarket()
	negSpread.SpreadBps = -1
	assert.Error(t, negSpread.Valid())

	zeroATR := validMarket()
	zeroATR.ATR = 0
	assert.Error(t, zeroATR.Valid())
}

func TestPositionValid_LevelOrdering(t *testing.T) {
	long := Position{Direction: Long, Entry: 100, SL: 95, TP: 110, ExposureR: 1}
	require.NoError(t, long.Valid())

	short := Position{Direction: Short, Entry: 100, SL: 105, TP: 90, ExposureR: 1}
	require.NoError(t, short.Valid())

	invertedLong := Position{Direction: Long, Entry: 100, SL: 105, TP: 110, ExposureR: 1}
	assert.Error(t, invertedLong.Valid())

	invertedShort := Position{Direction: Short, Entry: 100, SL: 95, TP: 90, ExposureR: 1}
	assert.Error(t, invertedShort.Valid())

	negExposure := Position{Direction: Long, Entry: 100, SL: 95, TP: 110, ExposureR: -0.5}
	assert.Error(t, negExposure.Valid())

	unknownDirection := Position{Entry: 100, SL: 95, TP: 110}
	assert.Error(t, unknownDirection.Valid())
}

func TestSignalValid_DirectionConsistency(t *testing.T) {
	long := Signal{Direction: Long, Entry: 100, SL: 95, TP: 110}
	require.NoError(t, long.Valid())

	short := Signal{Direction: Short, Entry: 100, SL: 105, TP: 90}
	require.NoError(t, short.Valid())

	badLong := Signal{Direction: Long, Entry: 100, SL: 110, TP: 120}
	var invariant *InvariantError
	require.ErrorAs(t, badLong.Valid(), &invariant)
}

func TestPortfolioStateValid_EquityFloor(t *testing.T) {
	require.NoError(t, PortfolioState{EquityUSD: 10000}.Valid())
	assert.Error(t, PortfolioState{EquityUSD: 0}.Valid())
	assert.Error(t, PortfolioState{EquityUSD: EquityMinForPctCalc}.Valid())
}

func TestDeltaFrom_ProjectsDRPFields(t *testing.T) {
	p := PortfolioState{
		EquityUSD:           10000,
		DRPState:            DRPRecovery,
		WarmupBarsRemaining: 2,
		DRPFlapCount:        1,
		HibernateUntilMs:    12345,
	}

	delta := DeltaFrom(p)

	assert.Equal(t, PortfolioStateDelta{
		DRPState:            DRPRecovery,
		WarmupBarsRemaining: 2,
		DRPFlapCount:        1,
		HibernateUntilMs:    12345,
	}, delta)
}
