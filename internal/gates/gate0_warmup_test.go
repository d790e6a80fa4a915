package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
)

func TestEvaluateGate0_HibernateStaysBlockedUntilUnlock(t *testing.T) {
	cfg := config.Default()
	portfolio := healthyPortfolio()
	portfolio.DRPState = model.DRPHibernate
	portfolio.HibernateUntilMs = testNowMs + 1000

	result := EvaluateGate0(cfg, portfolio, healthyMarket(), testNowMs, 1.0, "", true)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, "hibernate_mode", result.BlockReason)
	assert.Equal(t, model.DRPHibernate, result.Portfolio.DRPState)
}

func TestEvaluateGate0_HibernateUnlocksAndRunsDQSSameBar(t *testing.T) {
	cfg := config.Default()
	portfolio := healthyPortfolio()
	portfolio.DRPState = model.DRPHibernate
	portfolio.HibernateUntilMs = testNowMs

	result := EvaluateGate0(cfg, portfolio, healthyMarket(), testNowMs, 1.0, "", true)

	require.True(t, result.EntryAllowed, "blocked on: %s", result.BlockReason)
	assert.Equal(t, model.DRPNormal, result.Portfolio.DRPState)
}

func TestEvaluateGate0_DataGlitchEntersEmergencyWithWarmup(t *testing.T) {
	cfg := config.Default()
	portfolio := healthyPortfolio()
	market := healthyMarket()
	market.SourceTimestamps.PriceMs = testNowMs - (cfg.DQS.HardStalenessMsCritical + 1)

	result := EvaluateGate0(cfg, portfolio, market, testNowMs, 1.0, model.CauseDataGlitch, true)

	require.False(t, result.EntryAllowed)
	assert.Equal(t, "hard_gate:stale_price", result.BlockReason)
	assert.Equal(t, model.DRPEmergency, result.Portfolio.DRPState)
	assert.Equal(t, cfg.DRP.WarmupDataGlitch, result.Portfolio.WarmupBarsRemaining)
}

// TestEvaluateGate0_AntiFlapEscalatesToHibernate drives Gate 0 through
// NORMAL->EMERGENCY->RECOVERY->EMERGENCY by toggling price staleness each
// bar, verifying the flap-window buffer wired through PortfolioState
// escalates to HIBERNATE exactly as internal/drp's machine does in
// isolation.
func TestEvaluateGate0_AntiFlapEscalatesToHibernate(t *testing.T) {
	cfg := config.Default()
	cfg.DRP.FlapToHibernateThreshold = 3

	portfolio := healthyPortfolio()
	nowMs := testNowMs

	stale := true
	var last Gate0Result
	for i := 0; i < 6; i++ {
		market := healthyMarket()
		if stale {
			market.SourceTimestamps.PriceMs = nowMs - (cfg.DQS.HardStalenessMsCritical + 1)
		}
		last = EvaluateGate0(cfg, portfolio, market, nowMs, 1.0, model.CauseDataGlitch, true)
		portfolio = last.Portfolio
		stale = !stale
		nowMs += 1000
	}

	assert.Equal(t, model.DRPHibernate, last.Portfolio.DRPState)
	assert.False(t, last.EntryAllowed)
}
