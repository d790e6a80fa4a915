package model

// PortfolioStateDelta is the produced, per-bar, per-symbol update to a
// PortfolioState's DRP-related fields (spec §6). The host merges this into
// its persisted PortfolioState; the gate pipeline itself only ever returns
// a full new PortfolioState (see gates.PipelineResult.NewPortfolio) and the
// delta is a thin projection of that for wire transport/audit.
type PortfolioStateDelta struct {
	DRPState            DRPState `json:"drp_state"`
	WarmupBarsRemaining int      `json:"warmup_bars_remaining"`
	DRPFlapCount        int      `json:"drp_flap_count"`
	HibernateUntilMs    int64    `json:"hibernate_until_ts"`
}

// DeltaFrom projects a full PortfolioState down to its DRP-related delta
// fields.
func DeltaFrom(p PortfolioState) PortfolioStateDelta {
	return PortfolioStateDelta{
		DRPState:            p.DRPState,
		WarmupBarsRemaining: p.WarmupBarsRemaining,
		DRPFlapCount:        p.DRPFlapCount,
		HibernateUntilMs:    p.HibernateUntilMs,
	}
}
