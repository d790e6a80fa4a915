// Package drp implements the six-state Disaster Recovery Protocol
// automaton: NORMAL, DEGRADED (reserved, never entered — see DESIGN.md),
// DEFENSIVE, EMERGENCY, RECOVERY, HIBERNATE. The machine owns no global
// state itself; callers thread PortfolioState's DRP fields and the bounded
// transition-history buffer through Evaluate on every bar.
package drp

import (
	"fmt"
	"math"

	"github.com/sawpanic/admission-core/internal/config"
	"github.com/sawpanic/admission-core/internal/model"
)

// Inputs is everything Evaluate needs for one bar's transition decision.
type Inputs struct {
	CurrentState           model.DRPState
	DQS                    float64
	HardGateTriggered      bool
	WarmupBarsRemaining    int
	DRPFlapCount           int
	HibernateUntilMs       int64
	NowMs                  int64
	ATRZShort              float64
	EmergencyCause         model.EmergencyCause
	SuccessfulBarCompleted bool
	History                []model.DRPTransition
}

// Result is the new DRP-related PortfolioState fields plus a diagnostic.
type Result struct {
	NewState            model.DRPState
	WarmupBarsRemaining  int
	DRPFlapCount         int
	HibernateUntilMs     int64
	History              []model.DRPTransition
	TransitionOccurred   bool
	Reason               string
}

func isStrictFlapState(s model.DRPState) bool {
	return s == model.DRPEmergency || s == model.DRPRecovery || s == model.DRPDefensive
}

func clipFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clipInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func warmupForCause(cfg config.DRPConfig, cause model.EmergencyCause) int {
	switch cause {
	case model.CauseDataGlitch:
		return cfg.WarmupDataGlitch
	case model.CauseLiquidity:
		return cfg.WarmupLiquidity
	case model.CauseDepeg:
		return cfg.WarmupDepeg
	default:
		v := cfg.WarmupOtherBase + cfg.RecoveryHoldMinSec/60
		return clipInt(v, cfg.WarmupOtherMin, cfg.WarmupOtherMax)
	}
}

// Evaluate runs one bar of the DRP transition logic (spec §4.6).
func Evaluate(cfg config.DRPConfig, in Inputs) Result {
	if in.CurrentState == model.DRPHibernate {
		if in.NowMs >= in.HibernateUntilMs {
			return Result{
				NewState:           model.DRPNormal,
				WarmupBarsRemaining: 0,
				DRPFlapCount:       0,
				HibernateUntilMs:   in.HibernateUntilMs,
				History:            in.History,
				TransitionOccurred: true,
				Reason:             "hibernate_unlock",
			}
		}
		return Result{
			NewState:           model.DRPHibernate,
			WarmupBarsRemaining: in.WarmupBarsRemaining,
			DRPFlapCount:       in.DRPFlapCount,
			HibernateUntilMs:   in.HibernateUntilMs,
			History:            in.History,
			TransitionOccurred: false,
			Reason:             "hibernate_active",
		}
	}

	target := model.DRPNormal
	switch {
	case in.HardGateTriggered || in.DQS < cfg.EmergencyDQSThreshold:
		target = model.DRPEmergency
	case in.DQS < cfg.DefensiveDQSThreshold:
		target = model.DRPDefensive
	}

	var newState model.DRPState
	warmup := in.WarmupBarsRemaining
	reason := ""

	switch in.CurrentState {
	case model.DRPRecovery:
		if target == model.DRPEmergency {
			newState = model.DRPEmergency
			warmup = warmupForCause(cfg, in.EmergencyCause)
			reason = "recovery_interrupted_by_emergency"
		} else {
			if in.SuccessfulBarCompleted && warmup > 0 {
				warmup--
			}
			if warmup == 0 && target == model.DRPNormal {
				newState = model.DRPNormal
				reason = "recovery_complete"
			} else {
				newState = model.DRPRecovery
				reason = "recovery_in_progress"
			}
		}
	case model.DRPEmergency:
		if target != model.DRPEmergency {
			newState = model.DRPRecovery
			warmup = warmupForCause(cfg, in.EmergencyCause)
			reason = "emergency_to_recovery"
		} else {
			newState = model.DRPEmergency
			reason = "emergency_continues"
		}
	default: // NORMAL, DEFENSIVE, and the reserved DEGRADED (never entered)
		newState = target
		if newState == in.CurrentState {
			reason = "stable"
		} else if newState == model.DRPEmergency {
			warmup = warmupForCause(cfg, in.EmergencyCause)
			reason = fmt.Sprintf("%s_to_emergency", in.CurrentState)
		} else {
			reason = fmt.Sprintf("%s_to_%s", in.CurrentState, newState)
		}
	}

	transitionOccurred := newState != in.CurrentState
	history := in.History
	flapCount := in.DRPFlapCount
	hibernateUntil := in.HibernateUntilMs

	// A flap event is any real transition touching a strict state on either
	// end: into it, out of it, or among the strict set. Only same-state
	// no-ops and transitions between two non-strict states are excluded.
	if transitionOccurred && (isStrictFlapState(in.CurrentState) || isStrictFlapState(newState)) {
		history = append(append([]model.DRPTransition{}, history...), model.DRPTransition{
			TimestampMs: in.NowMs,
			From:        in.CurrentState,
			To:          newState,
		})

		flapWindowMinutes := clipFloat(cfg.FlapWindowBaseMinutes/math.Max(in.ATRZShort, 1), cfg.FlapWindowMinMinutes, cfg.FlapWindowMaxMinutes)
		flapWindowMs := int64(flapWindowMinutes * 60 * 1000)
		history = pruneHistory(history, in.NowMs, flapWindowMs)
		flapCount = len(history)

		if flapCount >= cfg.FlapToHibernateThreshold {
			newState = model.DRPHibernate
			hibernateUntil = in.NowMs + cfg.HibernateMinDurationSec*1000
			reason = "flap_to_hibernate"
			transitionOccurred = true
		}
	}

	return Result{
		NewState:            newState,
		WarmupBarsRemaining:  warmup,
		DRPFlapCount:         flapCount,
		HibernateUntilMs:     hibernateUntil,
		History:              history,
		TransitionOccurred:   transitionOccurred,
		Reason:               reason,
	}
}

// pruneHistory drops transitions older than windowMs relative to now,
// implementing the ring-buffer-by-timestamp design note.
func pruneHistory(history []model.DRPTransition, nowMs, windowMs int64) []model.DRPTransition {
	cutoff := nowMs - windowMs
	kept := make([]model.DRPTransition, 0, len(history))
	for _, t := range history {
		if t.TimestampMs >= cutoff {
			kept = append(kept, t)
		}
	}
	return kept
}
