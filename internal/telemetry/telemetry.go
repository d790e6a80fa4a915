// Package telemetry exposes Prometheus counters and gauges for the
// admission core's gate outcomes and DRP/DQS state, in the style of
// cryptorun's internal/interfaces/http MetricsRegistry. The core packages
// themselves never import this package (spec §7: "no log-level stdout in
// the core") — it is wired only from the reference host/CLI.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sawpanic/admission-core/internal/gates"
	"github.com/sawpanic/admission-core/internal/model"
)

// Registry holds every metric the reference harness exports for the
// admission pipeline.
type Registry struct {
	GatePass  *prometheus.CounterVec
	GateBlock *prometheus.CounterVec

	DQS          *prometheus.GaugeVec
	DQSMult      *prometheus.GaugeVec
	DRPState     *prometheus.GaugeVec
	DRPFlapCount *prometheus.GaugeVec

	RiskMult      *prometheus.GaugeVec
	LiquidityMult *prometheus.GaugeVec
	NetEdge       *prometheus.GaugeVec
}

// drpStateValue maps a DRPState to a stable numeric gauge value so
// dashboards can chart state over time without a string series.
var drpStateValue = map[model.DRPState]float64{
	model.DRPNormal:    0,
	model.DRPDegraded:  1,
	model.DRPDefensive: 2,
	model.DRPEmergency: 3,
	model.DRPRecovery:  4,
	model.DRPHibernate: 5,
}

// NewRegistry builds and registers every metric against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		GatePass: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_core_gate_pass_total",
			Help: "Number of pipeline invocations that passed a given gate.",
		}, []string{"gate", "symbol"}),
		GateBlock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_core_gate_block_total",
			Help: "Number of pipeline invocations blocked at a given gate, by reason.",
		}, []string{"gate", "symbol", "reason"}),
		DQS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "admission_core_dqs",
			Help: "Most recent Data Quality Score in [0,1] per symbol.",
		}, []string{"symbol"}),
		DQSMult: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "admission_core_dqs_mult",
			Help: "Most recent DQS risk-attenuation multiplier per symbol.",
		}, []string{"symbol"}),
		DRPState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "admission_core_drp_state",
			Help: "Current DRP state per symbol (0=NORMAL..5=HIBERNATE).",
		}, []string{"symbol"}),
		DRPFlapCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "admission_core_drp_flap_count",
			Help: "Current DRP flap-window transition count per symbol.",
		}, []string{"symbol"}),
		RiskMult: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "admission_core_gate6_risk_mult",
			Help: "Gate 6 risk multiplier for the most recent decision per symbol.",
		}, []string{"symbol"}),
		LiquidityMult: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "admission_core_gate7_liquidity_mult",
			Help: "Gate 7 liquidity multiplier for the most recent decision per symbol.",
		}, []string{"symbol"}),
		NetEdge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "admission_core_gate6_net_edge_r",
			Help: "Gate 6 net edge, in R, for the most recent decision per symbol.",
		}, []string{"symbol"}),
	}

	for _, c := range []prometheus.Collector{
		r.GatePass, r.GateBlock, r.DQS, r.DQSMult, r.DRPState, r.DRPFlapCount,
		r.RiskMult, r.LiquidityMult, r.NetEdge,
	} {
		reg.MustRegister(c)
	}
	return r
}

// gateOutcomes walks the result chain in gate order, pairing each gate's
// BaseResult with its stable name, so Observe doesn't need eleven repeated
// blocks.
func gateOutcomes(result gates.PipelineResult) []gates.BaseResult {
	return []gates.BaseResult{
		result.Gate0.BaseResult, result.Gate1.BaseResult, result.Gate2.BaseResult,
		result.Gate3.BaseResult, result.Gate4.BaseResult, result.Gate5.BaseResult,
		result.Gate6.BaseResult, result.Gate7.BaseResult, result.Gate8.BaseResult,
		result.Gate9.BaseResult, result.Gate10.BaseResult,
	}
}

// Observe records one pipeline invocation's gate outcomes and the
// diagnostics dashboards care about: DQS, DRP state/flap count, and the
// sizing multipliers computed along the way.
func (r *Registry) Observe(symbol string, result gates.PipelineResult) {
	for _, g := range gateOutcomes(result) {
		if g.EntryAllowed {
			r.GatePass.WithLabelValues(g.GateName, symbol).Inc()
		} else {
			r.GateBlock.WithLabelValues(g.GateName, symbol, g.BlockReason).Inc()
		}
	}

	r.DQS.WithLabelValues(symbol).Set(result.Gate0.DQS.DQS)
	r.DQSMult.WithLabelValues(symbol).Set(result.Gate0.DQS.DQSMult)
	r.DRPState.WithLabelValues(symbol).Set(drpStateValue[result.NewPortfolio.DRPState])
	r.DRPFlapCount.WithLabelValues(symbol).Set(float64(result.NewPortfolio.DRPFlapCount))
	r.RiskMult.WithLabelValues(symbol).Set(result.Gate6.RiskMult)
	r.LiquidityMult.WithLabelValues(symbol).Set(result.Gate7.LiquidityMult)
	r.NetEdge.WithLabelValues(symbol).Set(result.Gate6.NetEdge)
}
