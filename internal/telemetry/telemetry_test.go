package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/admission-core/internal/gates"
	"github.com/sawpanic/admission-core/internal/model"
)

func TestObserveRecordsPassAndBlockCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	passResult := gates.PipelineResult{
		Gate0:  gates.Gate0Result{BaseResult: gates.BaseResult{GateName: "gate0", EntryAllowed: true}},
		Gate1:  gates.Gate1Result{BaseResult: gates.BaseResult{GateName: "gate1", EntryAllowed: true}},
		Gate10: gates.Gate10Result{BaseResult: gates.BaseResult{GateName: "gate10", EntryAllowed: true}},
		NewPortfolio: model.PortfolioState{
			DRPState: model.DRPNormal,
		},
	}
	r.Observe("BTC-USD", passResult)

	metric := &dto.Metric{}
	c, err := r.GatePass.GetMetricWithLabelValues("gate0", "BTC-USD")
	require.NoError(t, err)
	require.NoError(t, c.Write(metric))
	assert.Equal(t, 1.0, metric.GetCounter().GetValue())
}

func TestObserveRecordsBlockReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	blocked := gates.PipelineResult{
		Gate0: gates.Gate0Result{BaseResult: gates.BaseResult{GateName: "gate0", EntryAllowed: false, BlockReason: "hard_gate:glitch_nan"}},
		NewPortfolio: model.PortfolioState{
			DRPState: model.DRPEmergency,
		},
	}
	r.Observe("ETH-USD", blocked)

	metric := &dto.Metric{}
	c, err := r.GateBlock.GetMetricWithLabelValues("gate0", "ETH-USD", "hard_gate:glitch_nan")
	require.NoError(t, err)
	require.NoError(t, c.Write(metric))
	assert.Equal(t, 1.0, metric.GetCounter().GetValue())

	gauge := &dto.Metric{}
	g, err := r.DRPState.GetMetricWithLabelValues("ETH-USD")
	require.NoError(t, err)
	require.NoError(t, g.Write(gauge))
	assert.Equal(t, drpStateValue[model.DRPEmergency], gauge.GetGauge().GetValue())
}
