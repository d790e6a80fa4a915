package compounding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeLogReturnDomainViolation(t *testing.T) {
	_, err := SafeLogReturn(-1.0)
	require.Error(t, err)
	var domainErr *DomainViolationError
	assert.ErrorAs(t, err, &domainErr)
}

func TestSafeLogReturnSmallVsLarge(t *testing.T) {
	small, err := SafeLogReturn(1e-6)
	require.NoError(t, err)
	assert.Greater(t, small, 0.0)

	large, err := SafeLogReturn(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.405465, large, 1e-5)
}

func TestCompoundEquityMatchesDirectProduct(t *testing.T) {
	equity, err := CompoundEquity(100, []float64{0.1, -0.05, 0.02})
	require.NoError(t, err)
	expected := 100 * 1.1 * 0.95 * 1.02
	assert.InEpsilon(t, expected, equity, 1e-9)
}

func TestVarianceDragCritical(t *testing.T) {
	result, err := AnalyzeVarianceDrag([]float64{0.5, -0.4, 0.5, -0.4})
	require.NoError(t, err)
	assert.Greater(t, result.VarianceDrag, 0.0)
	assert.True(t, result.Critical)
}
