// Package compounding implements log1p-based geometric growth with the
// numerically-safe domain guard spec §4.4 requires, plus variance-drag
// diagnostics built on gonum/stat the way aristath-sentinel leans on gonum
// for its statistics.
package compounding

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SwitchThreshold is the |r| below which log1p is used directly instead of
// log(1+r); above it the two forms are numerically equivalent but log1p is
// cheaper to reason about near zero.
const SwitchThreshold = 1e-4

// FloorEpsilon keeps r from reaching exactly -1 (total loss), which would
// send log(1+r) to -Inf.
const FloorEpsilon = 1e-12

// DomainViolationError is raised when a per-bar return implies total ruin
// (r <= -1 + FloorEpsilon).
type DomainViolationError struct {
	R float64
}

func (e *DomainViolationError) Error() string {
	return fmt.Sprintf("compounding_domain_violation: return %.10f implies ruin", e.R)
}

// SafeLogReturn converts a simple per-bar return r into its log-return,
// raising DomainViolationError when r implies total ruin.
func SafeLogReturn(r float64) (float64, error) {
	if r <= -1+FloorEpsilon {
		return 0, &DomainViolationError{R: r}
	}
	if math.Abs(r) < SwitchThreshold {
		return math.Log1p(r), nil
	}
	return math.Log(1 + r), nil
}

// CompoundEquity applies a sequence of simple per-bar returns to an initial
// equity via the sum of log-returns, which is equivalent to but more
// numerically stable than repeated multiplication.
func CompoundEquity(initialEquity float64, returns []float64) (float64, error) {
	sumLog := 0.0
	for _, r := range returns {
		logR, err := SafeLogReturn(r)
		if err != nil {
			return 0, err
		}
		sumLog += logR
	}
	return initialEquity * math.Exp(sumLog), nil
}

// VarianceDragResult reports the gap between arithmetic and geometric mean
// return induced by volatility ("variance drag").
type VarianceDragResult struct {
	MeanReturn      float64
	MeanLogReturn   float64
	GeometricGrowth float64
	VarianceDrag    float64
	Critical        bool
}

// VarianceDragCriticalRatio is the threshold at which variance_drag /
// |mean(r)| is flagged critical.
const VarianceDragCriticalRatio = 0.3

// AnalyzeVarianceDrag computes the arithmetic vs. geometric mean gap across
// a series of simple per-bar returns, using gonum/stat for the mean.
func AnalyzeVarianceDrag(returns []float64) (VarianceDragResult, error) {
	if len(returns) == 0 {
		return VarianceDragResult{}, fmt.Errorf("compounding: empty return series")
	}

	logReturns := make([]float64, len(returns))
	for i, r := range returns {
		logR, err := SafeLogReturn(r)
		if err != nil {
			return VarianceDragResult{}, err
		}
		logReturns[i] = logR
	}

	meanReturn := stat.Mean(returns, nil)
	meanLogReturn := stat.Mean(logReturns, nil)
	geometricGrowth := math.Exp(meanLogReturn) - 1
	drag := meanReturn - geometricGrowth

	critical := false
	if math.Abs(meanReturn) > FloorEpsilon {
		critical = math.Abs(drag/meanReturn) >= VarianceDragCriticalRatio
	}

	return VarianceDragResult{
		MeanReturn:      meanReturn,
		MeanLogReturn:   meanLogReturn,
		GeometricGrowth: geometricGrowth,
		VarianceDrag:    drag,
		Critical:        critical,
	}, nil
}
