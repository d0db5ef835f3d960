package financial

import "math"

const (
	newtonMaxIter   = 60
	newtonTolerance = 1e-7

	bisectLow     = -0.99
	bisectHigh    = 10.0
	bisectMaxIter = 200
)

// NPV discounts a cashflow series at the given rate. Index 0 is year 0 and
// is not discounted.
func NPV(cashflow []float64, rate float64) float64 {
	var npv float64
	for t, cf := range cashflow {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

// IRR solves NPV(cashflow, r) = 0 with Newton-Raphson, falling back to
// bisection when the derivative vanishes or an update goes non-finite. The
// result is clamped to [0, 1]. A cashflow whose entries all share one sign
// has no meaningful root and returns the 0 sentinel.
func IRR(cashflow []float64) float64 {
	if !signChange(cashflow) {
		return 0
	}

	r := 0.1
	for i := 0; i < newtonMaxIter; i++ {
		f := NPV(cashflow, r)
		if math.Abs(f) < newtonTolerance {
			return clampRate(r)
		}
		d := npvDerivative(cashflow, r)
		if math.Abs(d) < 1e-12 || math.IsNaN(d) || math.IsInf(d, 0) {
			return clampRate(bisectIRR(cashflow))
		}
		next := r - f/d
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			return clampRate(bisectIRR(cashflow))
		}
		r = next
	}
	return clampRate(bisectIRR(cashflow))
}

func npvDerivative(cashflow []float64, rate float64) float64 {
	var d float64
	for t := 1; t < len(cashflow); t++ {
		d -= float64(t) * cashflow[t] / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// bisectIRR brackets the root between bisectLow and bisectHigh. If NPV does
// not change sign across the bracket there is nothing to solve and it
// returns the neutral 0 rather than looping.
func bisectIRR(cashflow []float64) float64 {
	lo, hi := bisectLow, bisectHigh
	fLo, fHi := NPV(cashflow, lo), NPV(cashflow, hi)
	if fLo*fHi > 0 {
		return 0
	}
	for i := 0; i < bisectMaxIter; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(cashflow, mid)
		if math.Abs(fMid) < newtonTolerance {
			return mid
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return (lo + hi) / 2
}

func signChange(cashflow []float64) bool {
	var hasPos, hasNeg bool
	for _, cf := range cashflow {
		if cf > 0 {
			hasPos = true
		} else if cf < 0 {
			hasNeg = true
		}
	}
	return hasPos && hasNeg
}

func clampRate(r float64) float64 {
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
