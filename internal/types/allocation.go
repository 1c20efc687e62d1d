package types

import "math"

// WeightEpsilon is the tolerance used when checking that allocation weights
// sum to one.
const WeightEpsilon = 1e-9

// Allocation maps ticker symbols to non-negative portfolio weights. A
// complete allocation's weights sum to 1.0 within WeightEpsilon.
type Allocation map[string]float64

// Sum returns the total weight across all tickers.
func (a Allocation) Sum() float64 {
	total := 0.0
	for _, w := range a {
		total += w
	}

	return total
}

// Scaled returns a copy of the allocation with every weight multiplied by factor.
func (a Allocation) Scaled(factor float64) Allocation {
	out := make(Allocation, len(a))
	for ticker, w := range a {
		out[ticker] = w * factor
	}

	return out
}

// Accumulate adds every weight from other into a. A ticker present in both
// accumulates.
func (a Allocation) Accumulate(other Allocation) {
	for ticker, w := range other {
		a[ticker] += w
	}
}

// Normalized returns a copy rescaled so weights sum to exactly 1.0. Returns
// the allocation unchanged if it is empty or its total is zero.
func (a Allocation) Normalized() Allocation {
	total := a.Sum()
	if len(a) == 0 || total == 0 {
		return a
	}

	out := make(Allocation, len(a))
	for ticker, w := range a {
		out[ticker] = w / total
	}

	return out
}

// SumsToOne reports whether the weights total 1.0 within WeightEpsilon.
func (a Allocation) SumsToOne() bool {
	return math.Abs(a.Sum()-1.0) <= WeightEpsilon
}
