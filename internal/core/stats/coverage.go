package stats

import "math"

// CoveragePercent is the single point where bucket coverage is computed:
// protected area as a percentage of total area. It is always recomputed from
// the running sums, never averaged incrementally. IEEE-754 semantics apply:
// a zero total yields ±Inf or NaN, and NaN inputs propagate. Chart consumers
// filter non-finite values; this function does not.
func CoveragePercent(protectedArea, totalArea float64) float64 {
	return protectedArea / totalArea * 100
}

// FiniteCoverage is the strict-mode variant: it reports whether the inputs
// produce a finite coverage value at all.
func FiniteCoverage(protectedArea, totalArea float64) (float64, bool) {
	c := CoveragePercent(protectedArea, totalArea)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return c, false
	}
	return c, true
}
