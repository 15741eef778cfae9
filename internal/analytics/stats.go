// internal/analytics/stats.go
package analytics

import (
	"math"
	"sort"
)

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// popStdDev is the population standard deviation (divisor n, not n-1): the
// heuristics treat the observed window as the whole population.
func popStdDev(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m := mean(series)
	sum := 0.0
	for _, v := range series {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(series)))
}

// percentile computes the pth percentile (0-100) with linear interpolation
// between closest ranks. The input is not mutated.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
