package optimizer

import "github.com/iwvelando/budget-optimizer/pkg/constants"

// SeasonalityFactor averages the multipliers of the active months. With no
// active month the factor is neutral.
func SeasonalityFactor(seasonality [constants.MonthsPerYear]float64, active [constants.MonthsPerYear]bool) float64 {
	var sum float64
	var n int
	for i, on := range active {
		if !on {
			continue
		}
		sum += seasonality[i]
		n++
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}

// ContentLiftFactor converts content-channel spend into the relative boost
// applied to content-affected channels.
func ContentLiftFactor(contentSpend, per10k float64) float64 {
	if per10k <= 0 {
		return 0
	}
	return contentSpend / constants.ContentLiftUnit * per10k
}
