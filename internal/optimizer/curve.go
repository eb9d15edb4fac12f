package optimizer

import (
	"math"

	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/pkg/constants"
)

// saturationRate is -ln(1 - SaturationShare), i.e. ln(20): the exponent at
// which the curve has reached 95% of its asymptote.
var saturationRate = -math.Log(1 - constants.SaturationShare)

// Curve is a channel's diminishing-returns revenue curve under fixed
// environment factors: A * (1 - e^(-k*spend)).
type Curve struct {
	Asymptote float64
	Rate      float64
}

// NewCurve builds the curve of ch for the given content-lift and seasonality factors.
func NewCurve(ch config.Channel, contentLift, seasonality float64) Curve {
	k := constants.RateEpsilon
	if ch.SaturationSpend > 0 {
		k = saturationRate / ch.SaturationSpend
	}
	base := ch.BaseReturn
	if ch.AffectedByContent {
		base *= 1 + contentLift
	}
	return Curve{
		Asymptote: base / k * math.Max(constants.SeasonalityFloor, seasonality),
		Rate:      k,
	}
}

// RevenueAt is the projected revenue at spend.
func (c Curve) RevenueAt(spend float64) float64 {
	return c.Asymptote * (1 - math.Exp(-c.Rate*spend))
}

// Marginal is the revenue gained by raising spend by step.
func (c Curve) Marginal(spend, step float64) float64 {
	return c.RevenueAt(spend+step) - c.RevenueAt(spend)
}

// RevenueAt is the projected revenue of ch at spend under the given factors.
func RevenueAt(spend float64, ch config.Channel, contentLift, seasonality float64) float64 {
	return NewCurve(ch, contentLift, seasonality).RevenueAt(spend)
}

// Marginal is the finite-difference revenue gain of one step for ch.
func Marginal(spend, step float64, ch config.Channel, contentLift, seasonality float64) float64 {
	return NewCurve(ch, contentLift, seasonality).Marginal(spend, step)
}
