// Package optimizer distributes a marketing budget across channels by greedy
// marginal-value search over diminishing-returns curves.
package optimizer

import (
	"math"

	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/pkg/mathutil"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
)

// allocation is the spend committed so far, indexed like channels.
type allocation struct {
	channels []config.Channel
	spend    []float64
	caps     []float64
	content  int
}

func newAllocation(channels []config.Channel, req Request) *allocation {
	a := &allocation{
		channels: channels,
		spend:    make([]float64, len(channels)),
		caps:     make([]float64, len(channels)),
		content:  -1,
	}
	for i, ch := range channels {
		a.caps[i] = ch.SpendCap(req.TotalBudget)
		a.spend[i] = ch.SeedSpend(req.TotalBudget)
		if a.content < 0 && ch.ID == req.ContentChannel {
			a.content = i
		}
	}
	return a
}

func (a *allocation) total() float64 {
	var sum float64
	for _, s := range a.spend {
		sum += s
	}
	return sum
}

func (a *allocation) contentLift(per10k float64) float64 {
	if a.content < 0 {
		return 0
	}
	return ContentLiftFactor(a.spend[a.content], per10k)
}

// Optimize runs the greedy allocator over the enabled channels of req and
// aggregates the converged allocation. It has no side effects.
func Optimize(req Request) optimization.Result {
	channels := enabled(req.Channels)
	seasonality := SeasonalityFactor(req.Seasonality, req.ActiveMonths)
	if len(channels) == 0 {
		return optimization.Result{
			Rows:        []optimization.Row{},
			Termination: optimization.TerminationNoChannels,
			Seasonality: seasonality,
		}
	}

	a := newAllocation(channels, req)
	iterations, termination := a.run(req, seasonality)

	lift := a.contentLift(req.ContentLiftPer10k)
	result := aggregate(a, lift, seasonality)
	result.Iterations = iterations
	result.Termination = termination
	return result
}

func (a *allocation) run(req Request, seasonality float64) (int, optimization.Termination) {
	if !(req.Step > 0) {
		return 0, optimization.TerminationInvalidStep
	}

	spent := a.total()
	limit := req.maxIterations()
	iterations := 0
	for {
		if !(req.TotalBudget-spent >= req.Step) {
			return iterations, optimization.TerminationBudgetExhausted
		}
		if iterations >= limit {
			return iterations, optimization.TerminationIterationLimit
		}

		lift := a.contentLift(req.ContentLiftPer10k)
		best := -1
		bestValue := math.Inf(-1)
		for i, ch := range a.channels {
			current := a.spend[i]
			if current+req.Step > a.caps[i] {
				continue
			}
			value := objectiveValue(Marginal(current, req.Step, ch, lift, seasonality), ch, req.Objective, req.Step)
			if value > bestValue {
				best = i
				bestValue = value
			}
		}
		if best < 0 || !mathutil.IsFinitePositive(bestValue) {
			return iterations, optimization.TerminationNoPositiveGain
		}

		a.spend[best] += req.Step
		spent += req.Step
		iterations++
	}
}

// objectiveValue weights an incremental revenue gain by the run objective.
func objectiveValue(marginal float64, ch config.Channel, objective config.Objective, step float64) float64 {
	value := marginal * ch.Incrementality
	switch objective {
	case config.ObjectiveROAS:
		return value / math.Max(step, 1)
	case config.ObjectiveADR, config.ObjectiveOccupancy, config.ObjectiveAwareness:
		return value * ch.Weight(objective)
	default:
		return value
	}
}

func enabled(channels []config.Channel) []config.Channel {
	out := make([]config.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.IsEnabled() {
			out = append(out, ch)
		}
	}
	return out
}
