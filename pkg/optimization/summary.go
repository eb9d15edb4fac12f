// Package optimization provides shared data structures for optimization results.
package optimization

import "math"

// Termination records why the allocation loop stopped.
type Termination string

const (
	// TerminationBudgetExhausted means less than one step of budget remained.
	TerminationBudgetExhausted Termination = "budget_exhausted"
	// TerminationNoPositiveGain means no eligible channel had a positive marginal value.
	TerminationNoPositiveGain Termination = "no_positive_gain"
	// TerminationIterationLimit means the safety bound on iterations fired.
	TerminationIterationLimit Termination = "iteration_limit"
	// TerminationNoChannels means no channel was enabled.
	TerminationNoChannels Termination = "no_channels"
	// TerminationInvalidStep means the step was not a positive number.
	TerminationInvalidStep Termination = "invalid_step"
)

// Row is the recommended spend of one channel and its projection.
type Row struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Spend   float64 `json:"spend"`
	Revenue float64 `json:"revenue"`
	ROAS    float64 `json:"roas"`
}

// Totals sums spend and attributed revenue across rows.
type Totals struct {
	Spend   float64 `json:"spend"`
	Revenue float64 `json:"revenue"`
}

// BlendedROAS is total revenue over total spend, with spend floored at one.
func (t Totals) BlendedROAS() float64 {
	return t.Revenue / math.Max(1, t.Spend)
}

// Result is the outcome of one optimizer run.
type Result struct {
	Rows        []Row       `json:"rows"`
	Totals      Totals      `json:"totals"`
	Iterations  int         `json:"iterations"`
	Termination Termination `json:"termination"`
	ContentLift float64     `json:"contentLift"`
	Seasonality float64     `json:"seasonality"`
}

// Row returns the row for id.
func (r Result) Row(id string) (Row, bool) {
	for _, row := range r.Rows {
		if row.ID == id {
			return row, true
		}
	}
	return Row{}, false
}
