package optimizer

import (
	"github.com/iwvelando/budget-optimizer/pkg/mathutil"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
)

func aggregate(a *allocation, lift, seasonality float64) optimization.Result {
	rows := make([]optimization.Row, 0, len(a.channels))
	var totals optimization.Totals
	for i, ch := range a.channels {
		spend := a.spend[i]
		revenue := RevenueAt(spend, ch, lift, seasonality) * ch.Incrementality
		name := ch.Name
		if name == "" {
			name = ch.ID
		}
		rows = append(rows, optimization.Row{
			ID:      ch.ID,
			Name:    name,
			Spend:   spend,
			Revenue: revenue,
			ROAS:    mathutil.Ratio(revenue, spend),
		})
		totals.Spend += spend
		totals.Revenue += revenue
	}
	return optimization.Result{
		Rows:        rows,
		Totals:      totals,
		ContentLift: lift,
		Seasonality: seasonality,
	}
}
