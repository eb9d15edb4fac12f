package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/budget-optimizer/pkg/format"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
)

// SummaryInput carries the plan details quoted in a plan summary.
type SummaryInput struct {
	Property          string
	ObjectiveLabel    string
	ActiveMonths      []string
	MonthNames        []string
	Seasonality       []float64
	ContentLiftPer10k float64
	Step              float64
	Currency          string
	Result            *optimization.Result
}

// TopChannels returns the names of the n channels with the largest spend.
// Equal spends keep their result order.
func TopChannels(result *optimization.Result, n int) []string {
	if result == nil {
		return nil
	}
	rows := make([]optimization.Row, len(result.Rows))
	copy(rows, result.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Spend > rows[j].Spend
	})
	if n > len(rows) {
		n = len(rows)
	}
	names := make([]string, 0, n)
	for _, row := range rows[:n] {
		names = append(names, row.Name)
	}
	return names
}

// Summary drafts the rationale text that accompanies an allocation.
func Summary(in SummaryInput) string {
	property := strings.TrimSpace(in.Property)
	if property == "" {
		property = "[website not provided]"
	}
	months := "none"
	if len(in.ActiveMonths) > 0 {
		months = strings.Join(in.ActiveMonths, ", ")
	}

	seasonality := make([]string, 0, len(in.Seasonality))
	for i, v := range in.Seasonality {
		label := fmt.Sprintf("M%d", i+1)
		if i < len(in.MonthNames) {
			label = in.MonthNames[i]
		}
		seasonality = append(seasonality, fmt.Sprintf("%s×%.2f", label, v))
	}

	top := strings.Join(TopChannels(in.Result, 3), ", ")
	if top == "" {
		top = "no channels"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Property: %s\n\n", property)
	fmt.Fprintf(&b, "Budget objective: %s. Selected months: %s.\n\n", in.ObjectiveLabel, months)
	fmt.Fprintf(&b, "Seasonality assumptions: %s (1.00 = neutral).\n\n", strings.Join(seasonality, ", "))
	fmt.Fprintf(&b, "Recommended allocation focuses on %s. The mix weighs the chosen objective against "+
		"incrementality and channel saturation. Content investment lifts content-affected channels by %s per %s, "+
		"and the model reflects that lift.\n\n",
		top, format.Percent(in.ContentLiftPer10k), format.Currency(10000, in.Currency))
	fmt.Fprintf(&b, "Method: each channel follows a diminishing-returns curve calibrated by its base return "+
		"and the spend at which it reaches 95%% saturation. Budget is committed in %s steps to the channel "+
		"with the highest objective-weighted marginal value while minimums, percentage caps and hard spend "+
		"limits hold.\n\n", format.Currency(in.Step, in.Currency))
	b.WriteString("Next steps: validate base returns, incrementality and saturation against booking and " +
		"call center data; adjust seasonality; re-run; export the CSV for approval.")

	return b.String()
}
