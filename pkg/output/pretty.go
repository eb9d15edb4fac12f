package output

import (
	"io"

	"github.com/iwvelando/budget-optimizer/pkg/format"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result *optimization.Result, symbol string) {
	p := message.NewPrinter(language.English)

	_, _ = p.Fprintf(w, "%-32s | %14s | %14s | %6s\n", "Channel", "Spend", "Revenue", "ROAS")
	_, _ = p.Fprintf(w, "%-32s | %14s | %14s | %6s\n", "_______", "_____", "_______", "____")
	for _, row := range result.Rows {
		_, _ = p.Fprintf(w, "%-32s | %14s | %14s | %6s\n",
			row.Name,
			format.Currency(row.Spend, symbol),
			format.Currency(row.Revenue, symbol),
			format.Ratio(row.ROAS),
		)
	}
	_, _ = p.Fprintf(w, "\n%-32s | %14s | %14s | %6s\n",
		TotalLabel,
		format.Currency(result.Totals.Spend, symbol),
		format.Currency(result.Totals.Revenue, symbol),
		format.Ratio(result.Totals.BlendedROAS()),
	)
	_, _ = p.Fprintf(w, "\nStopped after %d steps: %s\n", result.Iterations, result.Termination)
}
