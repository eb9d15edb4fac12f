package output

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
)

// Report is the JSON document written by the json output format.
type Report struct {
	*optimization.Result
	BlendedROAS float64  `json:"blendedRoas"`
	Warnings    []string `json:"warnings,omitempty"`
	Summary     string   `json:"summary,omitempty"`
}

// WriteJSON writes an indented JSON report.
func WriteJSON(w io.Writer, report Report) error {
	if report.Result != nil {
		report.BlendedROAS = report.Totals.BlendedROAS()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
