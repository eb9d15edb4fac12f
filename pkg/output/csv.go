// Package output provides utilities for formatting and exporting allocation
// results.
package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/budget-optimizer/pkg/mathutil"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
)

// CSVHeader is the first record of every export.
var CSVHeader = []string{"Channel", "Spend", "Revenue", "ROAS"}

// TotalLabel marks the totals record of an export.
const TotalLabel = "TOTAL"

// Allocation is an allocation read back from a CSV export.
type Allocation struct {
	Rows        []optimization.Row `json:"rows"`
	Totals      optimization.Totals `json:"totals"`
	BlendedROAS float64             `json:"blendedRoas"`
}

// WriteCSV writes result as a header, one record per channel, a blank line and
// a TOTAL record. Amounts are rounded to whole units and ratios to two decimals.
func WriteCSV(w io.Writer, result *optimization.Result) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, row := range result.Rows {
		record := []string{row.Name, wholeUnits(row.Spend), wholeUnits(row.Revenue), ratio(row.ROAS)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{""}); err != nil {
		return err
	}
	total := []string{
		TotalLabel,
		wholeUnits(result.Totals.Spend),
		wholeUnits(result.Totals.Revenue),
		ratio(result.Totals.BlendedROAS()),
	}
	if err := cw.Write(total); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// CSVString renders result as CSV text.
func CSVString(result *optimization.Result) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseCSV reads an export produced by WriteCSV.
func ParseCSV(r io.Reader) (*Allocation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV input")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, name := range CSVHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, fmt.Errorf("unexpected CSV column %d: got %q, expected %q", i+1, header[i], name)
		}
	}

	alloc := &Allocation{Rows: []optimization.Row{}}
	sawTotal := false
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if sawTotal {
			return nil, fmt.Errorf("unexpected record after %s", TotalLabel)
		}

		values, err := parseAmounts(record)
		if err != nil {
			return nil, err
		}
		if record[0] == TotalLabel {
			alloc.Totals = optimization.Totals{Spend: values[0], Revenue: values[1]}
			alloc.BlendedROAS = values[2]
			sawTotal = true
			continue
		}
		alloc.Rows = append(alloc.Rows, optimization.Row{
			Name:    record[0],
			Spend:   values[0],
			Revenue: values[1],
			ROAS:    values[2],
		})
	}

	if !sawTotal {
		return nil, fmt.Errorf("missing %s record", TotalLabel)
	}
	return alloc, nil
}

func parseAmounts(record []string) ([3]float64, error) {
	var values [3]float64
	for i := range values {
		field := strings.TrimSpace(record[i+1])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return values, fmt.Errorf("invalid %s value %q for %s: %w", strings.ToLower(CSVHeader[i+1]), field, record[0], err)
		}
		values[i] = v
	}
	return values, nil
}

func wholeUnits(v float64) string {
	return strconv.FormatFloat(mathutil.RoundWhole(v), 'f', 0, 64)
}

func ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
