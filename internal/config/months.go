package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/budget-optimizer/pkg/constants"
)

// MonthNames are the abbreviated calendar labels in seasonality order.
var MonthNames = [constants.MonthsPerYear]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var monthFullNames = [constants.MonthsPerYear]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthIndex parses a month given as an abbreviation, a full name or a number
// from 1 to 12 and returns its zero-based index.
func MonthIndex(value string) (int, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return 0, fmt.Errorf("month value cannot be empty")
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 1 || n > constants.MonthsPerYear {
			return 0, fmt.Errorf("month number %d out of range", n)
		}
		return n - 1, nil
	}
	for i, name := range MonthNames {
		if trimmed == strings.ToLower(name) || trimmed == monthFullNames[i] {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", value)
}

// MonthMask converts a list of month names into a calendar mask. An empty
// list activates every month.
func MonthMask(months []string) ([constants.MonthsPerYear]bool, error) {
	var mask [constants.MonthsPerYear]bool
	if len(months) == 0 {
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	}
	for _, m := range months {
		idx, err := MonthIndex(m)
		if err != nil {
			return mask, err
		}
		mask[idx] = true
	}
	return mask, nil
}

// ActiveMonthNames lists the labels of the months set in mask.
func ActiveMonthNames(mask [constants.MonthsPerYear]bool) []string {
	var names []string
	for i, active := range mask {
		if active {
			names = append(names, MonthNames[i])
		}
	}
	return names
}
