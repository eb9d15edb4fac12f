// Package format renders amounts for display.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/budget-optimizer/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns symbol followed by the amount rounded to a whole unit with
// thousands separators (e.g., "$1,234,567"). An empty symbol falls back to "$".
func Currency(amount float64, symbol string) string {
	if strings.TrimSpace(symbol) == "" {
		symbol = constants.DefaultCurrencySymbol
	}
	return symbol + Grouped(amount)
}

// Grouped returns the amount rounded to a whole unit with thousands separators.
func Grouped(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0"
	}
	return printer.Sprintf("%d", int64(math.Round(amount)))
}

// Ratio formats a ROAS style ratio with two decimals and an "x" suffix (e.g., "4.25x").
func Ratio(value float64) string {
	return fmt.Sprintf("%.2fx", value)
}

// Percent formats a fraction as a whole percentage (e.g., 0.05 -> "5%").
func Percent(fraction float64) string {
	return fmt.Sprintf("%.0f%%", fraction*100)
}
