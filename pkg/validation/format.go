// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateObjective parses an objective override and returns its canonical form.
func ValidateObjective(value string) (config.Objective, error) {
	objective := config.CanonicalObjective(value)
	for _, known := range config.Objectives {
		if objective == known {
			return objective, nil
		}
	}
	names := make([]string, len(config.Objectives))
	for i, o := range config.Objectives {
		names[i] = string(o)
	}
	return "", fmt.Errorf("expected objective of %s, got %s", strings.Join(names, ", "), value)
}

// ValidateBudget parses a budget override. Thousands separators are accepted.
func ValidateBudget(value string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	budget, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid budget %q: %w", value, err)
	}
	if budget < 0 {
		return 0, fmt.Errorf("budget cannot be negative, got %s", value)
	}
	return budget, nil
}
