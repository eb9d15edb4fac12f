package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate returns an error when the plan cannot be optimized as configured.
func (c *Configuration) Validate() error {
	if c == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	c.Normalize()

	if err := validate.Struct(c); err != nil {
		return describeValidationError(err)
	}

	if _, err := c.ActiveMonthMask(); err != nil {
		return fmt.Errorf("activeMonths: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Channels))
	for _, ch := range c.Channels {
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("channel id %q is used more than once", ch.ID)
		}
		seen[ch.ID] = struct{}{}

		if ch.MaxSpend != nil && ch.MinSpend > *ch.MaxSpend {
			return fmt.Errorf("channel %s: minSpend %.2f exceeds maxSpend %.2f", ch.ID, ch.MinSpend, *ch.MaxSpend)
		}
		if ch.MaxPercent > 0 && ch.MinPercent > ch.MaxPercent {
			return fmt.Errorf("channel %s: minPercent %.2f exceeds maxPercent %.2f", ch.ID, ch.MinPercent, ch.MaxPercent)
		}
	}

	return nil
}

// ValidateConfiguration performs non-fatal checks of the plan and returns warnings.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	enabled := c.EnabledChannels()
	if len(enabled) == 0 {
		warnings = append(warnings, "no enabled channels; the allocation will be empty")
	}

	var minPercent, seeded float64
	contentEnabled := false
	for _, ch := range enabled {
		minPercent += ch.MinPercent
		seeded += ch.SeedSpend(c.TotalBudget)
		if ch.ID == c.ContentChannel {
			contentEnabled = true
		}
		if ch.MinimumSpend(c.TotalBudget) > ch.SpendCap(c.TotalBudget) {
			warnings = append(warnings, fmt.Sprintf("channel %s minimum spend exceeds its cap; the minimum is reduced to the cap", ch.ID))
		}
		if ch.SaturationSpend <= 0 {
			warnings = append(warnings, fmt.Sprintf("channel %s has no positive saturationSpend; its curve saturates almost immediately", ch.ID))
		}
	}
	if minPercent > 1 {
		warnings = append(warnings, fmt.Sprintf("channel minimum percentages sum to %.0f%% of the budget", minPercent*100))
	}
	if seeded > c.TotalBudget {
		warnings = append(warnings, fmt.Sprintf("channel minimums total %.2f, more than the budget of %.2f", seeded, c.TotalBudget))
	}
	if c.ContentLiftPer10k > 0 && !contentEnabled {
		warnings = append(warnings, fmt.Sprintf("content lift is configured but channel %q is not enabled", c.ContentChannel))
	}

	return warnings
}

func describeValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Configuration.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("%s must have %s entries", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
