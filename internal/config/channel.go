package config

import (
	"math"
	"strings"

	"github.com/iwvelando/budget-optimizer/pkg/constants"
)

// Objective names the quantity the allocator maximizes.
type Objective string

const (
	ObjectiveAuto      Objective = "auto"
	ObjectiveROAS      Objective = "roas"
	ObjectiveRevenue   Objective = "revenue"
	ObjectiveADR       Objective = "adr"
	ObjectiveOccupancy Objective = "occupancy"
	ObjectiveAwareness Objective = "awareness"
)

// Objectives lists every supported objective in display order.
var Objectives = []Objective{
	ObjectiveAuto,
	ObjectiveROAS,
	ObjectiveRevenue,
	ObjectiveADR,
	ObjectiveOccupancy,
	ObjectiveAwareness,
}

// CanonicalObjective returns the canonical identifier for an objective.
// Unknown values are lowercased and returned as is so validation can reject them.
func CanonicalObjective(value string) Objective {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "":
		return ObjectiveAuto
	case "occ":
		return ObjectiveOccupancy
	case "return_on_ad_spend", "return-on-ad-spend":
		return ObjectiveROAS
	default:
		return Objective(trimmed)
	}
}

// Label is the human-readable description used in plan summaries.
func (o Objective) Label() string {
	switch o {
	case ObjectiveROAS:
		return "marginal efficiency (ROAS)"
	case ObjectiveRevenue:
		return "total incremental revenue"
	case ObjectiveADR:
		return "ADR growth"
	case ObjectiveOccupancy:
		return "occupancy lift"
	case ObjectiveAwareness:
		return "upper-funnel awareness"
	default:
		return "overall performance"
	}
}

// Channel holds the calibration and constraints of one advertising channel.
//
// A nil MaxSpend leaves the absolute cap unset while an explicit zero blocks
// all spend. A MaxPercent of zero means the percent cap is not set.
type Channel struct {
	ID                string   `yaml:"id" json:"id" mapstructure:"id" validate:"required"`
	Name              string   `yaml:"name,omitempty" json:"name,omitempty" mapstructure:"name"`
	BaseReturn        float64  `yaml:"baseReturn" json:"baseReturn" mapstructure:"baseReturn" validate:"gte=0"`
	SaturationSpend   float64  `yaml:"saturationSpend" json:"saturationSpend" mapstructure:"saturationSpend"`
	MinSpend          float64  `yaml:"minSpend,omitempty" json:"minSpend,omitempty" mapstructure:"minSpend" validate:"gte=0"`
	MaxSpend          *float64 `yaml:"maxSpend,omitempty" json:"maxSpend,omitempty" mapstructure:"maxSpend" validate:"omitempty,gte=0"`
	MinPercent        float64  `yaml:"minPercent,omitempty" json:"minPercent,omitempty" mapstructure:"minPercent" validate:"gte=0,lte=1"`
	MaxPercent        float64  `yaml:"maxPercent,omitempty" json:"maxPercent,omitempty" mapstructure:"maxPercent" validate:"gte=0,lte=1"`
	Incrementality    float64  `yaml:"incrementality" json:"incrementality" mapstructure:"incrementality" validate:"gte=0,lte=1"`
	AffectedByContent bool     `yaml:"affectedByContent,omitempty" json:"affectedByContent,omitempty" mapstructure:"affectedByContent"`
	ADRUplift         float64  `yaml:"adrUplift,omitempty" json:"adrUplift,omitempty" mapstructure:"adrUplift" validate:"gte=0"`
	OccUplift         float64  `yaml:"occUplift,omitempty" json:"occUplift,omitempty" mapstructure:"occUplift" validate:"gte=0"`
	AwarenessScore    float64  `yaml:"awarenessScore,omitempty" json:"awarenessScore,omitempty" mapstructure:"awarenessScore" validate:"gte=0"`
	Enabled           *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty" mapstructure:"enabled"`
}

// Normalize trims identifiers and fills unset display and weight values.
func (ch *Channel) Normalize() {
	if ch == nil {
		return
	}
	ch.ID = strings.TrimSpace(ch.ID)
	ch.Name = strings.TrimSpace(ch.Name)
	if ch.Name == "" {
		ch.Name = ch.ID
	}
	if ch.ADRUplift == 0 {
		ch.ADRUplift = constants.DefaultWeight
	}
	if ch.OccUplift == 0 {
		ch.OccUplift = constants.DefaultWeight
	}
	if ch.AwarenessScore == 0 {
		ch.AwarenessScore = constants.DefaultWeight
	}
}

// IsEnabled reports whether the channel takes part in allocation. Channels
// without an explicit setting are enabled.
func (ch Channel) IsEnabled() bool {
	return ch.Enabled == nil || *ch.Enabled
}

// SetEnabled records an explicit enabled flag.
func (ch *Channel) SetEnabled(enabled bool) {
	ch.Enabled = &enabled
}

// SpendLimit returns an absolute spend cap for Channel.MaxSpend.
func SpendLimit(amount float64) *float64 {
	return &amount
}

// SpendCap is the most the channel may receive out of totalBudget: the lower
// of MaxSpend and MaxPercent of the budget. A percent cap that works out to
// zero or less, from a zero MaxPercent or a zero budget, is ignored.
func (ch Channel) SpendCap(totalBudget float64) float64 {
	limit := math.Inf(1)
	if ch.MaxSpend != nil {
		limit = math.Max(0, *ch.MaxSpend)
	}
	if share := ch.MaxPercent * totalBudget; share > 0 {
		limit = math.Min(limit, share)
	}
	return limit
}

// MinimumSpend is the floor implied by MinSpend and MinPercent of the budget.
func (ch Channel) MinimumSpend(totalBudget float64) float64 {
	return math.Max(0, math.Max(ch.MinSpend, ch.MinPercent*totalBudget))
}

// SeedSpend is the spend committed before the greedy search starts: the
// minimum, held down to the cap when the two conflict.
func (ch Channel) SeedSpend(totalBudget float64) float64 {
	return math.Min(ch.MinimumSpend(totalBudget), ch.SpendCap(totalBudget))
}

// Weight returns the objective multiplier for this channel, defaulting unset
// weights to one.
func (ch Channel) Weight(objective Objective) float64 {
	var w float64
	switch objective {
	case ObjectiveADR:
		w = ch.ADRUplift
	case ObjectiveOccupancy:
		w = ch.OccUplift
	case ObjectiveAwareness:
		w = ch.AwarenessScore
	default:
		return 1
	}
	if w == 0 {
		return constants.DefaultWeight
	}
	return w
}
