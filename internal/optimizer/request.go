package optimizer

import (
	"fmt"

	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/pkg/constants"
)

// Request is the immutable input of a single optimizer run.
type Request struct {
	Channels          []config.Channel
	TotalBudget       float64
	Step              float64
	Objective         config.Objective
	ContentLiftPer10k float64
	ContentChannel    string
	Seasonality       [constants.MonthsPerYear]float64
	ActiveMonths      [constants.MonthsPerYear]bool

	// MaxIterations overrides the safety bound when positive.
	MaxIterations int
}

// NewRequest snapshots a plan into a run request. The channel slice is
// copied so later edits to conf do not reach the run.
func NewRequest(conf *config.Configuration) (Request, error) {
	if conf == nil {
		return Request{}, fmt.Errorf("configuration cannot be nil")
	}
	mask, err := conf.ActiveMonthMask()
	if err != nil {
		return Request{}, fmt.Errorf("activeMonths: %w", err)
	}
	channels := make([]config.Channel, len(conf.Channels))
	copy(channels, conf.Channels)

	return Request{
		Channels:          channels,
		TotalBudget:       conf.TotalBudget,
		Step:              conf.Step,
		Objective:         conf.Objective,
		ContentLiftPer10k: conf.ContentLiftPer10k,
		ContentChannel:    conf.ContentChannel,
		Seasonality:       conf.SeasonalityVector(),
		ActiveMonths:      mask,
	}, nil
}

func (req Request) maxIterations() int {
	if req.MaxIterations > 0 {
		return req.MaxIterations
	}
	return constants.MaxIterations
}
