package optimizer

import (
	"fmt"
	"time"

	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/internal/metrics"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
	"github.com/iwvelando/budget-optimizer/pkg/output"
	"go.uber.org/zap"
)

// Runner validates a plan and runs the optimizer over it with logging and
// metrics around the pure Optimize call.
type Runner struct {
	logger   *zap.Logger
	conf     *config.Configuration
	request  Request
	warnings []string
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	req, err := NewRequest(conf)
	if err != nil {
		return nil, err
	}

	return &Runner{
		logger:   logger,
		conf:     conf,
		request:  req,
		warnings: conf.ValidateConfiguration(),
	}, nil
}

// Request returns the run request snapshotted from the plan.
func (r *Runner) Request() Request {
	return r.request
}

// Warnings returns the non-fatal configuration warnings found for the plan.
func (r *Runner) Warnings() []string {
	return r.warnings
}

// Run executes the optimizer.
func (r *Runner) Run() *optimization.Result {
	for _, warning := range r.warnings {
		r.logger.Debug("configuration warning",
			zap.String("op", "optimizer.Run"),
			zap.String("warning", warning),
		)
	}

	start := time.Now()
	result := Optimize(r.request)
	elapsed := time.Since(start)

	metrics.ObserveRun(string(r.request.Objective), string(result.Termination), result.Iterations, result.Totals.Spend, elapsed)

	r.logger.Info("optimizer allocated budget",
		zap.String("op", "optimizer.Run"),
		zap.String("objective", string(r.request.Objective)),
		zap.Float64("totalBudget", r.request.TotalBudget),
		zap.Float64("step", r.request.Step),
		zap.Int("channels", len(result.Rows)),
		zap.Int("iterations", result.Iterations),
		zap.String("termination", string(result.Termination)),
		zap.Float64("spend", result.Totals.Spend),
		zap.Float64("revenue", result.Totals.Revenue),
		zap.Float64("contentLift", result.ContentLift),
		zap.Float64("seasonality", result.Seasonality),
		zap.Duration("duration", elapsed),
	)

	return &result
}

// Summary drafts the plan rationale for result.
func (r *Runner) Summary(result *optimization.Result) string {
	return output.Summary(output.SummaryInput{
		Property:          r.conf.Property,
		ObjectiveLabel:    r.request.Objective.Label(),
		ActiveMonths:      config.ActiveMonthNames(r.request.ActiveMonths),
		MonthNames:        config.MonthNames[:],
		Seasonality:       r.request.Seasonality[:],
		ContentLiftPer10k: r.request.ContentLiftPer10k,
		Step:              r.request.Step,
		Currency:          r.conf.Currency,
		Result:            result,
	})
}
