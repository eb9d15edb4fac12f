package optimizer

import (
	"strings"
	"testing"

	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
	"go.uber.org/zap"
)

func TestNewRunnerRejectsNilConfiguration(t *testing.T) {
	if _, err := NewRunner(zap.NewNop(), nil); err == nil {
		t.Fatal("expected error for nil configuration")
	}
}

func TestNewRunnerRejectsInvalidConfiguration(t *testing.T) {
	conf := &config.Configuration{
		TotalBudget: 1000,
		Objective:   "profit",
		Channels:    []config.Channel{{ID: "search", BaseReturn: 2, SaturationSpend: 1000, Incrementality: 1}},
	}
	_, err := NewRunner(zap.NewNop(), conf)
	if err == nil {
		t.Fatal("expected error for unknown objective")
	}
	if !strings.Contains(err.Error(), "objective") {
		t.Fatalf("expected objective in error, got %v", err)
	}
}

func TestRunnerRun(t *testing.T) {
	conf := &config.Configuration{
		TotalBudget:       50000,
		Step:              1000,
		Objective:         config.ObjectiveRevenue,
		ContentLiftPer10k: 0.05,
		ActiveMonths:      []string{"Jun", "Jul", "Aug"},
		Seasonality:       []float64{1, 1, 1, 1, 1, 1.2, 1.4, 1.6, 1, 1, 1, 1},
		Channels:          hotelChannels(),
	}

	runner, err := NewRunner(nil, conf)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	result := runner.Run()
	if result == nil {
		t.Fatal("expected result")
	}
	if len(result.Rows) != len(conf.Channels) {
		t.Fatalf("expected %d rows, got %d", len(conf.Channels), len(result.Rows))
	}
	if result.Termination != optimization.TerminationBudgetExhausted {
		t.Fatalf("expected budget exhausted, got %s", result.Termination)
	}
	if result.Seasonality < 1.39 || result.Seasonality > 1.41 {
		t.Fatalf("expected summer seasonality 1.4, got %v", result.Seasonality)
	}
	if runner.Request().TotalBudget != 50000 {
		t.Fatalf("request did not snapshot budget")
	}
}

func TestNewRequestCopiesChannels(t *testing.T) {
	conf := &config.Configuration{
		TotalBudget: 1000,
		Channels:    []config.Channel{{ID: "search", BaseReturn: 2}},
	}
	conf.Normalize()

	req, err := NewRequest(conf)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	conf.Channels[0].BaseReturn = 99
	if req.Channels[0].BaseReturn != 2 {
		t.Fatalf("request shares channel storage with configuration")
	}
	for i, active := range req.ActiveMonths {
		if !active {
			t.Fatalf("month %d inactive; expected all months active by default", i)
		}
	}
}

func TestNewRequestRejectsUnknownMonth(t *testing.T) {
	conf := &config.Configuration{ActiveMonths: []string{"Smarch"}}
	if _, err := NewRequest(conf); err == nil {
		t.Fatal("expected error for unknown month")
	}
}

func TestRunnerSummary(t *testing.T) {
	conf := &config.Configuration{
		TotalBudget:  50000,
		Objective:    config.ObjectiveADR,
		Property:     "https://example-resort.com",
		ActiveMonths: []string{"Dec", "Jan"},
		Channels:     hotelChannels(),
	}
	runner, err := NewRunner(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	summary := runner.Summary(runner.Run())
	for _, want := range []string{
		"https://example-resort.com",
		"ADR growth",
		"Selected months: Jan, Dec.",
		"in $1,000 steps",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("expected summary to contain %q\n%s", want, summary)
		}
	}
}
