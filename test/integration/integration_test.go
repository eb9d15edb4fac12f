package integration

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/internal/optimizer"
	"github.com/iwvelando/budget-optimizer/pkg/mathutil"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
	"github.com/iwvelando/budget-optimizer/pkg/output"
	"github.com/iwvelando/budget-optimizer/pkg/testutil"
	"go.uber.org/zap"
)

const testPlan = "../test_config.yaml"

func runPlan(t *testing.T, conf *config.Configuration) (*optimizer.Runner, *optimization.Result) {
	t.Helper()
	runner, err := optimizer.NewRunner(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return runner, runner.Run()
}

// TestPlanEndToEnd runs the sample plan exactly as the command line tool does.
func TestPlanEndToEnd(t *testing.T) {
	conf, err := config.LoadConfiguration(testPlan)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	runner, result := runPlan(t, conf)

	if len(result.Rows) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(result.Rows))
	}
	if result.Termination != optimization.TerminationBudgetExhausted {
		t.Fatalf("expected budget exhausted, got %s", result.Termination)
	}
	if !testutil.AlmostEqual(result.Totals.Spend, 249500, 1e-6) {
		t.Fatalf("expected 249500 spent, got %v", result.Totals.Spend)
	}
	if !testutil.AlmostEqual(testutil.SumSpend(result.Rows), result.Totals.Spend, 1e-6) {
		t.Fatal("row spends do not add up to the total")
	}

	for _, ch := range conf.Channels {
		row := testutil.FindRow(result, ch.ID)
		if row == nil {
			t.Fatalf("missing row for %s", ch.ID)
		}
		if row.Spend > ch.SpendCap(conf.TotalBudget)+1e-6 {
			t.Errorf("%s spend %v exceeds cap %v", ch.ID, row.Spend, ch.SpendCap(conf.TotalBudget))
		}
		if row.Spend < ch.SeedSpend(conf.TotalBudget)-1e-6 {
			t.Errorf("%s spend %v below minimum %v", ch.ID, row.Spend, ch.SeedSpend(conf.TotalBudget))
		}
	}

	if len(runner.Warnings()) != 0 {
		t.Errorf("expected no warnings for the sample plan, got %v", runner.Warnings())
	}
}

// TestCSVExportRoundTrip checks that an export reads back to the same allocation.
func TestCSVExportRoundTrip(t *testing.T) {
	conf, err := config.LoadConfiguration(testPlan)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	_, result := runPlan(t, conf)

	var buf bytes.Buffer
	if err := output.WriteCSV(&buf, result); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	alloc, err := output.ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	if len(alloc.Rows) != len(result.Rows) {
		t.Fatalf("expected %d rows, got %d", len(result.Rows), len(alloc.Rows))
	}
	for i, row := range alloc.Rows {
		want := result.Rows[i]
		if row.Name != want.Name {
			t.Errorf("row %d name %q, expected %q", i, row.Name, want.Name)
		}
		if !mathutil.WithinCurrency(row.Spend, want.Spend) || !mathutil.WithinCurrency(row.Revenue, want.Revenue) {
			t.Errorf("row %d amounts %+v, expected %+v", i, row, want)
		}
		if !mathutil.WithinRatio(row.ROAS, want.ROAS) {
			t.Errorf("row %d ROAS %v, expected %v", i, row.ROAS, want.ROAS)
		}
	}
	if !mathutil.WithinCurrency(alloc.Totals.Spend, result.Totals.Spend) {
		t.Errorf("total spend %v, expected %v", alloc.Totals.Spend, result.Totals.Spend)
	}
}

// TestPrettyOutputFormat checks the human-readable table of the sample plan.
func TestPrettyOutputFormat(t *testing.T) {
	conf, err := config.LoadConfiguration(testPlan)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	runner, result := runPlan(t, conf)

	var buf bytes.Buffer
	output.PrettyFormat(&buf, result, conf.Currency)
	out := buf.String()
	for _, want := range []string{"Channel", "Metasearch", "TOTAL", "$249,500", "budget_exhausted"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected pretty output to contain %q\n%s", want, out)
		}
	}

	summary := runner.Summary(result)
	if !strings.Contains(summary, "Selected months: Jan, Feb, Mar, Apr, May, Jun, Jul, Aug, Sep, Oct, Nov, Dec.") {
		t.Errorf("expected every month to be selected\n%s", summary)
	}
}

// TestObjectivesChangeAllocation checks that weighting objectives move spend.
func TestObjectivesChangeAllocation(t *testing.T) {
	results := make(map[config.Objective]*optimization.Result)
	for _, objective := range config.Objectives {
		conf, err := config.LoadConfiguration(testPlan)
		if err != nil {
			t.Fatalf("LoadConfiguration() error = %v", err)
		}
		conf.Objective = objective
		_, result := runPlan(t, conf)
		if result.Termination != optimization.TerminationBudgetExhausted {
			t.Errorf("%s: expected budget exhausted, got %s", objective, result.Termination)
		}
		results[objective] = result
	}

	if results[config.ObjectiveAuto].Totals != results[config.ObjectiveRevenue].Totals {
		t.Error("auto should allocate exactly like revenue")
	}

	differs := false
	for i, row := range results[config.ObjectiveAwareness].Rows {
		if row.Spend != results[config.ObjectiveRevenue].Rows[i].Spend {
			differs = true
		}
	}
	if !differs {
		t.Error("awareness weights should change the allocation")
	}
}

// TestEnvironmentOverride checks that BUDGET_ variables override the plan file.
func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("BUDGET_TOTALBUDGET", "100000")

	conf, err := config.LoadConfiguration(testPlan)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.TotalBudget != 100000 {
		t.Fatalf("expected budget override, got %v", conf.TotalBudget)
	}

	_, result := runPlan(t, conf)
	if result.Totals.Spend > 100000 {
		t.Fatalf("spend %v exceeds overridden budget", result.Totals.Spend)
	}
	if row := testutil.FindRow(result, "metasearch"); row == nil || row.Spend < 5000 {
		t.Fatalf("expected metasearch seeded at 5%% of the new budget, got %+v", row)
	}
}
