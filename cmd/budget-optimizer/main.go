package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/budget-optimizer/internal/catalog"
	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/internal/logging"
	"github.com/iwvelando/budget-optimizer/internal/optimizer"
	"github.com/iwvelando/budget-optimizer/pkg/constants"
	"github.com/iwvelando/budget-optimizer/pkg/output"
	"github.com/iwvelando/budget-optimizer/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to plan file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	objectiveFlag := flag.String("objective", "", "objective override: auto, roas, revenue, adr, occupancy, awareness")
	budgetFlag := flag.String("budget", "", "total budget override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	summaryFlag := flag.Bool("summary", false, "print the plan rationale after the allocation")
	initPlan := flag.Bool("init", false, "write a starter plan with the default channel catalog to stdout and exit")
	flag.Parse()

	// Environment overrides such as BUDGET_TOTALBUDGET may come from a local .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"warn\", \"msg\": \"failed to load .env\", \"error\": \"%v\"}\n", err)
	}

	if *initPlan {
		if err := catalog.WritePlan(os.Stdout, catalog.StarterPlan()); err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to write starter plan\", \"error\": \"%v\"}\n", err)
			os.Exit(1)
		}
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *objectiveFlag != "" {
		objective, err := validation.ValidateObjective(*objectiveFlag)
		if err != nil {
			logger.Fatal(err.Error(), zap.String("op", "main"))
		}
		conf.Objective = objective
	}
	if *budgetFlag != "" {
		budget, err := validation.ValidateBudget(*budgetFlag)
		if err != nil {
			logger.Fatal(err.Error(), zap.String("op", "main"))
		}
		conf.TotalBudget = budget
	}

	runner, err := optimizer.NewRunner(logger, conf)
	if err != nil {
		logger.Fatal("invalid plan",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	for _, warning := range runner.Warnings() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	result := runner.Run()

	withSummary := *summaryFlag || conf.Output.Summary
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, result, conf.Currency)
		if withSummary {
			fmt.Printf("\n%s\n", runner.Summary(result))
		}
	case constants.OutputFormatCSV:
		if err := output.WriteCSV(os.Stdout, result); err != nil {
			logger.Fatal("failed to write CSV", zap.String("op", "main"), zap.Error(err))
		}
		// Keep stdout a clean CSV document.
		if withSummary {
			fmt.Fprintf(os.Stderr, "%s\n", runner.Summary(result))
		}
	case constants.OutputFormatJSON:
		report := output.Report{Result: result, Warnings: runner.Warnings()}
		if withSummary {
			report.Summary = runner.Summary(result)
		}
		if err := output.WriteJSON(os.Stdout, report); err != nil {
			logger.Fatal("failed to write JSON", zap.String("op", "main"), zap.Error(err))
		}
	}
}
