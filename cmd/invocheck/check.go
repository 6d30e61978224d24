package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/auditware/invocheck/internal/aggregate"
	"github.com/auditware/invocheck/internal/checker"
	"github.com/auditware/invocheck/internal/config"
	"github.com/auditware/invocheck/internal/docs"
	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/llm"
	"github.com/auditware/invocheck/internal/parser"
	"github.com/auditware/invocheck/internal/report"
	"github.com/auditware/invocheck/internal/rules"
	"github.com/auditware/invocheck/internal/runner"
	"github.com/auditware/invocheck/internal/terminal"
)

// checkOpts carries everything executeCheck needs; all ambient state
// (flags, env, config file) is resolved before the pipeline starts.
type checkOpts struct {
	DocsDir    string
	RuleIDs    []string
	Resolved   config.ResolvedConfig
	JSONOut    bool
	OutputPath string
	View       aggregate.View
	Verbose    bool
}

func buildCheckOpts(cmd *cobra.Command) (checkOpts, error) {
	logger := terminal.NewLogger()
	resolved, err := resolveConfig(cmd, func(w string) {
		logger.Logf(terminal.StyleWarning, "%s", w)
	})
	if err != nil {
		return checkOpts{}, err
	}
	return checkOpts{
		DocsDir:    docsDir,
		RuleIDs:    ruleIDs,
		Resolved:   resolved,
		JSONOut:    jsonOut,
		OutputPath: outputPath,
		View:       aggregate.View(viewName),
		Verbose:    verbose,
	}, nil
}

func executeCheck(ctx context.Context, opts checkOpts, logger *terminal.Logger) domain.ExitCode {
	store, err := rules.Load(opts.Resolved.RulesFile)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	selected := store.List()
	if len(opts.RuleIDs) > 0 {
		selected, err = store.Select(opts.RuleIDs)
		if err != nil {
			logger.Logf(terminal.StyleError, "%v", err)
			return domain.ExitError
		}
	}
	if len(selected) == 0 {
		logger.Log("No rules to apply", terminal.StyleError)
		return domain.ExitError
	}

	documents, err := docs.LoadDir(opts.DocsDir)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	apiKey, err := resolveAPIKey()
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	invoker, err := llm.NewOpenAIClient(apiKey, llm.Options{
		Model:   opts.Resolved.Model,
		BaseURL: opts.Resolved.BaseURL,
	})
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	chk, err := checker.New(invoker, parser.New(nil), checker.Config{
		Timeout: opts.Resolved.Timeout,
		Retries: opts.Resolved.Retries,
	})
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}

	units := runner.Units(documents, selected)
	logger.Logf(terminal.StyleInfo, "Checking %d files against %d rules %s(%d checks, %d workers, model=%s)%s",
		len(documents), len(selected),
		terminal.Color(terminal.Dim), len(units), opts.Resolved.Workers, invoker.Model(), terminal.Color(terminal.Reset))

	spinner := terminal.NewSpinner(len(units))
	dispatcher, err := runner.New(chk, runner.Config{
		MaxWorkers:   opts.Resolved.Workers,
		BatchTimeout: opts.Resolved.BatchTimeout,
		Progress: func(completed int, outcome domain.CheckOutcome) {
			spinner.Advance()
			if opts.Verbose {
				logger.Logf(terminal.StyleDim, "%s[%d/%d]%s %s / %s: %s",
					terminal.Color(terminal.Dim), completed, len(units), terminal.Color(terminal.Reset),
					outcome.FileName, outcome.RuleName, outcome.Result.Message)
			}
		},
	})
	if err != nil {
		var cfgErr *runner.ConfigError
		if errors.As(err, &cfgErr) {
			logger.Logf(terminal.StyleError, "Invalid configuration: %v", err)
		} else {
			logger.Logf(terminal.StyleError, "%v", err)
		}
		return domain.ExitError
	}

	spinnerCtx, spinnerCancel := context.WithCancel(context.Background())
	spinnerDone := make(chan struct{})
	go func() {
		spinner.Run(spinnerCtx)
		close(spinnerDone)
	}()

	start := time.Now()
	outcomes, runErr := dispatcher.Run(ctx, units)
	wallClock := time.Since(start)

	spinnerCancel()
	<-spinnerDone

	partial := len(outcomes) < len(units)
	if partial {
		logger.Logf(terminal.StyleWarning, "Batch ended early: %d/%d checks collected", len(outcomes), len(units))
	}
	if runErr != nil && len(outcomes) == 0 {
		logger.Logf(terminal.StyleError, "Batch failed: %v", runErr)
		return domain.ExitError
	}

	summary := aggregate.Summarize(outcomes)

	pred, err := aggregate.Predicate(opts.View)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}
	visible := aggregate.Filter(outcomes, pred)

	if opts.JSONOut || opts.OutputPath != "" {
		data, err := report.MarshalJSONReport(outcomes, summary, start, partial)
		if err != nil {
			logger.Logf(terminal.StyleError, "Failed to encode report: %v", err)
			return domain.ExitError
		}
		if opts.OutputPath != "" {
			if err := os.WriteFile(opts.OutputPath, data, 0o644); err != nil {
				logger.Logf(terminal.StyleError, "Failed to write report: %v", err)
				return domain.ExitError
			}
			logger.Logf(terminal.StyleSuccess, "Report written to %s", opts.OutputPath)
		}
		if opts.JSONOut {
			fmt.Println(string(data))
		}
	}
	if !opts.JSONOut {
		fmt.Println(report.Render(visible, summary, wallClock))
	}

	if summary.NeedsReview() {
		return domain.ExitNeedsReview
	}
	return domain.ExitClean
}
