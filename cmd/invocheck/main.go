// Package main provides the CLI entry point for invocheck.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/auditware/invocheck/internal/aggregate"
	"github.com/auditware/invocheck/internal/domain"
	"github.com/auditware/invocheck/internal/terminal"
)

var (
	docsDir      string
	rulesFile    string
	ruleIDs      []string
	workers      int
	timeout      time.Duration
	batchTimeout time.Duration
	retries      int
	model        string
	baseURL      string
	jsonOut      bool
	outputPath   string
	viewName     string
	verbose      bool
	noConfig     bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "invocheck",
		Short: "Check invoice documents against accounting rules with an LLM backend",
		Long: `Run configurable accounting checks over extracted invoice text using a
text-generation backend, in parallel, and report severity-tagged results.

Exit codes:
  0 - All checks passed or informational
  1 - At least one warning or error
  2 - Error
  130 - Interrupted`,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Configuration flags (resolved with precedence: flag > env > config file > default)
	rootCmd.Flags().StringVarP(&docsDir, "docs", "d", "",
		"Directory of pre-extracted invoice text files (.txt/.md)")
	rootCmd.Flags().StringVar(&rulesFile, "rules-file", "",
		"Rule store path (default: rules.yaml, env: INVOCHECK_RULES_FILE)")
	rootCmd.Flags().StringArrayVar(&ruleIDs, "rule-id", nil,
		"Apply only the given rule id (repeatable; default: all rules)")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0,
		"Parallel check workers, 1-12 (default: 3, env: INVOCHECK_WORKERS)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0,
		"Timeout per model invocation (default: 90s, env: INVOCHECK_TIMEOUT)")
	rootCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 0,
		"Optional bound on the whole batch; partial results are kept (env: INVOCHECK_BATCH_TIMEOUT)")
	rootCmd.Flags().IntVarP(&retries, "retries", "R", 0,
		"Retry failed model invocations N times (default: 1, env: INVOCHECK_RETRIES)")
	rootCmd.Flags().StringVarP(&model, "model", "m", "",
		"Model identifier (default: gpt-4.1, env: INVOCHECK_MODEL)")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "",
		"OpenAI-compatible API base URL (env: INVOCHECK_BASE_URL)")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false,
		"Emit the machine-readable JSON report on stdout")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Write the JSON report to a file")
	rootCmd.Flags().StringVar(&viewName, "view", "all",
		"Outcome view to print: all, needs-review, normal")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Print each outcome as it completes")
	rootCmd.Flags().BoolVar(&noConfig, "no-config", false,
		"Skip loading .invocheck.yaml")

	_ = rootCmd.MarkFlagRequired("docs")

	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newSuggestCmd())

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(exitCodeError); ok {
			return exitErr.code.Int()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return domain.ExitError.Int()
	}
	return 0
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if !terminal.IsStderrTTY() {
		terminal.DisableColors()
	}
	logger := terminal.NewLogger()

	if _, err := aggregate.Predicate(aggregate.View(viewName)); err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	interrupted := make(chan struct{})
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr)
		logger.Log("Interrupted, shutting down...", terminal.StyleWarning)
		close(interrupted)
		cancel()
	}()

	opts, err := buildCheckOpts(cmd)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	code := executeCheck(ctx, opts, logger)
	select {
	case <-interrupted:
		return exitCode(domain.ExitInterrupted)
	default:
	}
	return exitCode(code)
}
