package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/auditware/invocheck/internal/config"
	"github.com/auditware/invocheck/internal/domain"
)

// exitCodeError is a wrapper type for returning exit codes via the
// error interface.
type exitCodeError struct {
	code domain.ExitCode
}

func (e exitCodeError) Error() string {
	switch e.code {
	case domain.ExitNeedsReview:
		return "checks need review"
	case domain.ExitError:
		return "check run failed with error"
	case domain.ExitInterrupted:
		return "check run was interrupted"
	default:
		return fmt.Sprintf("exit code %d", e.code)
	}
}

func exitCode(code domain.ExitCode) error {
	if code == domain.ExitClean {
		return nil
	}
	return exitCodeError{code: code}
}

// resolveAPIKey reads the model API key from the environment. The key
// never travels through config files and never reaches the core
// packages by any path other than explicit injection.
func resolveAPIKey() (string, error) {
	if key := os.Getenv("INVOCHECK_API_KEY"); key != "" {
		return key, nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key found: set INVOCHECK_API_KEY or OPENAI_API_KEY")
}

// resolveConfig loads the config file (unless disabled) and applies
// flag/env/file/default precedence.
func resolveConfig(cmd *cobra.Command, warn func(string)) (config.ResolvedConfig, error) {
	cfg := &config.Config{}
	if !noConfig {
		loaded, err := config.LoadFromDir(".")
		if err != nil {
			return config.ResolvedConfig{}, err
		}
		for _, w := range loaded.Warnings {
			warn(w)
		}
		cfg = loaded.Config
	}

	flags := config.ResolvedConfig{
		Workers:      workers,
		Timeout:      timeout,
		BatchTimeout: batchTimeout,
		Retries:      retries,
		Model:        model,
		BaseURL:      baseURL,
		RulesFile:    rulesFile,
	}
	state := config.FlagState{
		WorkersSet:      cmd.Flags().Changed("workers"),
		TimeoutSet:      cmd.Flags().Changed("timeout"),
		BatchTimeoutSet: cmd.Flags().Changed("batch-timeout"),
		RetriesSet:      cmd.Flags().Changed("retries"),
		ModelSet:        cmd.Flags().Changed("model"),
		BaseURLSet:      cmd.Flags().Changed("base-url"),
		RulesFileSet:    cmd.Flags().Changed("rules-file"),
	}

	return config.Resolve(flags, state, cfg)
}
