// Package config provides configuration file support for invocheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/auditware/invocheck/internal/runner"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = ".invocheck.yaml"

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("90s", "2m") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config represents the invocheck configuration file. Pointer fields
// distinguish "unset" from a zero value during resolution.
type Config struct {
	Workers      *int      `yaml:"workers"`
	Timeout      *Duration `yaml:"timeout"`
	BatchTimeout *Duration `yaml:"batch_timeout"`
	Retries      *int      `yaml:"retries"`
	Model        *string   `yaml:"model"`
	BaseURL      *string   `yaml:"base_url"`
	RulesFile    *string   `yaml:"rules_file"`
}

// LoadResult contains the loaded config and any warnings encountered.
type LoadResult struct {
	Config   *Config
	Warnings []string
}

// LoadFromDir reads .invocheck.yaml from the given directory.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadFromDir(dir string) (*LoadResult, error) {
	return LoadFromPath(filepath.Join(dir, ConfigFileName))
}

// LoadFromPath reads a config file and returns warnings for unknown
// keys. Returns an empty config (not an error) if the file doesn't
// exist; a present but invalid file is an error.
func LoadFromPath(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Warnings: warnings}, nil
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.Workers != nil {
		if err := runner.ValidateWorkers(*c.Workers); err != nil {
			return err
		}
	}
	if c.Timeout != nil && *c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", time.Duration(*c.Timeout))
	}
	if c.BatchTimeout != nil && *c.BatchTimeout < 0 {
		return fmt.Errorf("batch_timeout must be >= 0, got %s", time.Duration(*c.BatchTimeout))
	}
	if c.Retries != nil && *c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", *c.Retries)
	}
	if c.Model != nil && *c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	return nil
}

// knownKeys are the valid top-level keys in the config file.
var knownKeys = []string{"workers", "timeout", "batch_timeout", "retries", "model", "base_url", "rules_file"}

// checkUnknownKeys inspects the YAML for unrecognized keys and returns
// warnings with a nearest-match suggestion when one is close enough.
func checkUnknownKeys(data []byte) []string {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// Let the main parser report the error
		return nil
	}

	var warnings []string
	for key := range raw {
		if !slices.Contains(knownKeys, key) {
			warning := fmt.Sprintf("unknown key %q in %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}
	return warnings
}

// findSimilar finds the closest candidate within 3 edits, or "".
func findSimilar(input string, candidates []string) string {
	const maxDistance = 3
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		if dist := levenshtein(input, candidate); dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}
	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}
	return matrix[len(ra)][len(rb)]
}

// Defaults holds the built-in default values.
var Defaults = ResolvedConfig{
	Workers:      3,
	Timeout:      90 * time.Second,
	BatchTimeout: 0, // no batch-level bound
	Retries:      1,
	Model:        "gpt-4.1",
	BaseURL:      "",
	RulesFile:    "",
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	Workers      int
	Timeout      time.Duration
	BatchTimeout time.Duration
	Retries      int
	Model        string
	BaseURL      string
	RulesFile    string
}

// FlagState tracks whether a flag was explicitly set on the command line.
type FlagState struct {
	WorkersSet      bool
	TimeoutSet      bool
	BatchTimeoutSet bool
	RetriesSet      bool
	ModelSet        bool
	BaseURLSet      bool
	RulesFileSet    bool
}

// Resolve applies precedence: flag > env > config file > default.
// flags carries the flag values; state says which were explicitly set.
func Resolve(flags ResolvedConfig, state FlagState, cfg *Config) (ResolvedConfig, error) {
	resolved := Defaults

	if cfg != nil {
		if cfg.Workers != nil {
			resolved.Workers = *cfg.Workers
		}
		if cfg.Timeout != nil {
			resolved.Timeout = cfg.Timeout.AsDuration()
		}
		if cfg.BatchTimeout != nil {
			resolved.BatchTimeout = cfg.BatchTimeout.AsDuration()
		}
		if cfg.Retries != nil {
			resolved.Retries = *cfg.Retries
		}
		if cfg.Model != nil {
			resolved.Model = *cfg.Model
		}
		if cfg.BaseURL != nil {
			resolved.BaseURL = *cfg.BaseURL
		}
		if cfg.RulesFile != nil {
			resolved.RulesFile = *cfg.RulesFile
		}
	}

	if err := applyEnv(&resolved); err != nil {
		return ResolvedConfig{}, err
	}

	if state.WorkersSet {
		resolved.Workers = flags.Workers
	}
	if state.TimeoutSet {
		resolved.Timeout = flags.Timeout
	}
	if state.BatchTimeoutSet {
		resolved.BatchTimeout = flags.BatchTimeout
	}
	if state.RetriesSet {
		resolved.Retries = flags.Retries
	}
	if state.ModelSet {
		resolved.Model = flags.Model
	}
	if state.BaseURLSet {
		resolved.BaseURL = flags.BaseURL
	}
	if state.RulesFileSet {
		resolved.RulesFile = flags.RulesFile
	}

	if err := runner.ValidateWorkers(resolved.Workers); err != nil {
		return ResolvedConfig{}, err
	}
	if resolved.Timeout <= 0 {
		return ResolvedConfig{}, fmt.Errorf("timeout must be > 0, got %s", resolved.Timeout)
	}
	if resolved.Retries < 0 {
		return ResolvedConfig{}, fmt.Errorf("retries must be >= 0, got %d", resolved.Retries)
	}

	return resolved, nil
}

func applyEnv(resolved *ResolvedConfig) error {
	if v := os.Getenv("INVOCHECK_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid INVOCHECK_WORKERS %q: %w", v, err)
		}
		resolved.Workers = n
	}
	if v := os.Getenv("INVOCHECK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid INVOCHECK_TIMEOUT %q: %w", v, err)
		}
		resolved.Timeout = d
	}
	if v := os.Getenv("INVOCHECK_BATCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid INVOCHECK_BATCH_TIMEOUT %q: %w", v, err)
		}
		resolved.BatchTimeout = d
	}
	if v := os.Getenv("INVOCHECK_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid INVOCHECK_RETRIES %q: %w", v, err)
		}
		resolved.Retries = n
	}
	if v := os.Getenv("INVOCHECK_MODEL"); v != "" {
		resolved.Model = v
	}
	if v := os.Getenv("INVOCHECK_BASE_URL"); v != "" {
		resolved.BaseURL = v
	}
	if v := os.Getenv("INVOCHECK_RULES_FILE"); v != "" {
		resolved.RulesFile = v
	}
	return nil
}
