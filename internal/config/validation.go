package config

import (
	"fmt"
	"slices"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

var (
	validFormats    = []string{"text", "json", "sarif"}
	validGroupings  = []string{"file", "severity"}
	validSeverities = []string{"info", "low", "medium", "high"}

	// "none" disables failing the run entirely.
	validFailLevels = []string{"info", "low", "medium", "high", "none"}
)

func loadOverrides(k *koanf.Koanf, overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	return k.Load(confmap.Provider(overrides, ""), nil)
}

func decodeConfig(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the analyzer cannot run
// with. It reports the first problem found.
func (c *Config) Validate() error {
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %v, got %q", validFormats, c.Output.Format)
	}
	if !slices.Contains(validGroupings, c.Output.GroupBy) {
		return fmt.Errorf("output.group_by must be one of %v, got %q", validGroupings, c.Output.GroupBy)
	}
	if !slices.Contains(validSeverities, c.Output.MinSeverity) {
		return fmt.Errorf("output.min_severity must be one of %v, got %q", validSeverities, c.Output.MinSeverity)
	}
	if !slices.Contains(validFailLevels, c.Output.FailLevel) {
		return fmt.Errorf("output.fail_level must be one of %v, got %q", validFailLevels, c.Output.FailLevel)
	}
	if c.Analysis.MaxWorkers < 1 {
		return fmt.Errorf("analysis.max_workers must be positive, got %d", c.Analysis.MaxWorkers)
	}

	thresholds := []struct {
		name  string
		value int
	}{
		{"complexity.max_branches", c.Complexity.MaxBranches},
		{"complexity.max_nesting_depth", c.Complexity.MaxNestingDepth},
		{"complexity.max_function_lines", c.Complexity.MaxFunctionLines},
		{"complexity.max_arguments", c.Complexity.MaxArguments},
		{"complexity.max_local_variables", c.Complexity.MaxLocalVariables},
		{"complexity.max_cyclomatic_complexity", c.Complexity.MaxCyclomaticComplexity},
	}
	for _, t := range thresholds {
		if t.value < 1 {
			return fmt.Errorf("%s must be positive, got %d", t.name, t.value)
		}
	}

	if c.Duplication.MinDuplicateLines < 2 {
		return fmt.Errorf("duplication.min_duplicate_lines must be at least 2, got %d", c.Duplication.MinDuplicateLines)
	}
	if c.Duplication.SimilarityThreshold < 0 || c.Duplication.SimilarityThreshold > 1 {
		return fmt.Errorf("duplication.similarity_threshold must be within [0, 1], got %g", c.Duplication.SimilarityThreshold)
	}
	if c.BooleanLogic.MaxBooleanOperators < 1 {
		return fmt.Errorf("boolean_logic.max_boolean_operators must be positive, got %d", c.BooleanLogic.MaxBooleanOperators)
	}

	return nil
}
