// Package config provides configuration loading and discovery for pyvet.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PYVET_* prefix)
//  3. Config file (closest .pyvet.toml or pyvet.toml)
//  4. Built-in defaults
//
// Config file discovery follows a cascading pattern similar to Ruff:
// starting from the target path's directory, walk up the filesystem
// until a config file is found. The closest config wins (no merging).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".pyvet.toml", "pyvet.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "PYVET_"

// Config represents the complete pyvet configuration.
type Config struct {
	// Analysis configures file discovery and the worker pool.
	Analysis AnalysisConfig `json:"analysis" koanf:"analysis"`

	// Output configures output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// Complexity holds the per-function metric thresholds.
	// The complexity detector is always enabled.
	Complexity ComplexityConfig `json:"complexity" koanf:"complexity"`

	// Duplication configures duplicate code block detection.
	Duplication DuplicationConfig `json:"duplication" koanf:"duplication"`

	// BooleanLogic configures boolean expression checks.
	BooleanLogic BooleanLogicConfig `json:"boolean_logic" koanf:"boolean_logic"`

	// Loops configures loop idiom checks.
	Loops DetectorConfig `json:"loops" koanf:"loops"`

	// Performance configures performance pitfall checks.
	Performance DetectorConfig `json:"performance" koanf:"performance"`

	// Comparisons configures comparison idiom checks.
	Comparisons DetectorConfig `json:"comparisons" koanf:"comparisons"`

	// ControlFlow configures control flow checks.
	ControlFlow DetectorConfig `json:"control_flow" koanf:"control_flow"`

	// DictOperations configures dictionary idiom checks.
	DictOperations DetectorConfig `json:"dict_operations" koanf:"dict_operations"`

	// ContextManager configures resource management checks.
	ContextManager DetectorConfig `json:"context_manager" koanf:"context_manager"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// AnalysisConfig configures file discovery and parallelism.
//
// Example TOML configuration:
//
//	[analysis]
//	max_workers = 8
//	exclude = ["test_", "/migrations/"]
type AnalysisConfig struct {
	// MaxWorkers is the number of files analyzed concurrently.
	MaxWorkers int `json:"max_workers,omitempty" koanf:"max_workers"`

	// Exclude lists substrings; a file whose path contains any of them
	// is skipped.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format (text, json, sarif).
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output (stdout, stderr, or a file path).
	Path string `json:"path,omitempty" koanf:"path"`

	// GroupBy selects text output grouping: by file or by severity.
	GroupBy string `json:"group_by,omitempty" koanf:"group_by"`

	// MinSeverity drops issues below this severity from the report.
	MinSeverity string `json:"min_severity,omitempty" koanf:"min_severity"`

	// FailLevel sets the minimum severity that causes a non-zero exit code.
	FailLevel string `json:"fail_level,omitempty" koanf:"fail_level"`

	// ShowSource enables source code snippets in text output.
	ShowSource bool `json:"show_source,omitempty" koanf:"show_source"`
}

// ComplexityConfig holds the per-function metric thresholds.
//
// Example TOML configuration:
//
//	[complexity]
//	max_branches = 10
//	max_nesting_depth = 3
//	max_function_lines = 50
type ComplexityConfig struct {
	// MaxBranches is the maximum branch count per function.
	MaxBranches int `json:"max_branches,omitempty" koanf:"max_branches"`

	// MaxNestingDepth is the maximum lexical block nesting per function.
	MaxNestingDepth int `json:"max_nesting_depth,omitempty" koanf:"max_nesting_depth"`

	// MaxFunctionLines is the maximum function length in lines.
	MaxFunctionLines int `json:"max_function_lines,omitempty" koanf:"max_function_lines"`

	// MaxArguments is the maximum parameter count (self/cls not counted).
	MaxArguments int `json:"max_arguments,omitempty" koanf:"max_arguments"`

	// MaxLocalVariables is the maximum count of distinct local names.
	MaxLocalVariables int `json:"max_local_variables,omitempty" koanf:"max_local_variables"`

	// MaxCyclomaticComplexity is the maximum cyclomatic complexity.
	MaxCyclomaticComplexity int `json:"max_cyclomatic_complexity,omitempty" koanf:"max_cyclomatic_complexity"`
}

// DuplicationConfig configures duplicate code block detection.
type DuplicationConfig struct {
	// Enabled toggles the duplication detector.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// MinDuplicateLines is the minimum block size considered for
	// duplication.
	MinDuplicateLines int `json:"min_duplicate_lines,omitempty" koanf:"min_duplicate_lines"`

	// SimilarityThreshold is the minimum Jaccard similarity (0..1) for
	// two blocks to count as duplicates.
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" koanf:"similarity_threshold"`
}

// BooleanLogicConfig configures boolean expression checks.
type BooleanLogicConfig struct {
	// Enabled toggles the boolean logic detector.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// MaxBooleanOperators is the maximum and/or operators in one
	// expression chain.
	MaxBooleanOperators int `json:"max_boolean_operators,omitempty" koanf:"max_boolean_operators"`
}

// DetectorConfig is the shared shape of detector families with no
// thresholds of their own.
type DetectorConfig struct {
	// Enabled toggles the detector.
	Enabled bool `json:"enabled" koanf:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MaxWorkers: 4,
			Exclude:    nil,
		},
		Output: OutputConfig{
			Format:      "text",
			Path:        "stdout",
			GroupBy:     "file",
			MinSeverity: "info",
			FailLevel:   "medium", // medium or high issues fail the run
			ShowSource:  true,
		},
		Complexity: ComplexityConfig{
			MaxBranches:             10,
			MaxNestingDepth:         3,
			MaxFunctionLines:        50,
			MaxArguments:            5,
			MaxLocalVariables:       15,
			MaxCyclomaticComplexity: 10,
		},
		Duplication: DuplicationConfig{
			Enabled:             true,
			MinDuplicateLines:   5,
			SimilarityThreshold: 0.85,
		},
		BooleanLogic: BooleanLogicConfig{
			Enabled:             true,
			MaxBooleanOperators: 3,
		},
		Loops:          DetectorConfig{Enabled: true},
		Performance:    DetectorConfig{Enabled: true},
		Comparisons:    DetectorConfig{Enabled: true},
		ControlFlow:    DetectorConfig{Enabled: true},
		DictOperations: DetectorConfig{Enabled: true},
		ContextManager: DetectorConfig{Enabled: true},
	}
}

// Load loads configuration for a target path.
// It discovers the closest config file, loads it, and applies
// environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath), nil)
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath, nil)
}

// LoadWithOverrides loads configuration for a target path and applies an
// overrides map (CLI flags) on top. Overrides use the same nested shape
// as the TOML file, for example:
//
//	overrides := map[string]any{
//	  "output": map[string]any{"format": "json"},
//	}
func LoadWithOverrides(targetPath string, overrides map[string]any) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath), overrides)
}

// LoadFileWithOverrides loads a specific config file and applies overrides.
func LoadFileWithOverrides(configPath string, overrides map[string]any) (*Config, error) {
	return loadWithConfigPath(configPath, overrides)
}

// loadWithConfigPath is the internal loader shared by all entry points.
func loadWithConfigPath(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Load config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load environment variables (PYVET_* prefix)
	// PYVET_COMPLEXITY_MAX_BRANCHES -> complexity.max_branches
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, err
	}

	// 4. CLI flag overrides win over everything
	if err := loadOverrides(k, overrides); err != nil {
		return nil, err
	}

	// 5. Decode and validate
	cfg, err := decodeConfig(k)
	if err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return cfg, nil
}

// envSections lists the section names an environment variable may target.
// Longest match wins, so PYVET_BOOLEAN_LOGIC_ENABLED resolves to
// boolean_logic.enabled rather than a bogus "boolean" section.
var envSections = []string{
	"boolean_logic",
	"context_manager",
	"control_flow",
	"dict_operations",
	"analysis",
	"comparisons",
	"complexity",
	"duplication",
	"loops",
	"output",
	"performance",
}

// envKeyTransform converts environment variable names to config keys.
// PYVET_OUTPUT_FORMAT -> output.format
// PYVET_COMPLEXITY_MAX_BRANCHES -> complexity.max_branches
// Variables that target no known section are dropped.
func envKeyTransform(k, v string) (string, any) {
	s := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))

	best := ""
	for _, section := range envSections {
		if len(section) <= len(best) {
			continue
		}
		if strings.HasPrefix(s, section+"_") {
			best = section
		}
	}
	if best == "" {
		return "", nil
	}

	key := strings.TrimPrefix(s, best+"_")
	if key == "" {
		return "", nil
	}
	return best + "." + key, v
}

// Discover finds the closest config file for a target path.
// It walks up the directory tree from the target's directory,
// checking for config files at each level.
// Returns empty string if no config file is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
