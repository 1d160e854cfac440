package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/rules"
)

// parseCheckFlags runs the check command with its action swapped out so
// tests can inspect parsed flag state without running an analysis.
func parseCheckFlags(t *testing.T, args ...string) *cli.Command {
	t.Helper()

	var captured *cli.Command
	cc := checkCommand()
	cc.Action = func(_ context.Context, cmd *cli.Command) error {
		captured = cmd
		return nil
	}

	require.NoError(t, cc.Run(context.Background(), append([]string{"check"}, args...)))
	require.NotNil(t, captured)
	return captured
}

func TestConfigOverrides(t *testing.T) {
	t.Parallel()

	t.Run("no flags set", func(t *testing.T) {
		t.Parallel()

		cmd := parseCheckFlags(t)
		assert.Empty(t, configOverrides(cmd))
	})

	t.Run("output flags", func(t *testing.T) {
		t.Parallel()

		cmd := parseCheckFlags(t,
			"--format", "json",
			"--output", "report.json",
			"--group-by", "severity",
			"--min-severity", "low",
			"--fail-level", "high",
		)
		want := map[string]any{
			"output": map[string]any{
				"format":       "json",
				"path":         "report.json",
				"group_by":     "severity",
				"min_severity": "low",
				"fail_level":   "high",
			},
		}
		assert.Equal(t, want, configOverrides(cmd))
	})

	t.Run("hide-source beats show-source", func(t *testing.T) {
		t.Parallel()

		cmd := parseCheckFlags(t, "--show-source", "--hide-source")
		want := map[string]any{
			"output": map[string]any{"show_source": false},
		}
		assert.Equal(t, want, configOverrides(cmd))
	})

	t.Run("jobs maps to max_workers", func(t *testing.T) {
		t.Parallel()

		cmd := parseCheckFlags(t, "--jobs", "8")
		want := map[string]any{
			"analysis": map[string]any{"max_workers": 8},
		}
		assert.Equal(t, want, configOverrides(cmd))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults when no config file exists", func(t *testing.T) {
		t.Parallel()

		cmd := parseCheckFlags(t)
		cfg, err := loadConfig(cmd, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.Output.Format)
		assert.Equal(t, 4, cfg.Analysis.MaxWorkers)
	})

	t.Run("flags override explicit config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "pyvet.toml")
		src := "[analysis]\nexclude = [\"vendor/**\"]\n\n[output]\nformat = \"json\"\n"
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

		cmd := parseCheckFlags(t, "--config", path, "--format", "sarif", "--exclude", "build/**")
		cfg, err := loadConfig(cmd, dir)
		require.NoError(t, err)

		assert.Equal(t, "sarif", cfg.Output.Format)
		// CLI excludes extend the configured list instead of replacing it.
		assert.Equal(t, []string{"vendor/**", "build/**"}, cfg.Analysis.Exclude)
	})

	t.Run("invalid flag value fails validation", func(t *testing.T) {
		t.Parallel()

		cmd := parseCheckFlags(t, "--format", "xml")
		_, err := loadConfig(cmd, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output.format")
	})
}

func resultWithSeverities(sevs ...rules.Severity) *analyzer.AnalysisResult {
	fa := analyzer.FileAnalysis{FilePath: "app.py"}
	for i, sev := range sevs {
		fa.Issues = append(fa.Issues, rules.Issue{
			File:     "app.py",
			Line:     i + 1,
			Severity: sev,
			RuleID:   "C001",
			Message:  "too complex",
		})
	}
	result := analyzer.NewResult()
	result.Add(fa)
	return result
}

func TestDetermineExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		result    *analyzer.AnalysisResult
		failLevel string
		want      int
	}{
		{"no issues", analyzer.NewResult(), "medium", ExitSuccess},
		{"high issue at medium level", resultWithSeverities(rules.SeverityHigh), "medium", ExitIssues},
		{"low issue at medium level", resultWithSeverities(rules.SeverityLow), "medium", ExitSuccess},
		{"medium issue at high level", resultWithSeverities(rules.SeverityMedium), "high", ExitSuccess},
		{"info issue at info level", resultWithSeverities(rules.SeverityInfo), "info", ExitIssues},
		{"none never fails", resultWithSeverities(rules.SeverityHigh, rules.SeverityHigh), "none", ExitSuccess},
		{"med alias accepted", resultWithSeverities(rules.SeverityMedium), "med", ExitIssues},
		{"unknown level", resultWithSeverities(rules.SeverityHigh), "sometimes", ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, determineExitCode(tt.result, tt.failLevel))
		})
	}
}

func TestEnabledRuleCount(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	all := len(rules.AllRules())
	assert.Equal(t, all, enabledRuleCount(cfg))

	cfg.Duplication.Enabled = false
	assert.Equal(t, all-1, enabledRuleCount(cfg))

	// Complexity metrics cannot be switched off, so its rules always count.
	cfg.BooleanLogic.Enabled = false
	cfg.Loops.Enabled = false
	cfg.Performance.Enabled = false
	cfg.Comparisons.Enabled = false
	cfg.ControlFlow.Enabled = false
	cfg.DictOperations.Enabled = false
	cfg.ContextManager.Enabled = false

	complexityDet := rules.DefaultRegistry().Get("complexity")
	require.NotNil(t, complexityDet)
	assert.Equal(t, len(complexityDet.Rules()), enabledRuleCount(cfg))
}
