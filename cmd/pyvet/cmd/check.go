package cmd

import (
	stdcontext "context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/processor"
	"github.com/pyvet/pyvet/internal/reporter"
	"github.com/pyvet/pyvet/internal/rules"
	_ "github.com/pyvet/pyvet/internal/rules/all" // Register all detectors
	"github.com/pyvet/pyvet/internal/version"
)

// Exit codes
const (
	ExitSuccess     = 0 // No issues (or below fail-level threshold)
	ExitIssues      = 1 // Issues found at or above fail-level
	ExitConfigError = 2 // Parse or config error
	ExitNoFiles     = 3 // No Python files found (missing file, empty glob, empty directory)
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Analyze Python files for structural issues",
		ArgsUsage: "[PATH...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: auto-discover)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, sarif",
				Sources: cli.EnvVars("PYVET_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: stdout, stderr, or file path",
				Sources: cli.EnvVars("PYVET_OUTPUT"),
			},
			&cli.StringFlag{
				Name:    "group-by",
				Aliases: []string{"g"},
				Usage:   "Group text output by: file, severity",
				Sources: cli.EnvVars("PYVET_GROUP_BY"),
			},
			&cli.StringFlag{
				Name:    "min-severity",
				Usage:   "Hide issues below this severity: info, low, medium, high",
				Sources: cli.EnvVars("PYVET_MIN_SEVERITY"),
			},
			&cli.StringFlag{
				Name:    "fail-level",
				Usage:   "Minimum severity to cause non-zero exit: info, low, medium, high, none",
				Sources: cli.EnvVars("PYVET_FAIL_LEVEL"),
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Number of files analyzed concurrently",
				Sources: cli.EnvVars("PYVET_JOBS"),
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Aliases: []string{"e"},
				Usage:   "Path substring to exclude (can be repeated)",
				Sources: cli.EnvVars("PYVET_EXCLUDE"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
			&cli.BoolFlag{
				Name:    "show-source",
				Usage:   "Show source code snippets (default: true)",
				Value:   true,
				Sources: cli.EnvVars("PYVET_SHOW_SOURCE"),
			},
			&cli.BoolFlag{
				Name:  "hide-source",
				Usage: "Hide source code snippets",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose logging",
				Sources: cli.EnvVars("PYVET_VERBOSE"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress warnings and progress output",
			},
		},
		Action: runCheck,
	}
}

// runCheck is the action handler for the check command.
func runCheck(ctx stdcontext.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	cfg, err := loadConfig(cmd, inputs[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	channel, stopProgress := buildChannel(cmd)
	defer stopProgress()

	a := analyzer.New(cfg, channel)
	result, err := a.AnalyzeFiles(ctx, inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	stopProgress()

	if result.TotalFiles() == 0 {
		return cli.Exit("", ExitNoFiles)
	}

	result.SortByPath()

	procCtx := processor.NewContext(cfg, nil)
	processor.DefaultChain(cfg).ProcessResult(result, procCtx)

	return writeReport(cmd, cfg, result)
}

// loadConfig loads configuration with CLI flag overrides applied.
// The target path drives config file discovery when no explicit config
// file is given.
func loadConfig(cmd *cli.Command, target string) (*config.Config, error) {
	overrides := configOverrides(cmd)

	var cfg *config.Config
	var err error
	if configPath := cmd.String("config"); configPath != "" {
		cfg, err = config.LoadFileWithOverrides(configPath, overrides)
	} else {
		cfg, err = config.LoadWithOverrides(target, overrides)
	}
	if err != nil {
		return nil, err
	}

	// CLI excludes extend rather than replace configured ones.
	if cmd.IsSet("exclude") {
		cfg.Analysis.Exclude = append(cfg.Analysis.Exclude, cmd.StringSlice("exclude")...)
	}

	return cfg, nil
}

// configOverrides maps explicitly set CLI flags onto the nested config
// shape used by the loader.
func configOverrides(cmd *cli.Command) map[string]any {
	output := map[string]any{}
	if cmd.IsSet("format") {
		output["format"] = cmd.String("format")
	}
	if cmd.IsSet("output") {
		output["path"] = cmd.String("output")
	}
	if cmd.IsSet("group-by") {
		output["group_by"] = cmd.String("group-by")
	}
	if cmd.IsSet("min-severity") {
		output["min_severity"] = cmd.String("min-severity")
	}
	if cmd.IsSet("fail-level") {
		output["fail_level"] = cmd.String("fail-level")
	}
	if cmd.IsSet("show-source") {
		output["show_source"] = cmd.Bool("show-source")
	}
	if cmd.IsSet("hide-source") && cmd.Bool("hide-source") {
		output["show_source"] = false
	}

	analysis := map[string]any{}
	if cmd.IsSet("jobs") {
		analysis["max_workers"] = cmd.Int("jobs")
	}

	overrides := map[string]any{}
	if len(output) > 0 {
		overrides["output"] = output
	}
	if len(analysis) > 0 {
		overrides["analysis"] = analysis
	}
	return overrides
}

// writeReport formats and writes the analysis report.
func writeReport(cmd *cli.Command, cfg *config.Config, result *analyzer.AnalysisResult) error {
	formatType, err := reporter.ParseFormat(cfg.Output.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	writer, closeWriter, err := reporter.GetWriter(cfg.Output.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	defer func() {
		if err := closeWriter(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output: %v\n", err)
		}
	}()

	opts := reporter.Options{
		Format:      formatType,
		Writer:      writer,
		ShowSource:  cfg.Output.ShowSource,
		GroupBy:     cfg.Output.GroupBy,
		ToolName:    "pyvet",
		ToolVersion: version.Version(),
		ToolURI:     "https://github.com/pyvet/pyvet",
	}

	if cmd.IsSet("no-color") && cmd.Bool("no-color") {
		noColor := false
		opts.Color = &noColor
	}

	rep, err := reporter.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create reporter: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	metadata := reporter.ReportMetadata{
		RulesEnabled: enabledRuleCount(cfg),
	}

	if err := rep.Report(result, metadata); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write output: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	exitCode := determineExitCode(result, cfg.Output.FailLevel)
	if exitCode != ExitSuccess {
		return cli.Exit("", exitCode)
	}

	return nil
}

// enabledRuleCount counts the rule IDs of all detectors enabled under cfg.
func enabledRuleCount(cfg *config.Config) int {
	n := 0
	for _, d := range rules.All() {
		if d.Enabled(cfg) {
			n += len(d.Rules())
		}
	}
	return n
}

// determineExitCode returns the appropriate exit code based on issues
// found and the configured fail-level.
func determineExitCode(result *analyzer.AnalysisResult, failLevel string) int {
	// "none" means never fail due to issues
	if failLevel == "none" {
		return ExitSuccess
	}

	threshold, err := rules.ParseSeverity(failLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid fail-level %q\n", failLevel)
		return ExitConfigError
	}

	if result.IssuesAtLeast(threshold) > 0 {
		return ExitIssues
	}

	return ExitSuccess
}
