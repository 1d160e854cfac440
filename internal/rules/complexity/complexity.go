// Package complexity implements the per-function complexity metrics
// (rules C001-C006).
package complexity

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
)

// Detector scores every function against the configured thresholds.
type Detector struct{}

// New creates the complexity detector.
func New() *Detector {
	return &Detector{}
}

// Name returns the detector name.
func (d *Detector) Name() string { return "complexity" }

// Enabled reports whether the detector runs. Complexity metrics are the
// core of the analyzer and cannot be switched off.
func (d *Detector) Enabled(*config.Config) bool { return true }

// Rules returns metadata for the complexity rules.
func (d *Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:          "C001",
			Severity:    rules.SeverityMedium,
			Summary:     "Function too long",
			Description: "Function length in lines exceeds the configured maximum.",
		},
		{
			ID:          "C002",
			Severity:    rules.SeverityMedium,
			Summary:     "Too many arguments",
			Description: "Function takes more parameters than the configured maximum (self/cls not counted).",
		},
		{
			ID:          "C003",
			Severity:    rules.SeverityLow,
			Summary:     "Too many local variables",
			Description: "Function binds more distinct local names than the configured maximum.",
		},
		{
			ID:          "C004",
			Severity:    rules.SeverityHigh,
			Summary:     "Too many branches",
			Description: "Function has more branch points than the configured maximum.",
		},
		{
			ID:          "C005",
			Severity:    rules.SeverityHigh,
			Summary:     "Excessive nesting depth",
			Description: "Function nests block statements deeper than the configured maximum.",
		},
		{
			ID:          "C006",
			Severity:    rules.SeverityMedium,
			Summary:     "High cyclomatic complexity",
			Description: "Function has more independent paths than the configured maximum.",
		},
	}
}

// Check scores each function and reports every exceeded threshold.
// A suppression marker on or directly above the def line skips the
// whole function.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	cfg := in.Config.Complexity
	var issues []rules.Issue

	for _, fn := range pysrc.Functions(in.Tree.Root()) {
		if in.Suppressed(fn) {
			continue
		}
		issues = append(issues, d.checkFunction(in, fn, cfg)...)
	}

	return issues, nil
}

func (d *Detector) checkFunction(in *rules.Input, fn *sitter.Node, cfg config.ComplexityConfig) []rules.Issue {
	name := pysrc.FunctionName(fn, in.Source())
	line := pysrc.Line(fn)
	col := pysrc.Column(fn)
	var issues []rules.Issue

	if length := functionLength(fn); length > cfg.MaxFunctionLines {
		issues = append(issues, rules.NewIssue(in.FilePath, line, col, rules.SeverityMedium, "C001",
			fmt.Sprintf("Function '%s' is too long (%d lines, max %d)", name, length, cfg.MaxFunctionLines)).
			WithSuggestion("Consider breaking this function into smaller, more focused functions").
			WithEndLine(pysrc.EndLine(fn)))
	}

	if args := argumentCount(fn, in.Source()); args > cfg.MaxArguments {
		issues = append(issues, rules.NewIssue(in.FilePath, line, col, rules.SeverityMedium, "C002",
			fmt.Sprintf("Function '%s' has too many arguments (%d, max %d)", name, args, cfg.MaxArguments)).
			WithSuggestion("Consider using a configuration object or dataclass to group related parameters"))
	}

	if locals := localVariableCount(fn, in.Source()); locals > cfg.MaxLocalVariables {
		issues = append(issues, rules.NewIssue(in.FilePath, line, col, rules.SeverityLow, "C003",
			fmt.Sprintf("Function '%s' has too many local variables (%d, max %d)", name, locals, cfg.MaxLocalVariables)).
			WithSuggestion("Consider extracting functionality into helper functions or classes"))
	}

	if branches := branchCount(fn); branches > cfg.MaxBranches {
		issues = append(issues, rules.NewIssue(in.FilePath, line, col, rules.SeverityHigh, "C004",
			fmt.Sprintf("Function '%s' has too many branches (%d, max %d)", name, branches, cfg.MaxBranches)).
			WithSuggestion("Refactor using helper functions, guard clauses, or dictionary dispatch patterns"))
	}

	if depth := nestingDepth(fn); depth > cfg.MaxNestingDepth {
		issues = append(issues, rules.NewIssue(in.FilePath, line, col, rules.SeverityHigh, "C005",
			fmt.Sprintf("Function '%s' has excessive nesting depth (%d, max %d)", name, depth, cfg.MaxNestingDepth)).
			WithSuggestion("Use early returns, guard clauses, or extract nested logic to separate functions"))
	}

	if cc := cyclomaticComplexity(fn); cc > cfg.MaxCyclomaticComplexity {
		issues = append(issues, rules.NewIssue(in.FilePath, line, col, rules.SeverityMedium, "C006",
			fmt.Sprintf("Function '%s' has high cyclomatic complexity (%d, max %d)", name, cc, cfg.MaxCyclomaticComplexity)).
			WithSuggestion("Simplify the function by reducing decision points or extracting logic"))
	}

	return issues
}

func init() {
	rules.Register(New())
}
