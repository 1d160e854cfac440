package reporter

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/rules"
)

// SARIFReporter formats issues as SARIF (Static Analysis Results Interchange Format).
// SARIF is a standard format for static analysis tools, widely supported by CI/CD systems
// including GitHub Code Scanning and Azure DevOps.
//
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
type SARIFReporter struct {
	writer      io.Writer
	toolName    string
	toolVersion string
	toolURI     string
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(w io.Writer, toolName, toolVersion, toolURI string) *SARIFReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	if toolURI == "" {
		toolURI = defaultToolURI
	}
	return &SARIFReporter{
		writer:      w,
		toolName:    toolName,
		toolVersion: toolVersion,
		toolURI:     toolURI,
	}
}

// Report implements Reporter. Parse failures carry no rule ID and are
// left to the text and JSON reporters.
func (r *SARIFReporter) Report(result *analyzer.AnalysisResult, _ ReportMetadata) error {
	// Create a new SARIF report (v2.1.0 for maximum compatibility)
	report := sarif.NewReport()

	// Create a run with tool information
	run := sarif.NewRunWithInformationURI(r.toolName, r.toolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	issues := result.AllIssues()

	// Collect unique rule IDs and files
	ruleSet := make(map[string]struct{})
	fileSet := make(map[string]struct{})

	for _, issue := range issues {
		ruleSet[issue.RuleID] = struct{}{}
		// Normalize path for SARIF URIs (cross-platform consistency)
		fileSet[filepath.ToSlash(issue.File)] = struct{}{}
	}

	// Add rule definitions
	ruleIDs := make([]string, 0, len(ruleSet))
	for id := range ruleSet {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	registry := rules.DefaultRegistry()
	for _, id := range ruleIDs {
		rule := run.AddRule(id)
		if meta, ok := registry.RuleByID(id); ok && meta.Summary != "" {
			rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(meta.Summary))
		}
	}

	// Add artifacts (files)
	files := make([]string, 0, len(fileSet))
	for file := range fileSet {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		run.AddDistinctArtifact(file)
	}

	// Add results
	for _, issue := range issues {
		filePath := filepath.ToSlash(issue.File)

		res := sarif.NewRuleResult(issue.RuleID).
			WithMessage(sarif.NewTextMessage(issue.Message)).
			WithLevel(severityToSARIFLevel(issue.Severity))

		region := sarif.NewRegion().
			WithStartLine(issue.Line).
			WithStartColumn(issue.Column + 1) // SARIF uses 1-based columns

		if issue.EndLine > issue.Line {
			region.WithEndLine(issue.EndLine)
		}

		// Add source snippet if available
		if issue.CodeSnippet != "" {
			region.WithSnippet(sarif.NewArtifactContent().WithText(issue.CodeSnippet))
		}

		physicalLocation := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewSimpleArtifactLocation(filePath)).
			WithRegion(region)

		res.WithLocations([]*sarif.Location{
			sarif.NewLocationWithPhysicalLocation(physicalLocation),
		})

		run.AddResult(res)
	}

	report.AddRun(run)

	// Write with pretty formatting for readability
	return report.PrettyWrite(r.writer)
}

// SARIF severity levels.
const (
	sarifLevelError   = "error"
	sarifLevelWarning = "warning"
	sarifLevelNote    = "note"
)

// severityToSARIFLevel maps our Severity to SARIF levels.
// SARIF uses: "error", "warning", "note", "none"
func severityToSARIFLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityHigh:
		return sarifLevelError
	case rules.SeverityMedium:
		return sarifLevelWarning
	case rules.SeverityLow, rules.SeverityInfo:
		return sarifLevelNote
	default:
		return sarifLevelWarning
	}
}
