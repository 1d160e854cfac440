package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/rules"
)

// JSONReporter renders results as a machine-readable JSON document.
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

// jsonOutput is the top-level document shape.
type jsonOutput struct {
	Files   []jsonFile  `json:"files"`
	Summary jsonSummary `json:"summary"`
}

// jsonFile mirrors one analyzed file, issues included even when empty so
// consumers can distinguish "clean file" from "file skipped".
type jsonFile struct {
	File        string        `json:"file"`
	ParseError  string        `json:"parse_error,omitempty"`
	LinesOfCode int           `json:"lines_of_code"`
	Issues      []rules.Issue `json:"issues"`
}

type jsonSummary struct {
	FilesAnalyzed        int            `json:"files_analyzed"`
	FilesWithIssues      int            `json:"files_with_issues"`
	FilesWithParseErrors int            `json:"files_with_parse_errors"`
	TotalIssues          int            `json:"total_issues"`
	BySeverity           map[string]int `json:"by_severity"`
	RulesEnabled         int            `json:"rules_enabled"`
}

// Report implements Reporter.
func (r *JSONReporter) Report(result *analyzer.AnalysisResult, metadata ReportMetadata) error {
	out := jsonOutput{
		Files: make([]jsonFile, 0, len(result.Files)),
		Summary: jsonSummary{
			FilesAnalyzed:        result.TotalFiles(),
			FilesWithIssues:      result.FilesWithIssues(),
			FilesWithParseErrors: result.FilesWithParseErrors(),
			TotalIssues:          result.TotalIssues(),
			BySeverity:           severityCounts(result),
			RulesEnabled:         metadata.RulesEnabled,
		},
	}

	for i := range result.Files {
		fa := &result.Files[i]
		issues := fa.Issues
		if issues == nil {
			issues = []rules.Issue{}
		}
		out.Files = append(out.Files, jsonFile{
			File:        fa.FilePath,
			ParseError:  fa.ParseError,
			LinesOfCode: fa.LinesOfCode,
			Issues:      issues,
		})
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

// severityCounts flattens the per-severity totals to string keys, zero
// counts omitted.
func severityCounts(result *analyzer.AnalysisResult) map[string]int {
	counts := make(map[string]int)
	for sev, n := range result.CountBySeverity() {
		counts[sev.String()] = n
	}
	return counts
}
