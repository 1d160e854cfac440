package analyzer

import (
	"slices"
	"strings"

	"github.com/pyvet/pyvet/internal/rules"
)

// FileAnalysis is the outcome of analyzing one file. A file either parsed
// (Issues may be non-empty) or failed (ParseError is set and Issues is
// empty); the two never mix.
type FileAnalysis struct {
	// FilePath is the analyzed file, spelled the way discovery produced it.
	FilePath string `json:"file_path"`

	// Issues holds the findings in detector order, emission order within
	// each detector.
	Issues []rules.Issue `json:"issues"`

	// ParseError describes why the file could not be analyzed. Empty for
	// files that parsed cleanly.
	ParseError string `json:"parse_error,omitempty"`

	// LinesOfCode is the source line count. A trailing newline does not
	// start another line.
	LinesOfCode int `json:"lines_of_code"`
}

// HasIssues reports whether any findings were recorded.
func (fa *FileAnalysis) HasIssues() bool {
	return len(fa.Issues) > 0
}

// IssueCount returns the number of findings.
func (fa *FileAnalysis) IssueCount() int {
	return len(fa.Issues)
}

// IssuesBySeverity returns the findings carrying exactly the given severity.
func (fa *FileAnalysis) IssuesBySeverity(sev rules.Severity) []rules.Issue {
	var out []rules.Issue
	for _, issue := range fa.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}

// AnalysisResult collects per-file outcomes. Concurrent analysis appends
// files as they complete, so the order is not deterministic; callers that
// need stable output use SortByPath.
type AnalysisResult struct {
	Files []FileAnalysis `json:"files"`
}

// NewResult returns an empty result.
func NewResult() *AnalysisResult {
	return &AnalysisResult{}
}

// Add appends one file outcome.
func (r *AnalysisResult) Add(fa FileAnalysis) {
	r.Files = append(r.Files, fa)
}

// SortByPath orders files by path. Issue order within each file is
// preserved.
func (r *AnalysisResult) SortByPath() {
	slices.SortStableFunc(r.Files, func(a, b FileAnalysis) int {
		return strings.Compare(a.FilePath, b.FilePath)
	})
}

// AllIssues returns every finding across all files, in file order.
func (r *AnalysisResult) AllIssues() []rules.Issue {
	var out []rules.Issue
	for i := range r.Files {
		out = append(out, r.Files[i].Issues...)
	}
	return out
}

// TotalFiles returns the number of files analyzed, including files that
// failed to parse.
func (r *AnalysisResult) TotalFiles() int {
	return len(r.Files)
}

// TotalIssues returns the number of findings across all files.
func (r *AnalysisResult) TotalIssues() int {
	n := 0
	for i := range r.Files {
		n += len(r.Files[i].Issues)
	}
	return n
}

// FilesWithIssues returns the number of files with at least one finding.
func (r *AnalysisResult) FilesWithIssues() int {
	n := 0
	for i := range r.Files {
		if len(r.Files[i].Issues) > 0 {
			n++
		}
	}
	return n
}

// FilesWithParseErrors returns the number of files that could not be
// analyzed.
func (r *AnalysisResult) FilesWithParseErrors() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].ParseError != "" {
			n++
		}
	}
	return n
}

// CountBySeverity counts findings per severity across all files.
// Severities with no findings are absent from the map.
func (r *AnalysisResult) CountBySeverity() map[rules.Severity]int {
	counts := make(map[rules.Severity]int)
	for i := range r.Files {
		for _, issue := range r.Files[i].Issues {
			counts[issue.Severity]++
		}
	}
	return counts
}

// IssuesAtLeast counts findings at or above the given severity. The check
// command derives its exit code from this count and the fail_level
// threshold.
func (r *AnalysisResult) IssuesAtLeast(min rules.Severity) int {
	n := 0
	for i := range r.Files {
		for _, issue := range r.Files[i].Issues {
			if issue.Severity.IsAtLeast(min) {
				n++
			}
		}
	}
	return n
}
