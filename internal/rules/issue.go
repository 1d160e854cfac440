package rules

import "fmt"

// ValidationError reports an attempt to construct an issue with impossible
// coordinates. Positions come from parsed syntax trees, so an invalid value
// is a detector bug rather than bad input; NewIssue panics with this error
// and the analyzer isolates the panic at the detector boundary.
type ValidationError struct {
	Field string
	Value int
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid issue for rule %s: %s = %d", e.Rule, e.Field, e.Value)
}

// Issue represents a single finding in a Python source file.
type Issue struct {
	// File is the path of the analyzed file.
	File string `json:"file"`

	// Line is the 1-based line of the finding.
	Line int `json:"line"`

	// Column is the 0-based column of the finding.
	Column int `json:"column"`

	// Severity indicates how important this issue is.
	Severity Severity `json:"severity"`

	// RuleID is the unique identifier of the rule (e.g. "C001").
	RuleID string `json:"rule_id"`

	// Message is a human-readable description of the issue.
	Message string `json:"message"`

	// Suggestion describes how to fix the issue (optional).
	Suggestion string `json:"suggestion,omitempty"`

	// CodeSnippet is the source excerpt where the issue occurred (optional).
	// Populated by post-processing; detectors don't need to set this.
	CodeSnippet string `json:"code_snippet,omitempty"`

	// EndLine is the last line of a multi-line finding (0 = single line).
	EndLine int `json:"end_line,omitempty"`
}

// NewIssue creates an issue with the minimum required fields.
// Panics with *ValidationError when line is not positive or column is
// negative.
func NewIssue(file string, line, column int, severity Severity, ruleID, message string) Issue {
	if line < 1 {
		panic(&ValidationError{Field: "line", Value: line, Rule: ruleID})
	}
	if column < 0 {
		panic(&ValidationError{Field: "column", Value: column, Rule: ruleID})
	}
	return Issue{
		File:     file,
		Line:     line,
		Column:   column,
		Severity: severity,
		RuleID:   ruleID,
		Message:  message,
	}
}

// WithSuggestion adds a fix suggestion to the issue.
func (i Issue) WithSuggestion(s string) Issue {
	i.Suggestion = s
	return i
}

// WithSnippet adds a source code snippet to the issue.
func (i Issue) WithSnippet(code string) Issue {
	i.CodeSnippet = code
	return i
}

// WithEndLine marks the issue as spanning through end.
// Panics with *ValidationError when end precedes the start line.
func (i Issue) WithEndLine(end int) Issue {
	if end < i.Line {
		panic(&ValidationError{Field: "end_line", Value: end, Rule: i.RuleID})
	}
	i.EndLine = end
	return i
}

// Span returns the inclusive line range of the issue. Single-line issues
// span exactly their own line.
func (i Issue) Span() (start, end int) {
	if i.EndLine > 0 {
		return i.Line, i.EndLine
	}
	return i.Line, i.Line
}
