package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/rules"
)

func renderText(t *testing.T, result *analyzer.AnalysisResult, opts TextOptions) string {
	t.Helper()

	var buf bytes.Buffer
	r := NewTextReporter(&buf, opts)
	require.NoError(t, r.Report(result, ReportMetadata{RulesEnabled: 9}))
	return buf.String()
}

func TestTextReporter_GroupByFile(t *testing.T) {
	t.Parallel()

	out := renderText(t, sampleResult(), TextOptions{
		Color:      boolPtr(false),
		ShowSource: true,
		GroupBy:    "file",
	})

	assert.Contains(t, out, "src/app.py")
	assert.Contains(t, out, "ℹ [L004] 3:0")
	assert.Contains(t, out, "✗ [C001] 10:4")
	assert.Contains(t, out, "Function 'main' has cyclomatic complexity 15 (threshold: 10)")
	assert.Contains(t, out, "→ Break this function into smaller functions")
	assert.Contains(t, out, "    def main():")

	// Issues within a file render in line order.
	assert.Less(t, strings.Index(out, "[L004]"), strings.Index(out, "[C001]"))

	// Parse failures render under their file.
	assert.Contains(t, out, "✗ src/broken.py")
	assert.Contains(t, out, "  Parse error: Syntax error: invalid syntax at line 2")

	// Clean files stay silent outside the summary.
	assert.NotContains(t, out, "src/ok.py")

	assert.Contains(t, out, strings.Repeat("=", 70))
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Files analyzed: 3")
	assert.Contains(t, out, "Files with issues: 1")
	assert.Contains(t, out, "Files with parse errors: 1")
	assert.Contains(t, out, "Total issues: 2")
	assert.Contains(t, out, "Issues by severity:")
	assert.Contains(t, out, "HIGH: 1")
	assert.Contains(t, out, "LOW: 1")
	assert.NotContains(t, out, "MEDIUM:")
	assert.Contains(t, out, "⚠ High or medium severity issues found")
}

func TestTextReporter_GroupBySeverity(t *testing.T) {
	t.Parallel()

	out := renderText(t, sampleResult(), TextOptions{
		Color:      boolPtr(false),
		ShowSource: true,
		GroupBy:    "severity",
	})

	assert.Contains(t, out, "HIGH Severity Issues")
	assert.Contains(t, out, "LOW Severity Issues")
	assert.Less(t, strings.Index(out, "HIGH Severity Issues"), strings.Index(out, "LOW Severity Issues"))

	// Locations carry the file when grouping crosses files.
	assert.Contains(t, out, "✗ [C001] src/app.py:10:4")
	assert.Contains(t, out, "ℹ [L004] src/app.py:3:0")

	// Parse failures only show up in the summary counters here.
	assert.NotContains(t, out, "Parse error:")
	assert.Contains(t, out, "Files with parse errors: 1")
}

func TestTextReporter_ASCII(t *testing.T) {
	t.Parallel()

	out := renderText(t, sampleResult(), TextOptions{
		Color:      boolPtr(false),
		ShowSource: true,
		GroupBy:    "file",
		ASCII:      true,
	})

	assert.Contains(t, out, "X [C001] 10:4")
	assert.Contains(t, out, "i [L004] 3:0")
	assert.Contains(t, out, "> Break this function into smaller functions")
	assert.Contains(t, out, "! High or medium severity issues found")
	assert.NotContains(t, out, "✗")
	assert.NotContains(t, out, "→")
}

func TestTextReporter_HideSource(t *testing.T) {
	t.Parallel()

	out := renderText(t, sampleResult(), TextOptions{
		Color:      boolPtr(false),
		ShowSource: false,
		GroupBy:    "file",
	})

	assert.NotContains(t, out, "def main():")
	assert.Contains(t, out, "[C001]")
}

func TestTextReporter_MultilineSnippet(t *testing.T) {
	t.Parallel()

	result := analyzer.NewResult()
	result.Add(analyzer.FileAnalysis{
		FilePath:    "multi.py",
		LinesOfCode: 2,
		Issues: []rules.Issue{
			{
				File:        "multi.py",
				Line:        1,
				Severity:    rules.SeverityMedium,
				RuleID:      "D001",
				Message:     "Duplicate code block",
				CodeSnippet: "def f():\n    return 1",
			},
		},
	})

	out := renderText(t, result, TextOptions{
		Color:      boolPtr(false),
		ShowSource: true,
	})

	assert.Contains(t, out, "    def f():\n        return 1\n")
}

func TestTextReporter_Empty(t *testing.T) {
	t.Parallel()

	out := renderText(t, analyzer.NewResult(), TextOptions{Color: boolPtr(false)})

	assert.Contains(t, out, "Files analyzed: 0")
	assert.Contains(t, out, "Total issues: 0")
	assert.NotContains(t, out, "Files with parse errors:")
	assert.NotContains(t, out, "Issues by severity:")
	assert.NotContains(t, out, "High or medium severity issues found")
}

func TestTextReporter_NoAlertBelowMedium(t *testing.T) {
	t.Parallel()

	result := analyzer.NewResult()
	result.Add(analyzer.FileAnalysis{
		FilePath:    "low.py",
		LinesOfCode: 1,
		Issues: []rules.Issue{
			{File: "low.py", Line: 1, Severity: rules.SeverityLow, RuleID: "P002", Message: "Consider a set"},
		},
	})

	out := renderText(t, result, TextOptions{Color: boolPtr(false)})

	assert.Contains(t, out, "Total issues: 1")
	assert.NotContains(t, out, "High or medium severity issues found")
}

func TestNewTextReporter_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts TextOptions
	}{
		{"default", DefaultTextOptions()},
		{"color on", TextOptions{Color: boolPtr(true), SyntaxHighlight: true}},
		{"color off", TextOptions{Color: boolPtr(false)}},
		{"custom style", TextOptions{Color: boolPtr(true), SyntaxHighlight: true, ChromaStyle: "dracula"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			r := NewTextReporter(&buf, tt.opts)
			require.NotNil(t, r)
			assert.NoError(t, r.Report(sampleResult(), ReportMetadata{}))
		})
	}
}

func TestSeverityMarkers(t *testing.T) {
	t.Parallel()

	unicode := &TextReporter{}
	ascii := &TextReporter{opts: TextOptions{ASCII: true}}

	tests := []struct {
		sev         rules.Severity
		icon, plain string
	}{
		{rules.SeverityHigh, "✗", "X"},
		{rules.SeverityMedium, "⚠", "!"},
		{rules.SeverityLow, "ℹ", "i"},
		{rules.SeverityInfo, "→", ">"},
		{rules.Severity(99), "•", "*"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.icon, unicode.icon(tt.sev))
		assert.Equal(t, tt.plain, ascii.icon(tt.sev))
	}
}
