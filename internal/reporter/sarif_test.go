package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/rules"
	_ "github.com/pyvet/pyvet/internal/rules/all"
)

func asMap(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected map, got %T", v)
	return m
}

func asSlice(t *testing.T, v any) []any {
	t.Helper()
	s, ok := v.([]any)
	require.True(t, ok, "expected slice, got %T", v)
	return s
}

func renderSARIF(t *testing.T, result *analyzer.AnalysisResult, name, version, uri string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	r := NewSARIFReporter(&buf, name, version, uri)
	require.NoError(t, r.Report(result, ReportMetadata{}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc), "invalid SARIF output: %s", buf.String())
	return doc
}

func TestSARIFReporter(t *testing.T) {
	t.Parallel()

	doc := renderSARIF(t, sampleResult(), "pyvet", "1.2.3", "https://github.com/pyvet/pyvet")

	assert.NotNil(t, doc["$schema"])
	assert.Equal(t, "2.1.0", doc["version"])

	runs := asSlice(t, doc["runs"])
	require.Len(t, runs, 1)
	run := asMap(t, runs[0])

	driver := asMap(t, asMap(t, run["tool"])["driver"])
	assert.Equal(t, "pyvet", driver["name"])
	assert.Equal(t, "1.2.3", driver["version"])
	assert.Equal(t, "https://github.com/pyvet/pyvet", driver["informationUri"])

	// Rule definitions are sorted and carry registry descriptions.
	ruleDefs := asSlice(t, driver["rules"])
	require.Len(t, ruleDefs, 2)
	first := asMap(t, ruleDefs[0])
	assert.Equal(t, "C001", first["id"])
	short := asMap(t, first["shortDescription"])
	assert.Equal(t, "Function too long", short["text"])
	assert.Equal(t, "L004", asMap(t, ruleDefs[1])["id"])

	// Only files with issues become artifacts.
	artifacts := asSlice(t, run["artifacts"])
	require.Len(t, artifacts, 1)
	location := asMap(t, asMap(t, artifacts[0])["location"])
	assert.Equal(t, "src/app.py", location["uri"])

	// Results keep issue order; parse failures contribute none.
	results := asSlice(t, run["results"])
	require.Len(t, results, 2)

	res := asMap(t, results[0])
	assert.Equal(t, "C001", res["ruleId"])
	assert.Equal(t, "error", res["level"])
	assert.Equal(t, "Function 'main' has cyclomatic complexity 15 (threshold: 10)",
		asMap(t, res["message"])["text"])

	region := asMap(t, asMap(t, asMap(t, asSlice(t, res["locations"])[0])["physicalLocation"])["region"])
	assert.Equal(t, float64(10), region["startLine"])
	// Column 4 (0-based) maps to SARIF column 5 (1-based).
	assert.Equal(t, float64(5), region["startColumn"])
	assert.Equal(t, "def main():", asMap(t, region["snippet"])["text"])

	res2 := asMap(t, results[1])
	assert.Equal(t, "L004", res2["ruleId"])
	assert.Equal(t, "note", res2["level"])
	region2 := asMap(t, asMap(t, asMap(t, asSlice(t, res2["locations"])[0])["physicalLocation"])["region"])
	// Column 0 (0-based) maps to SARIF column 1 (1-based).
	assert.Equal(t, float64(1), region2["startColumn"])
}

func TestSARIFReporter_SeverityMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity rules.Severity
		expected string
	}{
		{rules.SeverityHigh, "error"},
		{rules.SeverityMedium, "warning"},
		{rules.SeverityLow, "note"},
		{rules.SeverityInfo, "note"},
		{rules.Severity(99), "warning"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, severityToSARIFLevel(tt.severity))
	}
}

func TestSARIFReporter_Empty(t *testing.T) {
	t.Parallel()

	doc := renderSARIF(t, analyzer.NewResult(), "pyvet", "dev", "")

	runs := asSlice(t, doc["runs"])
	require.Len(t, runs, 1)
	run := asMap(t, runs[0])
	assert.Empty(t, asSlice(t, run["results"]))
}

func TestSARIFReporter_Defaults(t *testing.T) {
	t.Parallel()

	doc := renderSARIF(t, analyzer.NewResult(), "", "", "")

	runs := asSlice(t, doc["runs"])
	require.Len(t, runs, 1)
	driver := asMap(t, asMap(t, asMap(t, runs[0])["tool"])["driver"])
	assert.Equal(t, "pyvet", driver["name"])
	assert.Equal(t, "https://github.com/pyvet/pyvet", driver["informationUri"])
}

func TestSARIFReporter_EndLineRange(t *testing.T) {
	t.Parallel()

	result := analyzer.NewResult()
	result.Add(analyzer.FileAnalysis{
		FilePath:    "dup.py",
		LinesOfCode: 20,
		Issues: []rules.Issue{
			{
				File:     "dup.py",
				Line:     5,
				Column:   0,
				Severity: rules.SeverityMedium,
				RuleID:   "D001",
				Message:  "Duplicate code block",
				EndLine:  9,
			},
		},
	})

	doc := renderSARIF(t, result, "pyvet", "dev", "")

	runs := asSlice(t, doc["runs"])
	results := asSlice(t, asMap(t, runs[0])["results"])
	require.Len(t, results, 1)

	region := asMap(t, asMap(t, asMap(t, asSlice(t, asMap(t, results[0])["locations"])[0])["physicalLocation"])["region"])
	assert.Equal(t, float64(5), region["startLine"])
	assert.Equal(t, float64(9), region["endLine"])
}
