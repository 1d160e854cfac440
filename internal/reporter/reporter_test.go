package reporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/rules"
)

func boolPtr(b bool) *bool { return &b }

// sampleResult builds a result with one noisy file, one parse failure
// and one clean file.
func sampleResult() *analyzer.AnalysisResult {
	result := analyzer.NewResult()
	result.Add(analyzer.FileAnalysis{
		FilePath:    "src/app.py",
		LinesOfCode: 42,
		Issues: []rules.Issue{
			{
				File:        "src/app.py",
				Line:        10,
				Column:      4,
				Severity:    rules.SeverityHigh,
				RuleID:      "C001",
				Message:     "Function 'main' has cyclomatic complexity 15 (threshold: 10)",
				Suggestion:  "Break this function into smaller functions",
				CodeSnippet: "def main():",
			},
			{
				File:     "src/app.py",
				Line:     3,
				Column:   0,
				Severity: rules.SeverityLow,
				RuleID:   "L004",
				Message:  "Loop can be replaced with a list comprehension",
			},
		},
	})
	result.Add(analyzer.FileAnalysis{
		FilePath:   "src/broken.py",
		ParseError: "Syntax error: invalid syntax at line 2",
	})
	result.Add(analyzer.FileAnalysis{
		FilePath:    "src/ok.py",
		LinesOfCode: 5,
	})
	return result
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"sarif", FormatSARIF, false},
		{"xml", "", true},
		{"TEXT", "", true},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Dispatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	tests := []struct {
		format Format
		want   any
	}{
		{FormatText, &TextReporter{}},
		{FormatJSON, &JSONReporter{}},
		{FormatSARIF, &SARIFReporter{}},
	}

	for _, tt := range tests {
		opts := DefaultOptions()
		opts.Format = tt.format
		opts.Writer = &buf

		r, err := New(opts)
		require.NoError(t, err)
		assert.IsType(t, tt.want, r)
	}

	opts := DefaultOptions()
	opts.Format = Format("csv")
	opts.Writer = &buf
	_, err := New(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, FormatText, opts.Format)
	assert.True(t, opts.ShowSource)
	assert.Equal(t, "file", opts.GroupBy)
	assert.Equal(t, "pyvet", opts.ToolName)
	assert.Nil(t, opts.Color)
}

func TestGetWriter(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"stdout", "-", ""} {
		w, closeFn, err := GetWriter(path)
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, w)
		require.NoError(t, closeFn())
	}

	w, closeFn, err := GetWriter("stderr")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
	require.NoError(t, closeFn())
}

func TestGetWriter_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.json")
	w, closeFn, err := GetWriter(path)
	require.NoError(t, err)

	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestGetWriter_CreateError(t *testing.T) {
	t.Parallel()

	_, _, err := GetWriter(filepath.Join(t.TempDir(), "missing", "report.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}
