// Package reporter provides output formatters for analysis results.
//
// The package supports multiple output formats:
//   - text: Human-readable terminal output with colors and syntax highlighting
//   - json: Machine-readable JSON output
//   - sarif: Static Analysis Results Interchange Format for CI/CD integration
package reporter

import (
	"fmt"
	"io"
	"os"

	"github.com/pyvet/pyvet/internal/analyzer"
)

// Default SARIF tool information.
const (
	defaultToolName = "pyvet"
	defaultToolURI  = "https://github.com/pyvet/pyvet"
)

// ReportMetadata carries run context the result itself does not hold.
type ReportMetadata struct {
	// RulesEnabled is the number of rule IDs the enabled detectors can emit.
	RulesEnabled int
}

// Reporter formats and writes an analysis result.
type Reporter interface {
	// Report writes the result to the configured output. Files render in
	// the order the result holds them; callers sort beforehand.
	Report(result *analyzer.AnalysisResult, metadata ReportMetadata) error
}

// Format represents an output format type.
type Format string

const (
	// FormatText is human-readable terminal output.
	FormatText Format = "text"
	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatSARIF is Static Analysis Results Interchange Format.
	FormatSARIF Format = "sarif"
)

// ParseFormat parses a format string into a Format type.
// Returns an error if the format is unknown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("unknown format: %q (valid: text, json, sarif)", s)
	}
}

// Options configures reporter creation.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Writer is the output destination.
	Writer io.Writer

	// Color enables/disables colored output (text format only).
	// nil means auto-detect.
	Color *bool

	// ShowSource enables source code snippets (text format only).
	ShowSource bool

	// GroupBy selects text output grouping: "file" or "severity".
	GroupBy string

	// ToolVersion is included in SARIF output.
	ToolVersion string

	// ToolName is the tool name for SARIF output.
	ToolName string

	// ToolURI is the tool information URI for SARIF output.
	ToolURI string
}

// DefaultOptions returns sensible defaults for reporter options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		Color:       nil, // auto-detect
		ShowSource:  true,
		GroupBy:     "file",
		ToolName:    defaultToolName,
		ToolURI:     defaultToolURI,
		ToolVersion: "dev",
	}
}

// New creates a reporter based on the format specified in options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch opts.Format {
	case FormatText, "":
		return NewTextReporter(opts.Writer, TextOptions{
			Color: opts.Color,
			// Highlight when color is auto-detected (nil) or explicitly on.
			SyntaxHighlight: opts.Color == nil || *opts.Color,
			ShowSource:      opts.ShowSource,
			GroupBy:         opts.GroupBy,
		}), nil

	case FormatJSON:
		return NewJSONReporter(opts.Writer), nil

	case FormatSARIF:
		return NewSARIFReporter(opts.Writer, opts.ToolName, opts.ToolVersion, opts.ToolURI), nil

	default:
		return nil, fmt.Errorf("unknown format: %q", opts.Format)
	}
}

// GetWriter returns an io.Writer for the given output path.
// Supports "stdout" (also "-" or empty), "stderr", or file paths.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "-", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return f, f.Close, nil
	}
}
