// Package sourcemap provides line-indexed access to source code for
// snippet extraction and line-based lookups.
//
// All line numbers in this package are 0-based; callers working with
// 1-based diagnostic positions convert at the boundary.
package sourcemap

import (
	"bytes"
	"strings"
)

// SourceMap provides efficient access to source code by line.
type SourceMap struct {
	// source is the raw source content.
	source []byte

	// lines are the individual lines (without line endings).
	lines []string
}

// New creates a SourceMap from source content.
// Lines are split on \n (handles both \n and \r\n).
func New(source []byte) *SourceMap {
	rawLines := bytes.Split(source, []byte{'\n'})
	lines := make([]string, len(rawLines))
	for i, line := range rawLines {
		// Trim \r from line endings (for Windows CRLF)
		lines[i] = strings.TrimSuffix(string(line), "\r")
	}

	return &SourceMap{
		source: source,
		lines:  lines,
	}
}

// Lines returns all lines (without line endings).
// The returned slice should not be modified.
func (sm *SourceMap) Lines() []string {
	return sm.lines
}

// LineCount returns the total number of lines.
func (sm *SourceMap) LineCount() int {
	return len(sm.lines)
}

// Line returns the text of a specific line (0-based).
// Returns empty string if line is out of range.
func (sm *SourceMap) Line(line int) string {
	if line < 0 || line >= len(sm.lines) {
		return ""
	}
	return sm.lines[line]
}

// Snippet extracts a range of lines as a single string.
// Both startLine and endLine are 0-based and inclusive.
// Returns empty string if range is invalid.
//
// Example:
//
//	sm.Snippet(2, 4) // Returns lines 2, 3, and 4 joined with newlines
func (sm *SourceMap) Snippet(startLine, endLine int) string {
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sm.lines) {
		endLine = len(sm.lines) - 1
	}
	if startLine > endLine || startLine >= len(sm.lines) {
		return ""
	}

	return strings.Join(sm.lines[startLine:endLine+1], "\n")
}

// SnippetAround extracts context lines around a target line.
// Returns (contextBefore + target + contextAfter) lines as a single string.
// The before/after counts are clamped to available lines.
//
// Example:
//
//	sm.SnippetAround(5, 2, 2) // Returns lines 3-7 (5 ± 2)
func (sm *SourceMap) SnippetAround(line, before, after int) string {
	startLine := line - before
	endLine := line + after
	return sm.Snippet(startLine, endLine)
}

// Source returns the raw source content.
// The returned slice should not be modified.
func (sm *SourceMap) Source() []byte {
	return sm.source
}
