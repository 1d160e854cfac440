// Package directive handles inline suppression comments in Python source.
//
// Two markers are recognized: "# pyvet: ignore" and the conventional
// "# noqa". A marker anywhere on a line suppresses findings attached to
// that line (or, for detectors that look upward, nearby lines). Matching
// is plain substring containment, so a marker inside a string literal also
// counts; that trade-off keeps the scan trivial and predictable.
package directive

import "strings"

// Markers recognized as suppression directives.
var markers = []string{
	"# pyvet: ignore",
	"# noqa",
}

// Table records which source lines carry a suppression marker.
// It is built once per file and shared by all detectors.
type Table struct {
	marked []bool // index 0 = line 1
}

// Build scans the given source lines and returns the suppression table.
func Build(lines []string) *Table {
	marked := make([]bool, len(lines))
	for i, line := range lines {
		for _, m := range markers {
			if strings.Contains(line, m) {
				marked[i] = true
				break
			}
		}
	}
	return &Table{marked: marked}
}

// Marked reports whether the given 1-based line carries a marker.
// Out-of-range lines are never marked.
func (t *Table) Marked(line int) bool {
	if line < 1 || line > len(t.marked) {
		return false
	}
	return t.marked[line-1]
}

// MarkedNear reports whether line or any of the lookback lines above it
// carries a marker. MarkedNear(n, 0) is equivalent to Marked(n).
func (t *Table) MarkedNear(line, lookback int) bool {
	for l := line - lookback; l <= line; l++ {
		if t.Marked(l) {
			return true
		}
	}
	return false
}

// Count returns how many lines carry a marker.
func (t *Table) Count() int {
	n := 0
	for _, m := range t.marked {
		if m {
			n++
		}
	}
	return n
}
