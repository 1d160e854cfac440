package processor

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pyvet/pyvet/internal/rules"
)

// Sorting ensures stable, deterministic output ordering.
// Order: file path, then line, then column, then rule ID.
// This ensures identical output across runs and platforms.
type Sorting struct{}

// NewSorting creates a new sorting processor.
func NewSorting() *Sorting {
	return &Sorting{}
}

// Name returns the processor's identifier.
func (p *Sorting) Name() string {
	return "sorting"
}

// Process sorts issues in a stable order without touching the input slice.
func (p *Sorting) Process(issues []rules.Issue, _ *Context) []rules.Issue {
	sorted := slices.Clone(issues)
	slices.SortStableFunc(sorted, compareIssues)
	return sorted
}

// compareIssues orders issues by file, line, column, then rule ID.
func compareIssues(a, b rules.Issue) int {
	if c := strings.Compare(a.File, b.File); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Line, b.Line); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Column, b.Column); c != 0 {
		return c
	}
	return strings.Compare(a.RuleID, b.RuleID)
}
