package processor

import (
	"github.com/pyvet/pyvet/internal/rules"
)

// MinSeverityFilter drops issues below the configured minimum severity
// (output.min_severity). An unparseable threshold keeps everything.
type MinSeverityFilter struct{}

// NewMinSeverityFilter creates a new minimum severity filter.
func NewMinSeverityFilter() *MinSeverityFilter {
	return &MinSeverityFilter{}
}

// Name returns the processor's identifier.
func (p *MinSeverityFilter) Name() string {
	return "min-severity"
}

// Process filters out issues whose severity is below the threshold.
func (p *MinSeverityFilter) Process(issues []rules.Issue, ctx *Context) []rules.Issue {
	min, err := rules.ParseSeverity(ctx.Config.Output.MinSeverity)
	if err != nil || min == rules.SeverityInfo {
		return issues
	}
	return filterIssues(issues, func(i rules.Issue) bool {
		return i.Severity.IsAtLeast(min)
	})
}
