package processor

import (
	"fmt"
	"path/filepath"

	"github.com/pyvet/pyvet/internal/rules"
)

// Deduplication removes duplicate issues. Two issues are duplicates when
// they share file, line, and rule ID; the first occurrence wins.
type Deduplication struct{}

// NewDeduplication creates a new deduplication processor.
func NewDeduplication() *Deduplication {
	return &Deduplication{}
}

// Name returns the processor's identifier.
func (p *Deduplication) Name() string {
	return "deduplication"
}

// Process removes duplicate issues.
func (p *Deduplication) Process(issues []rules.Issue, _ *Context) []rules.Issue {
	seen := make(map[string]bool)
	return filterIssues(issues, func(i rules.Issue) bool {
		// Key: file:line:rule (normalize path for cross-platform deduplication)
		key := fmt.Sprintf("%s:%d:%s", filepath.ToSlash(i.File), i.Line, i.RuleID)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}
