package processor

import (
	"path/filepath"

	"github.com/pyvet/pyvet/internal/rules"
)

// PathNormalization rewrites issue file paths to forward slashes so
// reports are byte-identical across platforms.
type PathNormalization struct{}

// NewPathNormalization creates a new path normalization processor.
func NewPathNormalization() *PathNormalization {
	return &PathNormalization{}
}

// Name returns the processor's identifier.
func (p *PathNormalization) Name() string {
	return "path-normalization"
}

// Process normalizes the File field of every issue.
func (p *PathNormalization) Process(issues []rules.Issue, _ *Context) []rules.Issue {
	return transformIssues(issues, func(i rules.Issue) rules.Issue {
		i.File = filepath.ToSlash(i.File)
		return i
	})
}
