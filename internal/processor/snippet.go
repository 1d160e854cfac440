package processor

import (
	"github.com/pyvet/pyvet/internal/rules"
)

// SnippetAttachment populates the CodeSnippet field of issues. This
// extracts the source lines for each issue location once, so reporters
// can display context without re-reading files.
type SnippetAttachment struct{}

// NewSnippetAttachment creates a new snippet attachment processor.
func NewSnippetAttachment() *SnippetAttachment {
	return &SnippetAttachment{}
}

// Name returns the processor's identifier.
func (p *SnippetAttachment) Name() string {
	return "snippet-attachment"
}

// Process attaches source snippets to issues. Issues that already carry
// a snippet, or whose file cannot be read, pass through unchanged.
func (p *SnippetAttachment) Process(issues []rules.Issue, ctx *Context) []rules.Issue {
	return transformIssues(issues, func(i rules.Issue) rules.Issue {
		if i.CodeSnippet != "" {
			return i
		}
		sm := ctx.GetSourceMap(i.File)
		if sm == nil {
			return i
		}
		start, end := i.Span()
		i.CodeSnippet = sm.Snippet(start-1, end-1)
		return i
	})
}
