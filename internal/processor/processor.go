// Package processor provides a composable issue processing pipeline.
//
// The processor chain pattern is inspired by golangci-lint's approach:
// issues flow through a sequence of processors, each transforming the
// slice (filtering, modifying, or augmenting).
//
// Standard pipeline order:
//  1. PathNormalization - Cross-platform path consistency
//  2. MinSeverityFilter - Drop issues below output.min_severity
//  3. Deduplication - Remove duplicate issues
//  4. Sorting - Stable output ordering
//  5. SnippetAttachment - Populate CodeSnippet for reporters
package processor

import (
	"os"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/rules"
	"github.com/pyvet/pyvet/internal/sourcemap"
)

// Processor transforms a slice of issues.
// Implementations should be stateless where possible, using Context for shared state.
type Processor interface {
	// Name returns the processor's identifier (for debugging/logging).
	Name() string

	// Process applies the processor's logic to issues.
	// Returns the transformed slice (may be same, filtered, or modified).
	// Must not modify the input slice; return a new slice if filtering.
	Process(issues []rules.Issue, ctx *Context) []rules.Issue
}

// Context provides shared state for processors.
// Populated once before running the chain, then passed to each processor.
type Context struct {
	// Config is the loaded configuration.
	Config *config.Config

	// FileSources maps file paths to raw content for snippet extraction.
	// Files not present are read from disk on first use.
	FileSources map[string][]byte

	// sourceMaps caches parsed source maps by file path. Negative entries
	// stop repeated reads of unreadable files.
	sourceMaps map[string]*sourcemap.SourceMap
}

// NewContext creates a new processor context.
func NewContext(cfg *config.Config, fileSources map[string][]byte) *Context {
	return &Context{
		Config:      cfg,
		FileSources: fileSources,
		sourceMaps:  make(map[string]*sourcemap.SourceMap),
	}
}

// GetSourceMap returns the source map for a file, reading the file on
// first access when its content was not provided up front. Returns nil
// when the file cannot be read.
func (ctx *Context) GetSourceMap(file string) *sourcemap.SourceMap {
	if sm, ok := ctx.sourceMaps[file]; ok {
		return sm
	}
	source, ok := ctx.FileSources[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err != nil {
			ctx.sourceMaps[file] = nil
			return nil
		}
		source = data
	}
	sm := sourcemap.New(source)
	ctx.sourceMaps[file] = sm
	return sm
}

// Chain runs processors in sequence.
type Chain struct {
	processors []Processor
}

// NewChain creates a new processor chain.
func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// DefaultChain builds the standard pipeline for the given configuration.
func DefaultChain(cfg *config.Config) *Chain {
	processors := []Processor{
		NewPathNormalization(),
		NewMinSeverityFilter(),
		NewDeduplication(),
		NewSorting(),
	}
	if cfg.Output.ShowSource {
		processors = append(processors, NewSnippetAttachment())
	}
	return NewChain(processors...)
}

// Process runs all processors in sequence.
func (c *Chain) Process(issues []rules.Issue, ctx *Context) []rules.Issue {
	for _, p := range c.processors {
		issues = p.Process(issues, ctx)
	}
	return issues
}

// ProcessResult applies the chain to every file of an analysis result,
// in place. File order is untouched; callers use SortByPath for stable
// file ordering.
func (c *Chain) ProcessResult(result *analyzer.AnalysisResult, ctx *Context) {
	for i := range result.Files {
		result.Files[i].Issues = c.Process(result.Files[i].Issues, ctx)
	}
}

// filterIssues is a helper for processors that filter issues.
// It returns a new slice containing only issues where keep() returns true.
func filterIssues(issues []rules.Issue, keep func(i rules.Issue) bool) []rules.Issue {
	result := make([]rules.Issue, 0, len(issues))
	for _, i := range issues {
		if keep(i) {
			result = append(result, i)
		}
	}
	return result
}

// transformIssues is a helper for processors that modify issues.
// It returns a new slice with each issue transformed by transform().
func transformIssues(issues []rules.Issue, transform func(i rules.Issue) rules.Issue) []rules.Issue {
	result := make([]rules.Issue, len(issues))
	for i, issue := range issues {
		result[i] = transform(issue)
	}
	return result
}
