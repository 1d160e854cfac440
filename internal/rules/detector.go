package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/directive"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/sourcemap"
)

// Input contains everything a detector needs to check one Python file.
//
// The analyzer guarantees Tree is non-nil and syntactically valid when
// Check is called. If parsing fails, the analyzer records the parse error
// and never invokes detectors for that file.
//
// IMPORTANT: Input is read-only and shared by all detectors for the file.
// Detectors must not mutate any field. This prevents hidden coupling
// between detectors.
type Input struct {
	// FilePath is the path of the file being analyzed.
	FilePath string

	// Tree is the parsed Python syntax tree (guaranteed non-nil).
	Tree *pysrc.Tree

	// Map provides line-indexed access to the source.
	Map *sourcemap.SourceMap

	// Suppressions is the per-line suppression marker table.
	Suppressions *directive.Table

	// Config is the full immutable analyzer configuration.
	Config *config.Config
}

// Source returns the raw source bytes.
func (in *Input) Source() []byte {
	return in.Tree.Source()
}

// SourceLine returns the text of a 1-based line, or "" when out of range.
func (in *Input) SourceLine(line int) string {
	return in.Map.Line(line - 1)
}

// Snippet returns the inclusive 1-based line range as a single string,
// clamped to the file; "" when the range is invalid.
func (in *Input) Snippet(startLine, endLine int) string {
	return in.Map.Snippet(startLine-1, endLine-1)
}

// Suppressed reports whether a node is silenced by a suppression marker
// on its own line or the line directly above.
func (in *Input) Suppressed(n *sitter.Node) bool {
	return in.Suppressions.MarkedNear(pysrc.Line(n), 1)
}

// RuleMetadata describes one rule ID a detector can emit.
type RuleMetadata struct {
	// ID is the unique rule identifier (e.g. "C001").
	ID string `json:"id"`

	// Severity is the severity issues under this ID carry.
	Severity Severity `json:"severity"`

	// Summary is a short human-readable rule name.
	Summary string `json:"summary"`

	// Description explains what the rule checks.
	Description string `json:"description"`
}

// Detector is one analysis family (complexity, duplication, loops, ...).
// A detector may emit issues under several rule IDs.
type Detector interface {
	// Name is the detector's identifier and config section key,
	// e.g. "complexity" or "boolean_logic".
	Name() string

	// Rules returns metadata for every rule ID this detector can emit,
	// ordered by ID.
	Rules() []RuleMetadata

	// Enabled reports whether this detector should run under the given
	// configuration.
	Enabled(cfg *config.Config) bool

	// Check analyzes one file and returns its findings. Issues returned
	// together with a non-nil error are still reported; the error marks
	// the detector as failed for diagnostics.
	Check(in *Input) ([]Issue, error)
}
