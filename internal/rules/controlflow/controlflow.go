// Package controlflow flags else and elif clauses that follow a branch
// which always leaves the block, where removing the clause flattens the
// code without changing behavior.
package controlflow

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
)

// Detector reports unnecessary else/elif findings (rules R002-R005).
type Detector struct{}

// New returns the control flow detector.
func New() *Detector {
	return &Detector{}
}

// Name implements rules.Detector.
func (*Detector) Name() string {
	return "control_flow"
}

// Enabled implements rules.Detector.
func (*Detector) Enabled(cfg *config.Config) bool {
	return cfg.ControlFlow.Enabled
}

// Rules implements rules.Detector.
func (*Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:          "R002",
			Severity:    rules.SeverityMedium,
			Summary:     "Unnecessary else after return",
			Description: "The branch above always returns, so the else only adds indentation.",
		},
		{
			ID:          "R003",
			Severity:    rules.SeverityMedium,
			Summary:     "Unnecessary else after raise",
			Description: "The branch above always raises, so the else only adds indentation.",
		},
		{
			ID:          "R004",
			Severity:    rules.SeverityMedium,
			Summary:     "Unnecessary else after break",
			Description: "The branch above always breaks, so the else only adds indentation.",
		},
		{
			ID:          "R005",
			Severity:    rules.SeverityMedium,
			Summary:     "Unnecessary else after continue",
			Description: "The branch above always continues, so the else only adds indentation.",
		},
	}
}

// terminatorRules maps a terminating statement keyword to its rule.
var terminatorRules = map[string]string{
	"return":   "R002",
	"raise":    "R003",
	"break":    "R004",
	"continue": "R005",
}

// Check implements rules.Detector.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	var issues []rules.Issue

	pysrc.Walk(in.Tree.Root(), func(n *sitter.Node) bool {
		if n.Type() != pysrc.TypeIf {
			return true
		}

		alts := pysrc.IfAlternatives(n)
		if len(alts) == 0 {
			return true
		}

		// The base if, then each elif treated as the head of the
		// remaining chain.
		if !in.Suppressed(n) {
			if issue, ok := checkBranch(in, n, n.ChildByFieldName("consequence"), alts); ok {
				issues = append(issues, issue)
			}
		}
		for i, alt := range alts {
			if alt.Type() != pysrc.TypeElif || in.Suppressed(alt) {
				continue
			}
			rest := alts[i+1:]
			if issue, ok := checkBranch(in, alt, alt.ChildByFieldName("consequence"), rest); ok {
				issues = append(issues, issue)
			}
		}
		return true
	})

	return issues, nil
}

// checkBranch reports when a branch body always terminates and a clause
// follows it anyway.
func checkBranch(in *rules.Input, posNode, body *sitter.Node, rest []*sitter.Node) (rules.Issue, bool) {
	if len(rest) == 0 || body == nil {
		return rules.Issue{}, false
	}
	stmts := pysrc.BlockStatements(body)
	if !alwaysTerminates(stmts) {
		return rules.Issue{}, false
	}

	term := terminatorOf(stmts)
	ruleID, known := terminatorRules[term]
	if !known {
		return rules.Issue{}, false
	}

	clause := "else"
	if rest[0].Type() == pysrc.TypeElif {
		clause = "elif"
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(posNode), pysrc.Column(posNode), rules.SeverityMedium, ruleID,
		fmt.Sprintf("Unnecessary '%s' after '%s' statement", clause, term)).
		WithSuggestion(fmt.Sprintf(
			"Remove '%s' and unindent its body since the preceding code always executes '%s'",
			clause, term))
	return issue, true
}

// alwaysTerminates reports whether a statement list always leaves the
// enclosing block, judged by its final statement.
func alwaysTerminates(stmts []*sitter.Node) bool {
	if len(stmts) == 0 {
		return false
	}
	last := stmts[len(stmts)-1]

	switch last.Type() {
	case pysrc.TypeReturn, pysrc.TypeRaise, pysrc.TypeBreak, pysrc.TypeContinue:
		return true

	case pysrc.TypeIf:
		// Every path needs covering, so an else clause is required.
		alts := pysrc.IfAlternatives(last)
		hasElse := false
		for _, alt := range alts {
			if alt.Type() == pysrc.TypeElse {
				hasElse = true
			}
		}
		if !hasElse {
			return false
		}
		if !alwaysTerminates(pysrc.BlockStatements(last.ChildByFieldName("consequence"))) {
			return false
		}
		for _, alt := range alts {
			if !alwaysTerminates(pysrc.BlockStatements(clauseBody(alt))) {
				return false
			}
		}
		return true

	case pysrc.TypeTry:
		// Finally does not affect termination; body, every handler,
		// and any else clause must all terminate.
		body := last.ChildByFieldName("body")
		if body == nil || !alwaysTerminates(pysrc.BlockStatements(body)) {
			return false
		}
		for i := 0; i < int(last.NamedChildCount()); i++ {
			child := last.NamedChild(i)
			switch child.Type() {
			case pysrc.TypeExcept:
				if !alwaysTerminates(pysrc.BlockStatements(clauseBody(child))) {
					return false
				}
			case pysrc.TypeElse:
				if !alwaysTerminates(pysrc.BlockStatements(clauseBody(child))) {
					return false
				}
			}
		}
		return true
	}
	return false
}

// clauseBody returns the block of an elif, else, or except clause.
func clauseBody(clause *sitter.Node) *sitter.Node {
	if body := clause.ChildByFieldName("body"); body != nil {
		return body
	}
	if body := clause.ChildByFieldName("consequence"); body != nil {
		return body
	}
	return pysrc.FirstChildOfType(clause, pysrc.TypeBlock)
}

// terminatorOf names the statement that ends the list, descending into
// a trailing if's own body. Callers check termination first.
func terminatorOf(stmts []*sitter.Node) string {
	if len(stmts) == 0 {
		return ""
	}
	last := stmts[len(stmts)-1]

	switch last.Type() {
	case pysrc.TypeReturn:
		return "return"
	case pysrc.TypeRaise:
		return "raise"
	case pysrc.TypeBreak:
		return "break"
	case pysrc.TypeContinue:
		return "continue"
	case pysrc.TypeIf:
		return terminatorOf(pysrc.BlockStatements(last.ChildByFieldName("consequence")))
	}
	return ""
}

func init() {
	rules.Register(New())
}
