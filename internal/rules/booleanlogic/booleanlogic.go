// Package booleanlogic flags boolean expressions that obscure intent:
// long operator chains, redundant comparisons with boolean literals,
// guard-clause candidates, and negations that De Morgan's law
// simplifies.
package booleanlogic

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
)

// minGuardChain is the nesting level at which an if chain with a single
// early exit gets flagged.
const minGuardChain = 3

// Detector reports boolean logic findings (rules B001-B007).
type Detector struct{}

// New returns the boolean logic detector.
func New() *Detector {
	return &Detector{}
}

// Name implements rules.Detector.
func (*Detector) Name() string {
	return "boolean_logic"
}

// Enabled implements rules.Detector.
func (*Detector) Enabled(cfg *config.Config) bool {
	return cfg.BooleanLogic.Enabled
}

// Rules implements rules.Detector.
func (*Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:       "B001",
			Severity: rules.SeverityMedium,
			Summary:  "Complex boolean expression",
			Description: "A boolean expression chains more and/or operators than the " +
				"configured maximum. Long chains are hard to verify; name the " +
				"sub-expressions instead.",
		},
		{
			ID:          "B002",
			Severity:    rules.SeverityInfo,
			Summary:     "Redundant comparison with True",
			Description: "Comparing a boolean expression to True with == adds nothing.",
		},
		{
			ID:          "B003",
			Severity:    rules.SeverityInfo,
			Summary:     "Redundant comparison with False",
			Description: "Comparing to False with == reads worse than a plain 'not'.",
		},
		{
			ID:       "B004",
			Severity: rules.SeverityMedium,
			Summary:  "Identity comparison with a boolean literal",
			Description: "'is True' and 'is False' test object identity, which is an " +
				"implementation detail of the interpreter, not the value.",
		},
		{
			ID:       "B005",
			Severity: rules.SeverityMedium,
			Summary:  "Deeply nested early-exit conditionals",
			Description: "A chain of nested single-statement if blocks ending in a return " +
				"or raise inverts more readably as guard clauses.",
		},
		{
			ID:          "B006",
			Severity:    rules.SeverityInfo,
			Summary:     "Negated conjunction",
			Description: "'not (a and b)' is equivalent to 'not a or not b'.",
		},
		{
			ID:          "B007",
			Severity:    rules.SeverityInfo,
			Summary:     "Negated disjunction",
			Description: "'not (a or b)' is equivalent to 'not a and not b'.",
		},
	}
}

// Check implements rules.Detector.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	var issues []rules.Issue
	maxOps := in.Config.BooleanLogic.MaxBooleanOperators

	pysrc.Walk(in.Tree.Root(), func(n *sitter.Node) bool {
		if in.Suppressed(n) {
			return true
		}
		switch n.Type() {
		case pysrc.TypeBoolOp:
			if issue, ok := checkOperatorChain(in, n, maxOps); ok {
				issues = append(issues, issue)
			}
		case pysrc.TypeComparison:
			if issue, ok := checkBoolComparison(in, n); ok {
				issues = append(issues, issue)
			}
		case pysrc.TypeIf:
			if issue, ok := checkGuardChain(in, n); ok {
				issues = append(issues, issue)
			}
		case pysrc.TypeNotOp:
			if issue, ok := checkNegation(in, n); ok {
				issues = append(issues, issue)
			}
		}
		return true
	})

	return issues, nil
}

// checkOperatorChain counts the and/or operators of a whole boolean
// chain. Only the topmost boolean_operator of a chain reports, so one
// oversized expression yields one finding.
func checkOperatorChain(in *rules.Input, n *sitter.Node, maxOps int) (rules.Issue, bool) {
	parent := n.Parent()
	for parent != nil && parent.Type() == pysrc.TypeParenthesized {
		parent = parent.Parent()
	}
	if parent != nil && parent.Type() == pysrc.TypeBoolOp {
		return rules.Issue{}, false
	}

	count := 0
	pysrc.Walk(n, func(sub *sitter.Node) bool {
		if sub.Type() == pysrc.TypeBoolOp {
			count++
		}
		return true
	})
	if count <= maxOps {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityMedium, "B001",
		fmt.Sprintf("Complex boolean expression with %d operators (max %d)", count, maxOps)).
		WithSuggestion("Extract boolean sub-expressions to named variables for clarity")
	return issue, true
}

// checkBoolComparison flags == and is comparisons against the True and
// False literals. The first offending operator pair wins; chained
// comparisons with several offenses still produce one finding.
func checkBoolComparison(in *rules.Input, n *sitter.Node) (rules.Issue, bool) {
	operands, ops := pysrc.ComparisonParts(n, in.Source())
	if len(operands) < 2 {
		return rules.Issue{}, false
	}

	for i, op := range ops {
		if i+1 >= len(operands) {
			break
		}
		left, right := operands[i], operands[i+1]
		boolSide := left
		if !pysrc.IsBoolLiteral(boolSide) {
			boolSide = right
		}
		if !pysrc.IsBoolLiteral(boolSide) {
			continue
		}

		switch op {
		case "is", "is not":
			issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityMedium, "B004",
				"Using 'is' for boolean comparison").
				WithSuggestion("Use '==' for value comparison or use the boolean directly")
			return issue, true
		case "==":
			if boolSide.Type() == pysrc.TypeTrue {
				issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityInfo, "B002",
					"Redundant comparison with True").
					WithSuggestion("Remove '== True' and use the boolean expression directly")
				return issue, true
			}
			issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityInfo, "B003",
				"Redundant comparison with False").
				WithSuggestion("Use 'not expr' instead of 'expr == False'")
			return issue, true
		}
	}
	return rules.Issue{}, false
}

// checkGuardChain measures a chain of nested if statements where every
// body holds exactly one statement and the innermost is a return or
// raise. Chains of minGuardChain or more report at the head only.
func checkGuardChain(in *rules.Input, n *sitter.Node) (rules.Issue, bool) {
	if pysrc.EnclosingFunction(n) == nil {
		return rules.Issue{}, false
	}
	if isChainContinuation(n) {
		return rules.Issue{}, false
	}

	depth := guardChainDepth(n)
	if depth < minGuardChain {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityMedium, "B005",
		fmt.Sprintf("Deeply nested if statements (%d levels) with early exit", depth)).
		WithSuggestion("Use guard clauses with early returns to reduce nesting")
	return issue, true
}

// isChainContinuation reports whether the if statement is itself the
// sole statement of an enclosing if's body, meaning the chain head sits
// further out.
func isChainContinuation(n *sitter.Node) bool {
	block := n.Parent()
	if block == nil || block.Type() != pysrc.TypeBlock {
		return false
	}
	outer := block.Parent()
	if outer == nil || outer.Type() != pysrc.TypeIf {
		return false
	}
	return !hasAlternative(outer) && len(pysrc.BlockStatements(block)) == 1
}

func hasAlternative(ifNode *sitter.Node) bool {
	return pysrc.HasChildOfType(ifNode, pysrc.TypeElif) || pysrc.HasChildOfType(ifNode, pysrc.TypeElse)
}

// guardChainDepth walks down single-statement if bodies and returns the
// chain length when the innermost statement exits early, or 0.
func guardChainDepth(n *sitter.Node) int {
	depth := 0
	cur := n
	for {
		if hasAlternative(cur) {
			return 0
		}
		body := cur.ChildByFieldName("consequence")
		if body == nil {
			return 0
		}
		stmts := pysrc.BlockStatements(body)
		if len(stmts) != 1 {
			return 0
		}
		depth++

		only := stmts[0]
		switch only.Type() {
		case pysrc.TypeIf:
			cur = only
		case pysrc.TypeReturn, pysrc.TypeRaise:
			return depth
		default:
			return 0
		}
	}
}

// checkNegation flags not applied to a parenthesized and/or expression.
func checkNegation(in *rules.Input, n *sitter.Node) (rules.Issue, bool) {
	operand := pysrc.Unparen(n.ChildByFieldName("argument"))
	if operand == nil || operand.Type() != pysrc.TypeBoolOp {
		return rules.Issue{}, false
	}

	word := pysrc.BooleanOperator(operand, in.Source())
	var ruleID, suggestion string
	switch word {
	case "and":
		ruleID = "B006"
		suggestion = "Replace 'not (a and b)' with 'not a or not b'"
	case "or":
		ruleID = "B007"
		suggestion = "Replace 'not (a or b)' with 'not a and not b'"
	default:
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityInfo, ruleID,
		"Complex negation can be simplified using De Morgan's law").
		WithSuggestion(suggestion)
	return issue, true
}

func init() {
	rules.Register(New())
}
