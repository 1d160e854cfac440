// Package comparisons flags non-idiomatic comparison patterns:
// equality chains that want the in operator, comparisons that can be
// chained, == against singletons, and type() equality checks.
package comparisons

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
)

// chainableOps are the operators R012 can merge into one chained
// comparison. Identity and membership operators do not chain.
var chainableOps = map[string]bool{
	"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true,
}

// Detector reports comparison findings (rules R011, R012, R014, R015).
type Detector struct{}

// New returns the comparisons detector.
func New() *Detector {
	return &Detector{}
}

// Name implements rules.Detector.
func (*Detector) Name() string {
	return "comparisons"
}

// Enabled implements rules.Detector.
func (*Detector) Enabled(cfg *config.Config) bool {
	return cfg.Comparisons.Enabled
}

// Rules implements rules.Detector.
func (*Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:          "R011",
			Severity:    rules.SeverityLow,
			Summary:     "Equality chain instead of 'in'",
			Description: "x == a or x == b compares the same value repeatedly; membership says it once.",
		},
		{
			ID:          "R012",
			Severity:    rules.SeverityLow,
			Summary:     "Chainable comparison",
			Description: "a < b and b < c shares an operand and chains to a < b < c.",
		},
		{
			ID:       "R014",
			Severity: rules.SeverityMedium,
			Summary:  "Singleton comparison",
			Description: "None wants identity checks; True and False want no comparison " +
				"at all. Matches pylint's singleton-comparison checker.",
		},
		{
			ID:          "R015",
			Severity:    rules.SeverityMedium,
			Summary:     "type() equality check",
			Description: "type(x) == T ignores inheritance; isinstance() is the idiomatic test.",
		},
	}
}

// Check implements rules.Detector.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	var issues []rules.Issue
	src := in.Source()

	pysrc.Walk(in.Tree.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case pysrc.TypeBoolOp:
			if in.Suppressed(n) || !isChainHead(n, src) {
				return true
			}
			word := pysrc.BooleanOperator(n, src)
			leaves := flattenChain(n, word, src)
			switch word {
			case "or":
				if issue, ok := checkMembershipChain(in, n, leaves); ok {
					issues = append(issues, issue)
				}
			case "and":
				if issue, ok := checkChainable(in, n, leaves); ok {
					issues = append(issues, issue)
				}
			}
		case pysrc.TypeComparison:
			if in.Suppressed(n) {
				return true
			}
			if issue, ok := checkSingleton(in, n); ok {
				issues = append(issues, issue)
			}
			if issue, ok := checkTypeEquality(in, n); ok {
				issues = append(issues, issue)
			}
		}
		return true
	})

	return issues, nil
}

// isChainHead reports whether a boolean_operator is the top of its
// same-operator chain. Sub-expressions of a flattened chain are handled
// by the head.
func isChainHead(n *sitter.Node, src []byte) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != pysrc.TypeBoolOp {
		return true
	}
	return pysrc.BooleanOperator(parent, src) != pysrc.BooleanOperator(n, src)
}

// flattenChain collects the operand leaves of a same-operator boolean
// chain. Parenthesized sub-expressions stay opaque; they group on
// purpose.
func flattenChain(n *sitter.Node, word string, src []byte) []*sitter.Node {
	var leaves []*sitter.Node
	var rec func(node *sitter.Node)
	rec = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Type() == pysrc.TypeBoolOp && pysrc.BooleanOperator(node, src) == word {
			rec(node.ChildByFieldName("left"))
			rec(node.ChildByFieldName("right"))
			return
		}
		leaves = append(leaves, node)
	}
	rec(n)
	return leaves
}

// singleComparison returns the operands and operator of a comparison
// node that has exactly one operator, or ok=false.
func singleComparison(n *sitter.Node, src []byte) (left, right *sitter.Node, op string, ok bool) {
	if n == nil || n.Type() != pysrc.TypeComparison {
		return nil, nil, "", false
	}
	operands, ops := pysrc.ComparisonParts(n, src)
	if len(ops) != 1 || len(operands) != 2 {
		return nil, nil, "", false
	}
	return operands[0], operands[1], ops[0], true
}

// checkMembershipChain matches `x == a or x == b [or ...]`: every leaf
// a single == comparison against the same left operand.
func checkMembershipChain(in *rules.Input, n *sitter.Node, leaves []*sitter.Node) (rules.Issue, bool) {
	if len(leaves) < 2 {
		return rules.Issue{}, false
	}
	src := in.Source()

	var variable string
	var values []string
	for _, leaf := range leaves {
		left, right, op, ok := singleComparison(leaf, src)
		if !ok || op != "==" {
			return rules.Issue{}, false
		}
		leftText := left.Content(src)
		if variable == "" {
			variable = leftText
		} else if leftText != variable {
			return rules.Issue{}, false
		}
		values = append(values, right.Content(src))
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityLow, "R011",
		"Multiple equality comparisons can be simplified using 'in' operator").
		WithSuggestion(fmt.Sprintf(
			"Use '%s in (%s)' instead of multiple '==' comparisons. Use a set if values are hashable for O(1) lookup.",
			variable, strings.Join(values, ", ")))
	return issue, true
}

// checkChainable looks at adjacent leaves of an and-chain for a shared
// operand: a < b and b < c. The first chainable pair reports; one
// finding per chain.
func checkChainable(in *rules.Input, n *sitter.Node, leaves []*sitter.Node) (rules.Issue, bool) {
	if len(leaves) < 2 {
		return rules.Issue{}, false
	}
	src := in.Source()

	for i := 0; i+1 < len(leaves); i++ {
		left1, right1, op1, ok1 := singleComparison(leaves[i], src)
		left2, right2, op2, ok2 := singleComparison(leaves[i+1], src)
		if !ok1 || !ok2 || !chainableOps[op1] || !chainableOps[op2] {
			continue
		}
		if right1.Content(src) != left2.Content(src) {
			continue
		}

		issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityLow, "R012",
			"Comparison can be chained for better readability").
			WithSuggestion(fmt.Sprintf("Use '%s %s %s %s %s' instead of separate comparisons",
				left1.Content(src), op1, right1.Content(src), op2, right2.Content(src)))
		return issue, true
	}
	return rules.Issue{}, false
}

// isSingleton reports whether a node is one of the literals True,
// False, or None. Literal identity, not value equality: 1 is not True
// here.
func isSingleton(n *sitter.Node) bool {
	switch n.Type() {
	case pysrc.TypeTrue, pysrc.TypeFalse, pysrc.TypeNone:
		return true
	}
	return false
}

// checkSingleton flags == and != against None, True, and False on
// either side.
func checkSingleton(in *rules.Input, n *sitter.Node) (rules.Issue, bool) {
	src := in.Source()
	left, right, op, ok := singleComparison(n, src)
	if !ok || (op != "==" && op != "!=") {
		return rules.Issue{}, false
	}

	singleton, other := left, right
	if !isSingleton(singleton) {
		singleton, other = right, left
	}
	if !isSingleton(singleton) {
		return rules.Issue{}, false
	}

	if singleton.Type() == pysrc.TypeNone {
		correct, wrong := "is", "=="
		if op == "!=" {
			correct, wrong = "is not", "!="
		}
		issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityMedium, "R014",
			"Comparison with None should use 'is' or 'is not'").
			WithSuggestion(fmt.Sprintf("Use '%s' instead of '%s' when comparing with None", correct, wrong))
		return issue, true
	}

	otherText := other.Content(src)
	isTrue := singleton.Type() == pysrc.TypeTrue
	var word, suggestion string
	switch {
	case isTrue && op == "==":
		word = "True"
		suggestion = fmt.Sprintf("Use '%s' directly instead of comparing with True", otherText)
	case isTrue && op == "!=":
		word = "True"
		suggestion = fmt.Sprintf("Use 'not %s' instead of '!= True'", otherText)
	case !isTrue && op == "==":
		word = "False"
		suggestion = fmt.Sprintf("Use 'not %s' instead of comparing with False", otherText)
	default:
		word = "False"
		suggestion = fmt.Sprintf("Use '%s' directly instead of '!= False'", otherText)
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityInfo, "R014",
		fmt.Sprintf("Redundant comparison with %s", word)).
		WithSuggestion(suggestion)
	return issue, true
}

// checkTypeEquality flags `type(x) == T` and `type(x) is T`. Only the
// left side is matched, like pylint's unidiomatic-typecheck.
func checkTypeEquality(in *rules.Input, n *sitter.Node) (rules.Issue, bool) {
	src := in.Source()
	left, right, op, ok := singleComparison(n, src)
	if !ok || (op != "==" && op != "is") {
		return rules.Issue{}, false
	}
	if !pysrc.IsCallTo(left, "type", src) {
		return rules.Issue{}, false
	}
	args := pysrc.CallArguments(left)
	if len(args) != 1 {
		return rules.Issue{}, false
	}

	obj := args[0].Content(src)
	typeName := right.Content(src)
	issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityMedium, "R015",
		"Use isinstance() for type checking instead of type() comparison").
		WithSuggestion(fmt.Sprintf("Use 'isinstance(%s, %s)' instead of 'type(%s) == %s'",
			obj, typeName, obj, typeName))
	return issue, true
}

func init() {
	rules.Register(New())
}
