// Package performance flags allocation and lookup anti-patterns:
// quadratic += accumulation in loops, pointless dict.keys() membership
// tests, redundant list() wrapping, and len() comparisons against zero.
//
// Accumulator types are guessed from variable names. The heuristic
// trades precision for zero type inference: a name containing "text"
// is treated as a string, a name ending in "s" as a list.
package performance

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
)

// typeHints maps a guessed type to name fragments that suggest it.
var typeHints = map[string][]string{
	"string": {"str", "text", "message", "name"},
	"list":   {"list", "items", "results", "array", "collection"},
	"dict":   {"dict", "map", "cache", "mapping"},
}

// matchesHint reports whether a variable name suggests the given type.
// Any name ending in "s" additionally counts as a list.
func matchesHint(name, kind string) bool {
	lower := strings.ToLower(name)
	for _, hint := range typeHints[kind] {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return kind == "list" && strings.HasSuffix(lower, "s")
}

// Detector reports performance findings (rules P001-P006).
type Detector struct{}

// New returns the performance detector.
func New() *Detector {
	return &Detector{}
}

// Name implements rules.Detector.
func (*Detector) Name() string {
	return "performance"
}

// Enabled implements rules.Detector.
func (*Detector) Enabled(cfg *config.Config) bool {
	return cfg.Performance.Enabled
}

// Rules implements rules.Detector.
func (*Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:       "P001",
			Severity: rules.SeverityMedium,
			Summary:  "String concatenation in loop",
			Description: "Repeated += on a string builds a new string every iteration. " +
				"Collect parts and join them once.",
		},
		{
			ID:       "P002",
			Severity: rules.SeverityLow,
			Summary:  "List concatenation in loop",
			Description: "Repeated += on a list re-allocates; extend() or a comprehension " +
				"grows it in place.",
		},
		{
			ID:          "P003",
			Severity:    rules.SeverityInfo,
			Summary:     "dict.keys() in membership test",
			Description: "'key in d' already tests keys; the .keys() call allocates a view for nothing.",
		},
		{
			ID:          "P004",
			Severity:    rules.SeverityInfo,
			Summary:     "list() around a list comprehension",
			Description: "A list comprehension is already a list.",
		},
		{
			ID:          "P005",
			Severity:    rules.SeverityInfo,
			Summary:     "len() compared against zero with > or >=",
			Description: "Non-empty checks read better as plain truthiness.",
		},
		{
			ID:          "P006",
			Severity:    rules.SeverityInfo,
			Summary:     "len() compared against zero with == or !=",
			Description: "Empty checks read better as 'not container'.",
		},
	}
}

// Check implements rules.Detector.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	var issues []rules.Issue

	pysrc.Walk(in.Tree.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case pysrc.TypeAugAssign:
			if in.Suppressed(n) {
				return true
			}
			if issue, ok := checkLoopConcat(in, n); ok {
				issues = append(issues, issue)
			}
		case pysrc.TypeCall:
			if in.Suppressed(n) {
				return true
			}
			if issue, ok := checkKeysMembership(in, n); ok {
				issues = append(issues, issue)
			}
			if issue, ok := checkRedundantList(in, n); ok {
				issues = append(issues, issue)
			}
			if issue, ok := checkLenComparison(in, n); ok {
				issues = append(issues, issue)
			}
		}
		return true
	})

	return issues, nil
}

// insideLoop reports whether a node has any for or while ancestor.
// Function boundaries do not stop the climb; a closure that runs inside
// a loop body still concatenates per iteration.
func insideLoop(n *sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if pysrc.IsLoop(cur) {
			return true
		}
	}
	return false
}

// checkLoopConcat flags += accumulation in loops when the target name
// suggests a string (P001) or list (P002). String hints win when both
// match.
func checkLoopConcat(in *rules.Input, n *sitter.Node) (rules.Issue, bool) {
	if !insideLoop(n) {
		return rules.Issue{}, false
	}
	src := in.Source()

	op := n.ChildByFieldName("operator")
	if op == nil || op.Content(src) != "+=" {
		return rules.Issue{}, false
	}
	target := n.ChildByFieldName("left")
	if target == nil || target.Type() != pysrc.TypeIdentifier {
		return rules.Issue{}, false
	}
	name := target.Content(src)

	switch {
	case matchesHint(name, "string"):
		issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityMedium, "P001",
			"String concatenation in loop using += is inefficient").
			WithSuggestion("Use str.join() with a list or io.StringIO for better performance")
		return issue, true
	case matchesHint(name, "list"):
		issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityLow, "P002",
			"List concatenation in loop using += may be inefficient").
			WithSuggestion("Use list.extend() or list comprehension for better performance")
		return issue, true
	}
	return rules.Issue{}, false
}

// enclosingComparison returns the nearest comparison_operator ancestor.
func enclosingComparison(n *sitter.Node) *sitter.Node {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Type() == pysrc.TypeComparison {
			return cur
		}
	}
	return nil
}

// checkKeysMembership flags `x in d.keys()` when the receiver name
// suggests a dict and the enclosing comparison starts with "in".
func checkKeysMembership(in *rules.Input, call *sitter.Node) (rules.Issue, bool) {
	src := in.Source()

	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != pysrc.TypeAttribute {
		return rules.Issue{}, false
	}
	attr := fn.ChildByFieldName("attribute")
	if attr == nil || attr.Content(src) != "keys" {
		return rules.Issue{}, false
	}
	receiver := fn.ChildByFieldName("object")
	if receiver == nil || receiver.Type() != pysrc.TypeIdentifier || !matchesHint(receiver.Content(src), "dict") {
		return rules.Issue{}, false
	}

	comparison := enclosingComparison(call)
	if comparison == nil {
		return rules.Issue{}, false
	}
	_, ops := pysrc.ComparisonParts(comparison, src)
	if len(ops) == 0 || ops[0] != "in" {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(call), pysrc.Column(call), rules.SeverityInfo, "P003",
		"Unnecessary dict.keys() call in membership test").
		WithSuggestion("Use 'key in dict' instead of 'key in dict.keys()'")
	return issue, true
}

// checkRedundantList flags list() wrapped directly around a list
// comprehension.
func checkRedundantList(in *rules.Input, call *sitter.Node) (rules.Issue, bool) {
	if !pysrc.IsCallTo(call, "list", in.Source()) {
		return rules.Issue{}, false
	}
	arg := pysrc.FirstArgument(call)
	if arg == nil || arg.Type() != pysrc.TypeListComp {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(call), pysrc.Column(call), rules.SeverityInfo, "P004",
		"Redundant list() conversion of list comprehension").
		WithSuggestion("List comprehensions already return lists; remove list() wrapper")
	return issue, true
}

// checkLenComparison flags len() compared against a zero on the right
// side of the enclosing comparison: > and >= report P005, == and !=
// report P006.
func checkLenComparison(in *rules.Input, call *sitter.Node) (rules.Issue, bool) {
	src := in.Source()
	if !pysrc.IsCallTo(call, "len", src) {
		return rules.Issue{}, false
	}

	comparison := enclosingComparison(call)
	if comparison == nil {
		return rules.Issue{}, false
	}
	operands, ops := pysrc.ComparisonParts(comparison, src)
	if len(ops) == 0 || len(operands) < 2 {
		return rules.Issue{}, false
	}

	zero := false
	for _, operand := range operands[1:] {
		if operand.Type() == pysrc.TypeInteger && operand.Content(src) == "0" {
			zero = true
			break
		}
	}
	if !zero {
		return rules.Issue{}, false
	}

	hasOp := func(wanted ...string) bool {
		for _, op := range ops {
			for _, w := range wanted {
				if op == w {
					return true
				}
			}
		}
		return false
	}

	switch {
	case hasOp(">", ">="):
		issue := rules.NewIssue(in.FilePath, pysrc.Line(call), pysrc.Column(call), rules.SeverityInfo, "P005",
			"Use truthiness instead of len() > 0").
			WithSuggestion("Use 'if container:' instead of 'if len(container) > 0:'")
		return issue, true
	case hasOp("==", "!="):
		issue := rules.NewIssue(in.FilePath, pysrc.Line(call), pysrc.Column(call), rules.SeverityInfo, "P006",
			"Use truthiness instead of len() == 0").
			WithSuggestion("Use 'if not container:' instead of 'if len(container) == 0:'")
		return issue, true
	}
	return rules.Issue{}, false
}

func init() {
	rules.Register(New())
}
