// Package loops flags iteration patterns with cheaper or clearer
// equivalents: range(len()) indexing, hand-rolled counters, nested
// lookup loops, and loop-invariant calls.
package loops

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
)

// minNestedLoops is the direct-nesting count above which L003 fires.
const minNestedLoops = 2

// invariantMethods are method names that are expensive enough to hoist
// when they do not depend on the loop variable.
var invariantMethods = map[string]bool{
	"compile": true,
	"search":  true,
	"match":   true,
	"split":   true,
	"findall": true,
	"sub":     true,
}

// Detector reports loop findings (rules L001-L004).
type Detector struct{}

// New returns the loops detector.
func New() *Detector {
	return &Detector{}
}

// Name implements rules.Detector.
func (*Detector) Name() string {
	return "loops"
}

// Enabled implements rules.Detector.
func (*Detector) Enabled(cfg *config.Config) bool {
	return cfg.Loops.Enabled
}

// Rules implements rules.Detector.
func (*Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:       "L001",
			Severity: rules.SeverityLow,
			Summary:  "range(len()) iteration",
			Description: "Iterating indices with range(len(collection)) and subscripting " +
				"the collection in the body duplicates what enumerate() provides.",
		},
		{
			ID:          "L002",
			Severity:    rules.SeverityInfo,
			Summary:     "Manual index tracking",
			Description: "A counter incremented by one inside a loop body replicates enumerate().",
		},
		{
			ID:       "L003",
			Severity: rules.SeverityMedium,
			Summary:  "Nested loops with comparisons",
			Description: "Deeply nested loops whose bodies compare values usually implement " +
				"a lookup that a dictionary or set does in constant time.",
		},
		{
			ID:       "L004",
			Severity: rules.SeverityMedium,
			Summary:  "Loop-invariant call",
			Description: "An expensive call that does not mention the loop variable computes " +
				"the same value on every iteration.",
		},
	}
}

// Check implements rules.Detector.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	var issues []rules.Issue

	pysrc.Walk(in.Tree.Root(), func(n *sitter.Node) bool {
		if n.Type() != pysrc.TypeFor {
			return true
		}
		if in.Suppressed(n) {
			return true
		}

		if issue, ok := checkRangeLen(in, n); ok {
			issues = append(issues, issue)
		}
		if issue, ok := checkManualIndex(in, n); ok {
			issues = append(issues, issue)
		}
		if issue, ok := checkNestedLookup(in, n); ok {
			issues = append(issues, issue)
		}
		if issue, ok := checkInvariantCalls(in, n); ok {
			issues = append(issues, issue)
		}
		return true
	})

	return issues, nil
}

// checkRangeLen matches `for i in range(len(coll)):` where the body
// subscripts coll with i.
func checkRangeLen(in *rules.Input, forNode *sitter.Node) (rules.Issue, bool) {
	src := in.Source()

	rangeCall := forNode.ChildByFieldName("right")
	if !pysrc.IsCallTo(rangeCall, "range", src) {
		return rules.Issue{}, false
	}
	lenCall := pysrc.FirstArgument(rangeCall)
	if !pysrc.IsCallTo(lenCall, "len", src) {
		return rules.Issue{}, false
	}
	collection := pysrc.FirstArgument(lenCall)
	if collection == nil {
		return rules.Issue{}, false
	}

	target := forNode.ChildByFieldName("left")
	if target == nil || target.Type() != pysrc.TypeIdentifier {
		return rules.Issue{}, false
	}
	indexVar := target.Content(src)
	collText := collection.Content(src)

	body := forNode.ChildByFieldName("body")
	if body == nil || !subscriptsCollection(body, collText, indexVar, src) {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(forNode), pysrc.Column(forNode), rules.SeverityLow, "L001",
		"Use enumerate() instead of range(len())").
		WithSuggestion("Replace 'for i in range(len(items)):' with 'for i, item in enumerate(items):'")
	return issue, true
}

// subscriptsCollection reports whether any subscript in the body indexes
// the collection expression with the loop variable. Expressions are
// compared by source text.
func subscriptsCollection(body *sitter.Node, collText, indexVar string, src []byte) bool {
	found := false
	pysrc.Walk(body, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.Type() != pysrc.TypeSubscript {
			return true
		}
		idx := n.ChildByFieldName("subscript")
		value := n.ChildByFieldName("value")
		if idx != nil && value != nil &&
			idx.Type() == pysrc.TypeIdentifier && idx.Content(src) == indexVar &&
			value.Content(src) == collText {
			found = true
			return false
		}
		return true
	})
	return found
}

// checkManualIndex collects counters incremented by exactly one anywhere
// in the loop body.
func checkManualIndex(in *rules.Input, forNode *sitter.Node) (rules.Issue, bool) {
	body := forNode.ChildByFieldName("body")
	if body == nil {
		return rules.Issue{}, false
	}
	src := in.Source()

	seen := map[string]bool{}
	pysrc.Walk(body, func(n *sitter.Node) bool {
		if n.Type() != pysrc.TypeAugAssign {
			return true
		}
		target := n.ChildByFieldName("left")
		op := n.ChildByFieldName("operator")
		value := n.ChildByFieldName("right")
		if target != nil && op != nil && value != nil &&
			target.Type() == pysrc.TypeIdentifier &&
			op.Content(src) == "+=" &&
			value.Type() == pysrc.TypeInteger && value.Content(src) == "1" {
			seen[target.Content(src)] = true
		}
		return true
	})
	if len(seen) == 0 {
		return rules.Issue{}, false
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	issue := rules.NewIssue(in.FilePath, pysrc.Line(forNode), pysrc.Column(forNode), rules.SeverityInfo, "L002",
		fmt.Sprintf("Manual index tracking detected: %s", strings.Join(names, ", "))).
		WithSuggestion("Use enumerate() to track indices automatically")
	return issue, true
}

// checkNestedLookup fires when the direct for-nesting count exceeds the
// threshold and any comparison appears in the body.
func checkNestedLookup(in *rules.Input, forNode *sitter.Node) (rules.Issue, bool) {
	if countDirectLoops(forNode) <= minNestedLoops {
		return rules.Issue{}, false
	}
	body := forNode.ChildByFieldName("body")
	if body == nil || !containsComparison(body) {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(forNode), pysrc.Column(forNode), rules.SeverityMedium, "L003",
		"Nested loops with comparisons detected").
		WithSuggestion("Consider using a dictionary or set for O(1) lookups instead of nested iteration")
	return issue, true
}

// countDirectLoops counts this loop plus for statements appearing as
// direct body statements, recursively. Loops hidden inside other
// compound statements do not count.
func countDirectLoops(forNode *sitter.Node) int {
	count := 1
	body := forNode.ChildByFieldName("body")
	if body == nil {
		return count
	}
	for _, stmt := range pysrc.BlockStatements(body) {
		if stmt.Type() == pysrc.TypeFor {
			count += countDirectLoops(stmt)
		}
	}
	return count
}

func containsComparison(body *sitter.Node) bool {
	found := false
	pysrc.Walk(body, func(n *sitter.Node) bool {
		if n.Type() == pysrc.TypeComparison {
			found = true
		}
		return !found
	})
	return found
}

// checkInvariantCalls looks for expensive method calls in the body that
// never mention the loop variable. Only loops with a simple identifier
// target are considered.
func checkInvariantCalls(in *rules.Input, forNode *sitter.Node) (rules.Issue, bool) {
	src := in.Source()

	target := forNode.ChildByFieldName("left")
	if target == nil || target.Type() != pysrc.TypeIdentifier {
		return rules.Issue{}, false
	}
	loopVar := target.Content(src)

	body := forNode.ChildByFieldName("body")
	if body == nil {
		return rules.Issue{}, false
	}

	invariant := false
	pysrc.Walk(body, func(n *sitter.Node) bool {
		if invariant {
			return false
		}
		if n.Type() != pysrc.TypeCall {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Type() != pysrc.TypeAttribute {
			return true
		}
		attr := fn.ChildByFieldName("attribute")
		if attr == nil || !invariantMethods[attr.Content(src)] {
			return true
		}
		if !mentionsIdentifier(n, loopVar, src) {
			invariant = true
			return false
		}
		return true
	})
	if !invariant {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(forNode), pysrc.Column(forNode), rules.SeverityMedium, "L004",
		"Loop-invariant code detected inside loop").
		WithSuggestion("Move computations that don't depend on loop variable outside the loop")
	return issue, true
}

func mentionsIdentifier(n *sitter.Node, name string, src []byte) bool {
	found := false
	pysrc.Walk(n, func(sub *sitter.Node) bool {
		if sub.Type() == pysrc.TypeIdentifier && sub.Content(src) == name {
			found = true
		}
		return !found
	})
	return found
}

func init() {
	rules.Register(New())
}
