// Package dictoperations flags dictionary access and iteration that has a
// more direct idiom: if/else lookups that dict.get covers, key loops that
// re-index the dict, iterating over .keys(), and dict() wrapped around a
// list comprehension of pairs.
package dictoperations

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
)

// Detector reports dictionary idiom findings (rules R006, R007, R009, R010).
type Detector struct{}

// New returns the dict operations detector.
func New() *Detector {
	return &Detector{}
}

// Name implements rules.Detector.
func (*Detector) Name() string {
	return "dict_operations"
}

// Enabled implements rules.Detector.
func (*Detector) Enabled(cfg *config.Config) bool {
	return cfg.DictOperations.Enabled
}

// Rules implements rules.Detector.
func (*Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:          "R006",
			Severity:    rules.SeverityLow,
			Summary:     "Use dict.get() for key lookup with default",
			Description: "An if/else that indexes a dict when the key is present and assigns a default otherwise is dict.get in long form.",
		},
		{
			ID:          "R007",
			Severity:    rules.SeverityMedium,
			Summary:     "Use .items() when a key loop also reads values",
			Description: "Iterating keys and subscripting the dict inside the loop repeats the lookup that .items() does once.",
		},
		{
			ID:          "R009",
			Severity:    rules.SeverityInfo,
			Summary:     "Unnecessary .keys() when iterating a dictionary",
			Description: "Iterating a dict already yields its keys; the .keys() call adds nothing.",
		},
		{
			ID:          "R010",
			Severity:    rules.SeverityLow,
			Summary:     "Use a dict comprehension instead of dict() over a list comprehension",
			Description: "dict([(k, v) for ...]) builds an intermediate list that a dict comprehension avoids.",
		},
	}
}

// Check implements rules.Detector.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	var issues []rules.Issue
	src := in.Source()

	pysrc.Walk(in.Tree.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case pysrc.TypeIf:
			// Each elif heads its own lookup pattern against the
			// clauses that follow it.
			alts := pysrc.IfAlternatives(n)
			if !in.Suppressed(n) {
				if issue, ok := checkGetPattern(in, n, n.ChildByFieldName("condition"),
					n.ChildByFieldName("consequence"), alts, src); ok {
					issues = append(issues, issue)
				}
			}
			for i, alt := range alts {
				if alt.Type() != pysrc.TypeElif || in.Suppressed(alt) {
					continue
				}
				if issue, ok := checkGetPattern(in, alt, alt.ChildByFieldName("condition"),
					alt.ChildByFieldName("consequence"), alts[i+1:], src); ok {
					issues = append(issues, issue)
				}
			}
		case pysrc.TypeFor:
			if in.Suppressed(n) {
				return true
			}
			if issue, ok := checkKeysIteration(in, n, src); ok {
				issues = append(issues, issue)
			}
			if issue, ok := checkItemsOpportunity(in, n, src); ok {
				issues = append(issues, issue)
			}
		case pysrc.TypeCall:
			if in.Suppressed(n) {
				return true
			}
			if issue, ok := checkDictCall(in, n, src); ok {
				issues = append(issues, issue)
			}
		}
		return true
	})

	return issues, nil
}

// checkGetPattern matches
//
//	if key in d:
//	    x = d[key]
//	else:
//	    x = default
//
// where key, d, and x are plain names, and suggests x = d.get(key, default).
// The branch after the condition must be a lone else clause.
func checkGetPattern(in *rules.Input, posNode, cond, consequence *sitter.Node, rest []*sitter.Node, src []byte) (rules.Issue, bool) {
	cond = pysrc.Unparen(cond)
	if cond == nil || cond.Type() != pysrc.TypeComparison {
		return rules.Issue{}, false
	}
	operands, ops := pysrc.ComparisonParts(cond, src)
	if len(ops) != 1 || ops[0] != "in" || len(operands) != 2 {
		return rules.Issue{}, false
	}
	key, dict := operands[0], operands[1]
	if key.Type() != pysrc.TypeIdentifier || dict.Type() != pysrc.TypeIdentifier {
		return rules.Issue{}, false
	}

	// Exactly one else branch and a single assignment on each side.
	if len(rest) != 1 || rest[0].Type() != pysrc.TypeElse {
		return rules.Issue{}, false
	}
	ifStmts := pysrc.BlockStatements(consequence)
	elseStmts := pysrc.BlockStatements(rest[0].ChildByFieldName("body"))
	if len(ifStmts) != 1 || len(elseStmts) != 1 {
		return rules.Issue{}, false
	}
	ifAssign := plainAssignment(ifStmts[0])
	elseAssign := plainAssignment(elseStmts[0])
	if ifAssign == nil || elseAssign == nil {
		return rules.Issue{}, false
	}

	varName := ifAssign.ChildByFieldName("left").Content(src)
	if varName != elseAssign.ChildByFieldName("left").Content(src) {
		return rules.Issue{}, false
	}

	// The if branch must read d[key] for the names from the condition.
	read := pysrc.Unparen(ifAssign.ChildByFieldName("right"))
	if read == nil || read.Type() != pysrc.TypeSubscript {
		return rules.Issue{}, false
	}
	value := read.ChildByFieldName("value")
	index := read.ChildByFieldName("subscript")
	if value == nil || value.Type() != pysrc.TypeIdentifier || value.Content(src) != dict.Content(src) {
		return rules.Issue{}, false
	}
	if index == nil || index.Type() != pysrc.TypeIdentifier || index.Content(src) != key.Content(src) {
		return rules.Issue{}, false
	}

	defaultVal := elseAssign.ChildByFieldName("right").Content(src)
	issue := rules.NewIssue(in.FilePath, pysrc.Line(posNode), pysrc.Column(posNode), rules.SeverityLow, "R006",
		"Consider using dict.get() instead of if/else for key lookup").
		WithSuggestion(fmt.Sprintf("Use '%s = %s.get(%s, %s)' instead of if/else block",
			varName, dict.Content(src), key.Content(src), defaultVal))
	return issue, true
}

// plainAssignment unwraps an expression statement holding a single
// unannotated, unchained assignment to one name. Anything else returns nil.
func plainAssignment(stmt *sitter.Node) *sitter.Node {
	if stmt.Type() != pysrc.TypeExprStmt {
		return nil
	}
	inner := pysrc.BlockStatements(stmt)
	if len(inner) != 1 || inner[0].Type() != pysrc.TypeAssignment {
		return nil
	}
	assign := inner[0]
	if assign.ChildByFieldName("type") != nil {
		return nil
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || left.Type() != pysrc.TypeIdentifier {
		return nil
	}
	if right == nil || right.Type() == pysrc.TypeAssignment {
		return nil
	}
	return assign
}

// checkKeysIteration matches `for k in d.keys():`.
func checkKeysIteration(in *rules.Input, forNode *sitter.Node, src []byte) (rules.Issue, bool) {
	iter := pysrc.Unparen(forNode.ChildByFieldName("right"))
	if iter == nil || iter.Type() != pysrc.TypeCall {
		return rules.Issue{}, false
	}
	fn := iter.ChildByFieldName("function")
	if fn == nil || fn.Type() != pysrc.TypeAttribute {
		return rules.Issue{}, false
	}
	attr := fn.ChildByFieldName("attribute")
	if attr == nil || attr.Content(src) != "keys" {
		return rules.Issue{}, false
	}
	dictName := nameOf(fn.ChildByFieldName("object"), src)
	if dictName == "" {
		return rules.Issue{}, false
	}

	targetName := "item"
	if target := forNode.ChildByFieldName("left"); target != nil && target.Type() == pysrc.TypeIdentifier {
		targetName = target.Content(src)
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(forNode), pysrc.Column(forNode), rules.SeverityInfo, "R009",
		"Unnecessary .keys() call when iterating dictionary").
		WithSuggestion(fmt.Sprintf("Use 'for %s in %s:' instead of 'for %s in %s.keys():'",
			targetName, dictName, targetName, dictName))
	return issue, true
}

// checkItemsOpportunity matches a key loop whose body subscripts the
// iterated dict with the loop variable.
func checkItemsOpportunity(in *rules.Input, forNode *sitter.Node, src []byte) (rules.Issue, bool) {
	target := forNode.ChildByFieldName("left")
	if target == nil || target.Type() != pysrc.TypeIdentifier {
		return rules.Issue{}, false
	}
	iterName := nameOf(pysrc.Unparen(forNode.ChildByFieldName("right")), src)
	if iterName == "" {
		return rules.Issue{}, false
	}
	keyName := target.Content(src)

	body := forNode.ChildByFieldName("body")
	if body == nil || !hasKeySubscript(body, iterName, keyName, src) {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(forNode), pysrc.Column(forNode), rules.SeverityMedium, "R007",
		"Consider using .items() to access both keys and values").
		WithSuggestion(fmt.Sprintf("Use 'for %s, value in %s.items():' to avoid repeated dict lookups",
			keyName, iterName))
	return issue, true
}

// hasKeySubscript reports whether the subtree contains a d[key] read for
// the given names.
func hasKeySubscript(body *sitter.Node, dictName, keyName string, src []byte) bool {
	found := false
	pysrc.Walk(body, func(n *sitter.Node) bool {
		if found || n.Type() != pysrc.TypeSubscript {
			return !found
		}
		value := n.ChildByFieldName("value")
		index := n.ChildByFieldName("subscript")
		if value != nil && value.Type() == pysrc.TypeIdentifier && value.Content(src) == dictName &&
			index != nil && index.Type() == pysrc.TypeIdentifier && index.Content(src) == keyName {
			found = true
		}
		return !found
	})
	return found
}

// checkDictCall matches dict() over a list comprehension of two-element
// tuples.
func checkDictCall(in *rules.Input, call *sitter.Node, src []byte) (rules.Issue, bool) {
	if !pysrc.IsCallTo(call, "dict", src) {
		return rules.Issue{}, false
	}
	arg := pysrc.FirstArgument(call)
	if arg == nil || arg.Type() != pysrc.TypeListComp {
		return rules.Issue{}, false
	}
	elt := arg.ChildByFieldName("body")
	if elt == nil || elt.Type() != pysrc.TypeTuple {
		return rules.Issue{}, false
	}
	if len(pysrc.BlockStatements(elt)) != 2 {
		return rules.Issue{}, false
	}

	issue := rules.NewIssue(in.FilePath, pysrc.Line(call), pysrc.Column(call), rules.SeverityLow, "R010",
		"Consider using dictionary comprehension instead of dict()").
		WithSuggestion("Use '{k: v for ...}' instead of 'dict([(k, v) for ...])' for better readability and performance")
	return issue, true
}

// nameOf extracts a bare identifier's text, or the attribute part of a
// dotted access. Other shapes yield "".
func nameOf(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case pysrc.TypeIdentifier:
		return n.Content(src)
	case pysrc.TypeAttribute:
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(src)
		}
	}
	return ""
}

func init() {
	rules.Register(New())
}
