package complexity

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/pysrc"
)

// Each metric scores one function subtree in isolation: traversal never
// descends into nested function definitions or lambdas, so inner callables
// are scored by their own visit.

// functionLength returns the line span of a function definition,
// decorators excluded.
func functionLength(fn *sitter.Node) int {
	return pysrc.EndLine(fn) - pysrc.Line(fn) + 1
}

// parameter node types that count toward the argument total.
var parameterTypes = map[string]bool{
	"identifier":               true,
	"typed_parameter":          true,
	"default_parameter":        true,
	"typed_default_parameter":  true,
	"list_splat_pattern":       true, // *args
	"dictionary_splat_pattern": true, // **kwargs
	"tuple_pattern":            true,
}

// argumentCount counts all parameter kinds of a function. A leading
// self or cls receiver is not counted.
func argumentCount(fn *sitter.Node, src []byte) int {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}

	count := 0
	first := ""
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if !parameterTypes[p.Type()] {
			continue
		}
		if count == 0 {
			first = parameterName(p, src)
		}
		count++
	}

	if count > 0 && (first == "self" || first == "cls") {
		count--
	}
	return count
}

// parameterName extracts the bare name of a parameter node.
func parameterName(p *sitter.Node, src []byte) string {
	switch p.Type() {
	case "identifier":
		return p.Content(src)
	case "default_parameter", "typed_default_parameter":
		if name := p.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	if id := pysrc.FirstChildOfType(p, pysrc.TypeIdentifier); id != nil {
		return id.Content(src)
	}
	return ""
}

// localVariableCount counts distinct names bound inside a function by
// assignments, augmented assignments, walrus expressions, loop targets,
// comprehension clauses, and as-bindings.
func localVariableCount(fn *sitter.Node, src []byte) int {
	names := make(map[string]bool)
	body := pysrc.FunctionBody(fn)
	if body == nil {
		return 0
	}

	pysrc.Walk(body, func(n *sitter.Node) bool {
		if pysrc.IsFunctionBoundary(n) {
			return false
		}
		switch n.Type() {
		case pysrc.TypeAssignment:
			collectTargetNames(n.ChildByFieldName("left"), src, names)
		case pysrc.TypeAugAssign:
			collectTargetNames(n.ChildByFieldName("left"), src, names)
		case pysrc.TypeNamedExpr:
			collectTargetNames(n.ChildByFieldName("name"), src, names)
		case pysrc.TypeFor, pysrc.TypeForInClause:
			collectTargetNames(n.ChildByFieldName("left"), src, names)
		case pysrc.TypeAsPattern:
			if alias := n.ChildByFieldName("alias"); alias != nil {
				collectTargetNames(alias, src, names)
			}
		case pysrc.TypeExcept:
			collectExceptBinding(n, src, names)
		}
		return true
	})

	return len(names)
}

// collectTargetNames gathers identifiers from an assignment target.
// Subscript and attribute targets mutate existing objects and bind
// nothing new.
func collectTargetNames(target *sitter.Node, src []byte, names map[string]bool) {
	if target == nil {
		return
	}
	switch target.Type() {
	case pysrc.TypeIdentifier:
		names[target.Content(src)] = true
	case "pattern_list", "tuple_pattern", "list_pattern", "as_pattern_target":
		for i := 0; i < int(target.NamedChildCount()); i++ {
			collectTargetNames(target.NamedChild(i), src, names)
		}
	case "list_splat_pattern":
		for i := 0; i < int(target.NamedChildCount()); i++ {
			collectTargetNames(target.NamedChild(i), src, names)
		}
	}
}

// collectExceptBinding records the name of "except E as e".
// The clause's named children are the exception expression, the optional
// binding, and the handler block.
func collectExceptBinding(clause *sitter.Node, src []byte, names map[string]bool) {
	var exprs []*sitter.Node
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		if child.Type() == pysrc.TypeBlock || child.Type() == pysrc.TypeComment {
			continue
		}
		exprs = append(exprs, child)
	}
	if len(exprs) >= 2 && exprs[1].Type() == pysrc.TypeIdentifier {
		names[exprs[1].Content(src)] = true
	}
}

// branchCount counts decision points: if and elif clauses, an else
// attached to an if, loops, and except clauses. Loop and try else
// clauses do not count.
func branchCount(fn *sitter.Node) int {
	count := 0
	body := pysrc.FunctionBody(fn)
	if body == nil {
		return 0
	}

	pysrc.Walk(body, func(n *sitter.Node) bool {
		if pysrc.IsFunctionBoundary(n) {
			return false
		}
		switch n.Type() {
		case pysrc.TypeIf, pysrc.TypeElif, pysrc.TypeFor, pysrc.TypeWhile, pysrc.TypeExcept:
			count++
		case pysrc.TypeElse:
			if parent := n.Parent(); parent != nil && parent.Type() == pysrc.TypeIf {
				count++
			}
		}
		return true
	})

	return count
}

// nesting node types that deepen the block structure.
var nestingTypes = map[string]bool{
	pysrc.TypeIf:    true,
	pysrc.TypeFor:   true,
	pysrc.TypeWhile: true,
	pysrc.TypeWith:  true,
	pysrc.TypeTry:   true,
}

// nestingDepth returns the deepest lexical nesting of block statements in
// a function body. The body itself is depth zero. An elif clause stays on
// its chain's level; only a nested statement goes deeper.
func nestingDepth(fn *sitter.Node) int {
	body := pysrc.FunctionBody(fn)
	if body == nil {
		return 0
	}
	return subtreeDepth(body, 0)
}

func subtreeDepth(n *sitter.Node, depth int) int {
	deepest := depth
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if pysrc.IsFunctionBoundary(child) {
			continue
		}
		next := depth
		if nestingTypes[child.Type()] {
			next = depth + 1
		}
		if d := subtreeDepth(child, next); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// decision node types contributing to cyclomatic complexity.
var decisionTypes = map[string]bool{
	pysrc.TypeIf:     true,
	pysrc.TypeElif:   true,
	pysrc.TypeFor:    true,
	pysrc.TypeWhile:  true,
	pysrc.TypeWith:   true,
	pysrc.TypeAssert: true,
	pysrc.TypeExcept: true,
	pysrc.TypeBoolOp: true,
}

// cyclomaticComplexity computes 1 + the number of decision points in a
// function.
func cyclomaticComplexity(fn *sitter.Node) int {
	complexity := 1
	body := pysrc.FunctionBody(fn)
	if body == nil {
		return complexity
	}

	pysrc.Walk(body, func(n *sitter.Node) bool {
		if pysrc.IsFunctionBoundary(n) {
			return false
		}
		if decisionTypes[n.Type()] {
			complexity++
		}
		return true
	})

	return complexity
}
