package pysrc

import sitter "github.com/smacker/go-tree-sitter"

// Node type names from the tree-sitter Python grammar that the detectors
// dispatch on.
const (
	TypeModule        = "module"
	TypeFunctionDef   = "function_definition"
	TypeClassDef      = "class_definition"
	TypeLambda        = "lambda"
	TypeBlock         = "block"
	TypeIf            = "if_statement"
	TypeElif          = "elif_clause"
	TypeElse          = "else_clause"
	TypeFor           = "for_statement"
	TypeWhile         = "while_statement"
	TypeWith          = "with_statement"
	TypeTry           = "try_statement"
	TypeExcept        = "except_clause"
	TypeFinally       = "finally_clause"
	TypeReturn        = "return_statement"
	TypeRaise         = "raise_statement"
	TypeBreak         = "break_statement"
	TypeContinue      = "continue_statement"
	TypeAssert        = "assert_statement"
	TypeExprStmt      = "expression_statement"
	TypeAssignment    = "assignment"
	TypeAugAssign     = "augmented_assignment"
	TypeNamedExpr     = "named_expression"
	TypeBoolOp        = "boolean_operator"
	TypeNotOp         = "not_operator"
	TypeComparison    = "comparison_operator"
	TypeCall          = "call"
	TypeAttribute     = "attribute"
	TypeSubscript     = "subscript"
	TypeIdentifier    = "identifier"
	TypeString        = "string"
	TypeInteger       = "integer"
	TypeFloat         = "float"
	TypeTrue          = "true"
	TypeFalse         = "false"
	TypeNone          = "none"
	TypeTuple         = "tuple"
	TypeParenthesized = "parenthesized_expression"
	TypeComment       = "comment"
	TypeArgList       = "argument_list"
	TypeKeywordArg    = "keyword_argument"
	TypePair          = "pair"
	TypeForInClause   = "for_in_clause"
	TypeAsPattern     = "as_pattern"
	TypeListComp      = "list_comprehension"
	TypeDictComp      = "dictionary_comprehension"
	TypeSetComp       = "set_comprehension"
	TypeGenerator     = "generator_expression"
)

// Line returns the 1-based start line of a node.
func Line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// Column returns the 0-based start column of a node.
func Column(n *sitter.Node) int {
	return int(n.StartPoint().Column)
}

// EndLine returns the 1-based end line of a node.
func EndLine(n *sitter.Node) int {
	return int(n.EndPoint().Row) + 1
}

// Unparen strips any number of parenthesized_expression wrappers.
func Unparen(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == TypeParenthesized {
		n = n.NamedChild(0)
	}
	return n
}

// IsLoop reports whether a node is a for or while statement.
func IsLoop(n *sitter.Node) bool {
	t := n.Type()
	return t == TypeFor || t == TypeWhile
}

// IsFunctionBoundary reports whether a node starts a new callable scope.
// Per-function metrics stop descending at these nodes.
func IsFunctionBoundary(n *sitter.Node) bool {
	t := n.Type()
	return t == TypeFunctionDef || t == TypeLambda
}

// IsLiteral reports whether a node is a string or number literal.
func IsLiteral(n *sitter.Node) bool {
	switch n.Type() {
	case TypeString, TypeInteger, TypeFloat:
		return true
	}
	return false
}

// IsBoolLiteral reports whether a node is True or False.
func IsBoolLiteral(n *sitter.Node) bool {
	t := n.Type()
	return t == TypeTrue || t == TypeFalse
}

// FunctionName returns the name of a function or class definition, or ""
// when the field is absent (error recovery may drop it).
func FunctionName(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(src)
}

// FunctionBody returns the block node of a function definition, or nil.
func FunctionBody(n *sitter.Node) *sitter.Node {
	return n.ChildByFieldName("body")
}

// Functions collects every function definition in the tree, outer
// definitions before the ones nested inside them.
func Functions(root *sitter.Node) []*sitter.Node {
	var funcs []*sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if n.Type() == TypeFunctionDef {
			funcs = append(funcs, n)
		}
		return true
	})
	return funcs
}

// EnclosingFunction returns the nearest function definition at or above
// the node, or nil at module level.
func EnclosingFunction(n *sitter.Node) *sitter.Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() == TypeFunctionDef {
			return cur
		}
	}
	return nil
}

// IsDocstring reports whether a node is a documentation string: an
// expression statement holding a single string literal that is the first
// statement of a module, class body, or function body.
func IsDocstring(n *sitter.Node) bool {
	if n.Type() != TypeExprStmt || n.NamedChildCount() != 1 {
		return false
	}
	if n.NamedChild(0).Type() != TypeString {
		return false
	}
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case TypeModule:
		return sameNode(firstStatement(parent), n)
	case TypeBlock:
		grand := parent.Parent()
		if grand == nil {
			return false
		}
		switch grand.Type() {
		case TypeFunctionDef, TypeClassDef:
			return sameNode(firstStatement(parent), n)
		}
	}
	return false
}

// firstStatement returns the first named child that is not a comment.
// Comments are grammar extras and show up among named children.
func firstStatement(body *sitter.Node) *sitter.Node {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() != TypeComment {
			return child
		}
	}
	return nil
}

// sameNode compares node identity by position; the bindings may hand out
// distinct wrappers for one underlying node.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// ComparisonParts splits a comparison_operator node into operand nodes
// and operator strings. A chained comparison a < b <= c yields three
// operands and two operators. The two-word operators "is not" and
// "not in" come back joined.
func ComparisonParts(n *sitter.Node, src []byte) (operands []*sitter.Node, ops []string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == TypeComment {
			continue
		}
		if child.IsNamed() {
			operands = append(operands, child)
			continue
		}
		text := child.Content(src)
		if len(ops) > 0 {
			last := ops[len(ops)-1]
			if (last == "is" && text == "not") || (last == "not" && text == "in") {
				ops[len(ops)-1] = last + " " + text
				continue
			}
		}
		ops = append(ops, text)
	}
	return operands, ops
}

// BooleanOperator returns "and" or "or" for a boolean_operator node.
func BooleanOperator(n *sitter.Node, src []byte) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	return op.Content(src)
}

// BlockStatements returns the statements of a block or module node,
// skipping interleaved comments.
func BlockStatements(body *sitter.Node) []*sitter.Node {
	if body == nil {
		return nil
	}
	var stmts []*sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == TypeComment {
			continue
		}
		stmts = append(stmts, child)
	}
	return stmts
}

// IfAlternatives returns the elif and else clauses of an if statement in
// source order. The grammar keeps them flat under the if rather than
// nesting each elif.
func IfAlternatives(ifNode *sitter.Node) []*sitter.Node {
	var alts []*sitter.Node
	for i := 0; i < int(ifNode.NamedChildCount()); i++ {
		child := ifNode.NamedChild(i)
		switch child.Type() {
		case TypeElif, TypeElse:
			alts = append(alts, child)
		}
	}
	return alts
}

// IsCallTo reports whether n is a call to a bare function name, such as
// len(...) or range(...). Method calls do not match.
func IsCallTo(n *sitter.Node, name string, src []byte) bool {
	if n == nil || n.Type() != TypeCall {
		return false
	}
	fn := n.ChildByFieldName("function")
	return fn != nil && fn.Type() == TypeIdentifier && fn.Content(src) == name
}

// CallArguments returns the argument nodes of a call in order, skipping
// comments. Keyword arguments come back as keyword_argument nodes.
func CallArguments(n *sitter.Node) []*sitter.Node {
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	return BlockStatements(args)
}

// FirstArgument returns the first argument of a call, or nil when the
// call has none.
func FirstArgument(n *sitter.Node) *sitter.Node {
	args := CallArguments(n)
	if len(args) == 0 {
		return nil
	}
	return args[0]
}
