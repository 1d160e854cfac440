package pysrc

import sitter "github.com/smacker/go-tree-sitter"

// LiteralPlaceholder substitutes string and number literals in normalized
// token streams, so code that differs only in constants still matches.
const LiteralPlaceholder = "LITERAL"

// Token is one lexical element of a source file, normalized for
// duplicate comparison. Rows are 0-based.
type Token struct {
	Text   string
	Row    int
	EndRow int
}

// Tokens flattens the tree into its normalized lexical tokens:
// comments are dropped, string and number literals collapse to
// LiteralPlaceholder (a string subtree counts as one token, f-string
// interpolations included), and every other leaf emits its source text.
func (t *Tree) Tokens() []Token {
	var toks []Token
	WalkAll(t.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case TypeComment:
			return false
		case TypeString, TypeInteger, TypeFloat:
			toks = append(toks, Token{
				Text:   LiteralPlaceholder,
				Row:    int(n.StartPoint().Row),
				EndRow: int(n.EndPoint().Row),
			})
			return false
		}
		if n.ChildCount() == 0 {
			text := n.Content(t.src)
			if text != "" {
				toks = append(toks, Token{
					Text:   text,
					Row:    int(n.StartPoint().Row),
					EndRow: int(n.EndPoint().Row),
				})
			}
			return false
		}
		return true
	})
	return toks
}
