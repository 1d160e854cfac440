// Package contextmanager flags resource-allocating calls that bypass
// the with statement, leaving cleanup to garbage collection.
package contextmanager

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
)

// resourceFuncs are bare functions that return context managers.
var resourceFuncs = map[string]bool{
	"open":                 true,
	"file":                 true,
	"urlopen":              true,
	"NamedTemporaryFile":   true,
	"SpooledTemporaryFile": true,
	"TemporaryDirectory":   true,
	"TemporaryFile":        true,
	"ZipFile":              true,
	"PyZipFile":            true,
	"TarFile":              true,
	"Popen":                true,
	"Pool":                 true,
}

// resourceMethods are method names that return context managers
// regardless of receiver.
var resourceMethods = map[string]bool{
	"open":    true,
	"acquire": true,
	"start":   true,
}

// Detector reports bare resource acquisition (rule R001).
type Detector struct{}

// New returns the context manager detector.
func New() *Detector {
	return &Detector{}
}

// Name implements rules.Detector.
func (*Detector) Name() string {
	return "context_manager"
}

// Enabled implements rules.Detector.
func (*Detector) Enabled(cfg *config.Config) bool {
	return cfg.ContextManager.Enabled
}

// Rules implements rules.Detector.
func (*Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:       "R001",
			Severity: rules.SeverityHigh,
			Summary:  "Resource acquired outside 'with'",
			Description: "A call known to return a context manager is assigned or " +
				"discarded outside a with statement, so the resource is only released " +
				"when the garbage collector gets to it.",
		},
	}
}

// Check implements rules.Detector.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	var issues []rules.Issue
	src := in.Source()

	pysrc.Walk(in.Tree.Root(), func(n *sitter.Node) bool {
		if n.Type() != pysrc.TypeExprStmt {
			return true
		}
		if in.Suppressed(n) {
			return true
		}

		call := resourceCall(n, src)
		if call == nil {
			return true
		}
		if underWithOrReturn(call) {
			return true
		}

		name := callName(call, src)
		issue := rules.NewIssue(in.FilePath, pysrc.Line(n), pysrc.Column(n), rules.SeverityHigh, "R001",
			fmt.Sprintf("Resource-allocating operation '%s' should use 'with' statement", name)).
			WithSuggestion(fmt.Sprintf("Use 'with %s(...) as resource:' to ensure proper resource cleanup", name))
		issues = append(issues, issue)
		return true
	})

	return issues, nil
}

// resourceCall extracts the offending call from a statement, or nil.
// Handled shapes: `f = open(p)`, a bare `open(p)`, and the chained
// `open(p).read()` where the resource is consumed and dropped.
func resourceCall(stmt *sitter.Node, src []byte) *sitter.Node {
	inner := pysrc.BlockStatements(stmt)
	if len(inner) != 1 {
		return nil
	}
	expr := inner[0]

	if expr.Type() == pysrc.TypeAssignment {
		// Annotated assignments declare a type and are left alone.
		if expr.ChildByFieldName("type") != nil {
			return nil
		}
		value := expr.ChildByFieldName("right")
		for value != nil && value.Type() == pysrc.TypeAssignment {
			value = value.ChildByFieldName("right")
		}
		if isResourceCall(value, src) {
			return value
		}
		return nil
	}

	return findResourceCall(expr, src)
}

// findResourceCall matches a bare resource call or one immediately
// chained through a method call.
func findResourceCall(expr *sitter.Node, src []byte) *sitter.Node {
	if isResourceCall(expr, src) {
		return expr
	}
	if expr == nil || expr.Type() != pysrc.TypeCall {
		return nil
	}
	fn := expr.ChildByFieldName("function")
	if fn == nil || fn.Type() != pysrc.TypeAttribute {
		return nil
	}
	receiver := fn.ChildByFieldName("object")
	if isResourceCall(receiver, src) {
		return receiver
	}
	return nil
}

func isResourceCall(n *sitter.Node, src []byte) bool {
	if n == nil || n.Type() != pysrc.TypeCall {
		return false
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	switch fn.Type() {
	case pysrc.TypeIdentifier:
		return resourceFuncs[fn.Content(src)]
	case pysrc.TypeAttribute:
		attr := fn.ChildByFieldName("attribute")
		return attr != nil && resourceMethods[attr.Content(src)]
	}
	return false
}

// underWithOrReturn climbs from the call to the nearest function
// boundary. Anything under a with statement is assumed managed; a
// returned resource is the caller's to close.
func underWithOrReturn(n *sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case pysrc.TypeWith, pysrc.TypeReturn:
			return true
		case pysrc.TypeFunctionDef, pysrc.TypeLambda:
			return false
		}
	}
	return false
}

// callName returns the function or method name of a call for messages.
func callName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return "unknown"
	}
	switch fn.Type() {
	case pysrc.TypeIdentifier:
		return fn.Content(src)
	case pysrc.TypeAttribute:
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(src)
		}
	}
	return "unknown"
}

func init() {
	rules.Register(New())
}
