package complexity

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/testutil"
)

// firstFunction parses source and returns its first function definition.
func firstFunction(t *testing.T, source string) (*sitter.Node, []byte) {
	t.Helper()
	tree := testutil.ParsePython(t, source)
	funcs := pysrc.Functions(tree.Root())
	if len(funcs) == 0 {
		t.Fatalf("no function found in source:\n%s", source)
	}
	return funcs[0], tree.Source()
}

func TestFunctionLength(t *testing.T) {
	fn, _ := firstFunction(t, `def f():
    x = 1
    y = 2
    return x + y
`)
	if got := functionLength(fn); got != 4 {
		t.Errorf("functionLength = %d, want 4", got)
	}
}

func TestArgumentCount(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{
			name:   "plain parameters",
			source: "def f(a, b, c):\n    pass\n",
			want:   3,
		},
		{
			name:   "all parameter kinds",
			source: "def f(a, b, c=1, *args, d, **kwargs):\n    pass\n",
			want:   6,
		},
		{
			name:   "self not counted",
			source: "class A:\n    def m(self, x, y):\n        pass\n",
			want:   2,
		},
		{
			name:   "cls not counted",
			source: "class A:\n    def m(cls, x):\n        pass\n",
			want:   1,
		},
		{
			name:   "typed parameters",
			source: "def f(a: int, b: str = \"x\") -> int:\n    pass\n",
			want:   2,
		},
		{
			name:   "no parameters",
			source: "def f():\n    pass\n",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, src := firstFunction(t, tt.source)
			if got := argumentCount(fn, src); got != tt.want {
				t.Errorf("argumentCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLocalVariableCount(t *testing.T) {
	fn, src := firstFunction(t, `def f(values):
    x = 1
    y, z = 2, 3
    total = 0
    for i in values:
        total += 1
    with open("data") as fh:
        text = fh.read()
    try:
        pass
    except ValueError as e:
        pass
    squares = [n * n for n in values]
    return x, y, z
`)
	// x, y, z, total, i, fh, text, e, squares, n
	if got := localVariableCount(fn, src); got != 10 {
		t.Errorf("localVariableCount = %d, want 10", got)
	}
}

func TestLocalVariableCountSkipsNestedFunctions(t *testing.T) {
	fn, src := firstFunction(t, `def outer():
    a = 1
    def inner():
        b = 2
        c = 3
        return b + c
    return inner
`)
	// Only a; inner binds its own locals.
	if got := localVariableCount(fn, src); got != 1 {
		t.Errorf("localVariableCount = %d, want 1", got)
	}
}

func TestBranchCount(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{
			name: "if elif elif else ladder counts every clause",
			source: `def f(x):
    if x == 1:
        return 1
    elif x == 2:
        return 2
    elif x == 3:
        return 3
    else:
        return 0
`,
			want: 4,
		},
		{
			name: "loops and except clauses count",
			source: `def f(items):
    for item in items:
        pass
    while items:
        pass
    try:
        pass
    except ValueError:
        pass
    except KeyError:
        pass
`,
			want: 4,
		},
		{
			name: "loop else does not count",
			source: `def f(items):
    for item in items:
        pass
    else:
        pass
`,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, _ := firstFunction(t, tt.source)
			if got := branchCount(fn); got != tt.want {
				t.Errorf("branchCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNestingDepth(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{
			name: "four nested ifs",
			source: `def f(a, b, c, d):
    if a:
        if b:
            if c:
                if d:
                    return 1
    return 0
`,
			want: 4,
		},
		{
			name: "elif stays on the chain level",
			source: `def f(x):
    if x == 1:
        return 1
    elif x == 2:
        if x:
            return 2
    return 0
`,
			want: 2,
		},
		{
			name: "flat body",
			source: `def f():
    x = 1
    return x
`,
			want: 0,
		},
		{
			name: "mixed block kinds",
			source: `def f(items):
    for item in items:
        with open(item) as fh:
            try:
                pass
            except ValueError:
                pass
`,
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, _ := firstFunction(t, tt.source)
			if got := nestingDepth(fn); got != tt.want {
				t.Errorf("nestingDepth = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCyclomaticComplexity(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{
			name: "four nested ifs give five",
			source: `def f(a, b, c, d):
    if a:
        if b:
            if c:
                if d:
                    return 1
    return 0
`,
			want: 5,
		},
		{
			name: "boolean operators count",
			source: `def f(a, b, c):
    if a and b or c:
        return 1
    return 0
`,
			want: 4,
		},
		{
			name: "straight line is one",
			source: `def f():
    return 1
`,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, _ := firstFunction(t, tt.source)
			if got := cyclomaticComplexity(fn); got != tt.want {
				t.Errorf("cyclomaticComplexity = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMetricsIgnoreNestedFunctions(t *testing.T) {
	fn, _ := firstFunction(t, `def outer(a, b, c, d):
    def inner():
        if a:
            if b:
                if c:
                    if d:
                        return 1
        return 0
    return inner
`)
	if got := nestingDepth(fn); got != 0 {
		t.Errorf("outer nestingDepth = %d, want 0", got)
	}
	if got := branchCount(fn); got != 0 {
		t.Errorf("outer branchCount = %d, want 0", got)
	}
	if got := cyclomaticComplexity(fn); got != 1 {
		t.Errorf("outer cyclomaticComplexity = %d, want 1", got)
	}
}
