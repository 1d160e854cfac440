package duplication

import (
	"testing"

	"github.com/pyvet/pyvet/internal/testutil"
)

func TestExclusionRanges(t *testing.T) {
	source := `def configured():
    """Connect to the configured endpoint.

    Retries are handled by the caller.
    """
    servers = [
        "alpha",
        "beta",
    ]
    return servers
`
	tree := testutil.ParsePython(t, source)

	ranges := exclusionRanges(tree)
	if len(ranges) != 2 {
		t.Fatalf("got %d exclusion ranges, want 2: %+v", len(ranges), ranges)
	}

	// Tree order puts the docstring before the list literal.
	if ranges[0].StartLine != 2 || ranges[0].EndLine != 5 {
		t.Errorf("docstring range = %+v, want lines 2-5", ranges[0])
	}
	if ranges[1].StartLine != 6 || ranges[1].EndLine != 9 {
		t.Errorf("list range = %+v, want lines 6-9", ranges[1])
	}
}

func TestExclusionRangeOverlaps(t *testing.T) {
	r := ExclusionRange{StartLine: 5, EndLine: 8}

	cases := []struct {
		start, end int
		want       bool
	}{
		{1, 4, false},
		{9, 12, false},
		{1, 5, true},
		{8, 10, true},
		{6, 7, true},
		{1, 20, true},
	}
	for _, tc := range cases {
		if got := r.overlaps(tc.start, tc.end); got != tc.want {
			t.Errorf("overlaps(%d, %d) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestBlockTokens_MultiLineTokenBoundary(t *testing.T) {
	source := `a = 1
text = """first
second"""
b = 2
`
	tree := testutil.ParsePython(t, source)
	idx := indexTokens(tree.Tokens())

	// The triple-quoted string spans lines 2-3; cutting between them is
	// not representable.
	if _, ok := idx.blockTokens(1, 2); ok {
		t.Error("window ending inside a multi-line string should be rejected")
	}
	if _, ok := idx.blockTokens(3, 4); ok {
		t.Error("window starting inside a multi-line string should be rejected")
	}
	if toks, ok := idx.blockTokens(1, 4); !ok || len(toks) == 0 {
		t.Error("window containing the whole multi-line string should tokenize")
	}
}

func TestBlockTokens_NewlineMarkers(t *testing.T) {
	source := "a = 1\nb = 2\n"
	tree := testutil.ParsePython(t, source)
	idx := indexTokens(tree.Tokens())

	toks, ok := idx.blockTokens(1, 2)
	if !ok {
		t.Fatal("expected tokens for the two-line window")
	}
	want := []string{"a", "=", "LITERAL", "\n", "b", "=", "LITERAL"}
	if len(toks) != len(want) {
		t.Fatalf("got tokens %q, want %q", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, toks[i], want[i])
		}
	}
}

func TestBlockTokens_EmptyWindow(t *testing.T) {
	source := "a = 1\n\n\nb = 2\n"
	tree := testutil.ParsePython(t, source)
	idx := indexTokens(tree.Tokens())

	if _, ok := idx.blockTokens(2, 3); ok {
		t.Error("window of blank lines should produce no tokens")
	}
}

func TestIsMeaningful(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		min   int
		want  bool
	}{
		{"all code", []string{"a = 1", "b = 2", "c = 3"}, 3, true},
		{"blanks do not count", []string{"a = 1", "", "b = 2"}, 3, false},
		{"comments do not count", []string{"a = 1", "# note", "b = 2"}, 3, false},
		{"mixed above threshold", []string{"a = 1", "# note", "b = 2", "c = 3"}, 3, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isMeaningful(tc.lines, tc.min); got != tc.want {
				t.Errorf("isMeaningful(%q, %d) = %v, want %v", tc.lines, tc.min, got, tc.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	cases := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"a", "b", "c"}, []string{"a", "b", "c"}, 1.0},
		{"disjoint", []string{"a", "b"}, []string{"c", "d"}, 0.0},
		{"half overlap", []string{"a", "b", "c"}, []string{"b", "c", "d"}, 0.5},
		{"both empty", nil, nil, 0.0},
		{"multiplicity ignored", []string{"a", "a", "b"}, []string{"a", "b", "b"}, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := jaccard(tc.a, tc.b); got != tc.want {
				t.Errorf("jaccard(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCollectBlocks_FirstSeenOrder(t *testing.T) {
	source := `a = 1
b = 2
c = 3
a = 1
b = 2
c = 3
`
	tree := testutil.ParsePython(t, source)
	idx := indexTokens(tree.Tokens())
	lines := testutil.MakeInput(t, "test.py", source).Map.Lines()

	buckets, order := collectBlocks(lines, nil, idx, 3, maxBlockSize)
	if len(order) == 0 {
		t.Fatal("expected at least one bucket")
	}

	first := buckets[order[0]]
	if len(first) < 2 {
		t.Fatalf("first bucket has %d members, want the duplicated 3-line window", len(first))
	}
	if first[0].StartLine != 1 || first[0].EndLine != 3 {
		t.Errorf("first bucket head = lines %d-%d, want 1-3", first[0].StartLine, first[0].EndLine)
	}
	if first[1].StartLine != 4 || first[1].EndLine != 6 {
		t.Errorf("first bucket second = lines %d-%d, want 4-6", first[1].StartLine, first[1].EndLine)
	}
}
