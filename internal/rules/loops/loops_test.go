package loops

import (
	"testing"

	"github.com/pyvet/pyvet/internal/testutil"
)

func TestDetector_Metadata(t *testing.T) {
	d := New()
	if d.Name() != "loops" {
		t.Errorf("Name() = %q, want %q", d.Name(), "loops")
	}
	if got := len(d.Rules()); got != 4 {
		t.Errorf("Rules() has %d entries, want 4", got)
	}
}

func TestDetector_Check(t *testing.T) {
	testutil.RunDetectorTests(t, New(), []testutil.DetectorTestCase{
		{
			Name: "range len with subscript",
			Source: `items = [1, 2, 3]
for i in range(len(items)):
    print(items[i])
`,
			WantIssues:   1,
			WantRules:    []string{"L001"},
			WantLines:    []int{2},
			WantMessages: []string{"Use enumerate() instead of range(len())"},
		},
		{
			Name: "range len without subscript stays quiet",
			Source: `for i in range(len(items)):
    print(i)
`,
			WantIssues: 0,
		},
		{
			Name: "range without len stays quiet",
			Source: `for i in range(10):
    print(i)
`,
			WantIssues: 0,
		},
		{
			Name: "enumerate is fine",
			Source: `for i, item in enumerate(items):
    print(i, item)
`,
			WantIssues: 0,
		},
		{
			Name: "subscripting a different collection stays quiet",
			Source: `for i in range(len(items)):
    print(totals[i])
`,
			WantIssues: 0,
		},
		{
			Name: "manual index tracking",
			Source: `for item in items:
    index += 1
    print(index, item)
`,
			WantIssues:   1,
			WantRules:    []string{"L002"},
			WantLines:    []int{1},
			WantMessages: []string{"Manual index tracking detected: index"},
		},
		{
			Name: "any counter name triggers",
			Source: `for item in items:
    counter += 1
    print(counter, item)
`,
			WantIssues:   1,
			WantRules:    []string{"L002"},
			WantMessages: []string{"counter"},
		},
		{
			Name: "several counters are joined",
			Source: `for item in items:
    seen += 1
    count += 1
`,
			WantIssues:   1,
			WantRules:    []string{"L002"},
			WantMessages: []string{"Manual index tracking detected: count, seen"},
		},
		{
			Name: "increment by two stays quiet",
			Source: `for item in items:
    total += 2
`,
			WantIssues: 0,
		},
		{
			Name: "triple nested loops with comparison",
			Source: `for item in list1:
    for other in list2:
        for third in list3:
            if item == other:
                result.append(item)
`,
			WantIssues:   1,
			WantRules:    []string{"L003"},
			WantLines:    []int{1},
			WantMessages: []string{"Nested loops with comparisons detected"},
		},
		{
			Name: "two nested loops stay quiet",
			Source: `for item in list1:
    for other in list2:
        if item == other:
            result.append(item)
`,
			WantIssues: 0,
		},
		{
			Name: "nested loops without comparison stay quiet",
			Source: `for item in list1:
    for other in list2:
        for third in list3:
            result.append((item, other, third))
`,
			WantIssues: 0,
		},
		{
			Name: "two sibling inner loops count together",
			Source: `for item in list1:
    for other in list2:
        if item == other:
            pairs.append(item)
    for third in list3:
        result.append(third)
`,
			WantIssues: 1,
			WantRules:  []string{"L003"},
			WantLines:  []int{1},
		},
		{
			Name: "invariant regex call inside loop",
			Source: `for line in lines:
    match = re.compile(pattern)
    print(match)
`,
			WantIssues:   1,
			WantRules:    []string{"L004"},
			WantLines:    []int{1},
			WantMessages: []string{"Loop-invariant code detected inside loop"},
		},
		{
			Name: "call using the loop variable stays quiet",
			Source: `for line in lines:
    hit = pattern.search(line)
    print(hit)
`,
			WantIssues: 0,
		},
		{
			Name: "compile outside the loop is fine",
			Source: `pattern = re.compile(r"\d+")
for item in items:
    print(item)
`,
			WantIssues: 0,
		},
		{
			Name: "tuple target skips invariant check",
			Source: `for key, value in pairs:
    found = matcher.match(something)
`,
			WantIssues: 0,
		},
		{
			Name: "suppressed loop",
			Source: `items = [1, 2, 3]
for i in range(len(items)):  # pyvet: ignore
    print(items[i])
`,
			WantIssues: 0,
		},
	})
}

func TestDetector_NestedCounterReportedForBothLoops(t *testing.T) {
	source := `for row in grid:
    for cell in row:
        hits += 1
`
	in := testutil.MakeInput(t, "test.py", source)

	issues, err := New().Check(in)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}

	// The increment sits in both loop bodies, so both loops report it.
	var l002 int
	for _, iss := range issues {
		if iss.RuleID == "L002" {
			l002++
		}
	}
	if l002 != 2 {
		t.Errorf("got %d L002 issues, want 2 (outer and inner loop)", l002)
	}
}
