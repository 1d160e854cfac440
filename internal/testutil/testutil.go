// Package testutil provides test helpers for the Python analyzer.
package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/directive"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
	"github.com/pyvet/pyvet/internal/sourcemap"
)

// ParsePython parses Python source from a string and fails the test on a
// parser error or invalid syntax.
func ParsePython(tb testing.TB, source string) *pysrc.Tree {
	tb.Helper()

	tree, err := pysrc.Parse(context.Background(), []byte(source))
	if err != nil {
		tb.Fatalf("failed to parse python source: %v", err)
	}
	if line, bad := tree.SyntaxError(); bad {
		tb.Fatalf("test source has a syntax error at line %d:\n%s", line, source)
	}
	return tree
}

// MakeInput creates a detector Input for testing with default configuration.
func MakeInput(tb testing.TB, file, source string) *rules.Input {
	tb.Helper()
	return MakeInputWithConfig(tb, file, source, config.Default())
}

// MakeInputWithConfig creates a detector Input with explicit configuration.
func MakeInputWithConfig(tb testing.TB, file, source string, cfg *config.Config) *rules.Input {
	tb.Helper()

	tree := ParsePython(tb, source)
	sm := sourcemap.New([]byte(source))
	return &rules.Input{
		FilePath:     file,
		Tree:         tree,
		Map:          sm,
		Suppressions: directive.Build(sm.Lines()),
		Config:       cfg,
	}
}

// DetectorTestCase defines a test case for table-driven detector tests.
type DetectorTestCase struct {
	// Name is the test case name.
	Name string

	// Source is the Python source to analyze.
	Source string

	// Config is the optional analyzer configuration (nil = defaults).
	Config *config.Config

	// WantIssues is the expected number of issues.
	// Use -1 to skip the count check.
	WantIssues int

	// WantRules is the expected rule IDs in issue order (for detailed checks).
	WantRules []string

	// WantLines is the expected issue lines in issue order.
	WantLines []int

	// WantMessages are substrings expected in issue messages, in order.
	WantMessages []string
}

// RunDetectorTests runs a table of test cases against a detector.
func RunDetectorTests(t *testing.T, d rules.Detector, cases []DetectorTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			cfg := tc.Config
			if cfg == nil {
				cfg = config.Default()
			}
			input := MakeInputWithConfig(t, "test.py", tc.Source, cfg)

			issues, err := d.Check(input)
			if err != nil {
				t.Fatalf("Check returned error: %v", err)
			}

			if tc.WantIssues >= 0 && len(issues) != tc.WantIssues {
				t.Errorf("got %d issues, want %d", len(issues), tc.WantIssues)
				for i, iss := range issues {
					t.Logf("  [%d] %s L%d: %s", i, iss.RuleID, iss.Line, iss.Message)
				}
			}

			if len(tc.WantRules) > 0 {
				if len(issues) != len(tc.WantRules) {
					t.Errorf("got %d issues, want %d", len(issues), len(tc.WantRules))
				} else {
					for i, id := range tc.WantRules {
						if issues[i].RuleID != id {
							t.Errorf("issue[%d].RuleID = %q, want %q", i, issues[i].RuleID, id)
						}
					}
				}
			}

			if len(tc.WantLines) > 0 {
				for i, line := range tc.WantLines {
					if i >= len(issues) {
						t.Errorf("expected issue[%d] at line %d, but only got %d issues", i, line, len(issues))
						continue
					}
					if issues[i].Line != line {
						t.Errorf("issue[%d].Line = %d, want %d", i, issues[i].Line, line)
					}
				}
			}

			if len(tc.WantMessages) > 0 {
				for i, msg := range tc.WantMessages {
					if i >= len(issues) {
						t.Errorf("expected issue[%d] with message containing %q, but only got %d issues", i, msg, len(issues))
						continue
					}
					if !strings.Contains(issues[i].Message, msg) {
						t.Errorf("issue[%d].Message = %q, want substring %q", i, issues[i].Message, msg)
					}
				}
			}
		})
	}
}

// AssertNoIssues fails the test if there are any issues.
func AssertNoIssues(tb testing.TB, issues []rules.Issue) {
	tb.Helper()
	if len(issues) > 0 {
		tb.Errorf("expected no issues, got %d:", len(issues))
		for i, iss := range issues {
			tb.Logf("  [%d] %s L%d: %s", i, iss.RuleID, iss.Line, iss.Message)
		}
	}
}
