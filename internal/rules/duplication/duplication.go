// Package duplication implements sliding-window duplicate code
// detection over normalized token streams.
//
// Candidate windows are bucketed by a content hash of their normalized
// tokens, so identifier names stay significant while literal values and
// comments do not. Within a bucket the earliest block is the canonical
// occurrence and is never reported; every later occurrence that clears
// the similarity threshold yields one finding pointing back at it.
package duplication

import (
	"fmt"
	"sort"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/rules"
)

// maxBlockSize caps the window length so pathological files stay cheap
// to scan.
const maxBlockSize = 20

// suppressionLookback is how many lines above a block start a
// suppression marker still applies. Blocks have no single anchor line
// the way expression findings do, so the window is wider.
const suppressionLookback = 3

// Detector reports duplicated code blocks.
type Detector struct{}

// New returns the duplication detector.
func New() *Detector {
	return &Detector{}
}

// Name implements rules.Detector.
func (*Detector) Name() string {
	return "duplication"
}

// Enabled implements rules.Detector.
func (*Detector) Enabled(cfg *config.Config) bool {
	return cfg.Duplication.Enabled
}

// Rules implements rules.Detector.
func (*Detector) Rules() []rules.RuleMetadata {
	return []rules.RuleMetadata{
		{
			ID:       "D001",
			Severity: rules.SeverityMedium,
			Summary:  "Duplicate code block",
			Description: "Two or more windows of source lines normalize to near-identical " +
				"token streams. Duplicated logic drifts apart under maintenance; extract " +
				"it into a shared function or method.",
		},
	}
}

// Check implements rules.Detector.
func (d *Detector) Check(in *rules.Input) ([]rules.Issue, error) {
	cfg := in.Config.Duplication
	lines := in.Map.Lines()
	if len(lines) < cfg.MinDuplicateLines {
		return nil, nil
	}

	excl := exclusionRanges(in.Tree)
	idx := indexTokens(in.Tree.Tokens())
	buckets, order := collectBlocks(lines, excl, idx, cfg.MinDuplicateLines, maxBlockSize)

	return d.report(in, buckets, order, cfg.SimilarityThreshold), nil
}

type lineRange struct {
	start, end int
}

func overlapsAny(start, end int, ranges []lineRange) bool {
	for _, r := range ranges {
		if end >= r.start && start <= r.end {
			return true
		}
	}
	return false
}

// report walks the buckets in first-seen order and emits one finding per
// duplicate occurrence. The reported set is shared across buckets so the
// overlapping sub-windows of an already-flagged region stay silent.
func (d *Detector) report(in *rules.Input, buckets map[string][]*CodeBlock, order []string, threshold float64) []rules.Issue {
	var issues []rules.Issue
	var reported []lineRange

	for _, key := range order {
		bucket := buckets[key]
		if len(bucket) < 2 {
			continue
		}

		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].StartLine < bucket[j].StartLine
		})
		canonical := bucket[0]

		for _, occ := range bucket[1:] {
			if in.Suppressions.MarkedNear(occ.StartLine, suppressionLookback) {
				continue
			}
			if occ.EndLine >= canonical.StartLine && occ.StartLine <= canonical.EndLine {
				continue
			}
			if overlapsAny(occ.StartLine, occ.EndLine, reported) {
				continue
			}
			if jaccard(canonical.Tokens, occ.Tokens) < threshold {
				continue
			}

			issue := rules.NewIssue(in.FilePath, occ.StartLine, 0, rules.SeverityMedium, "D001",
				fmt.Sprintf("Duplicate code block (lines %d-%d) similar to lines %d-%d",
					occ.StartLine, occ.EndLine, canonical.StartLine, canonical.EndLine)).
				WithSuggestion("Extract duplicated code to a reusable function or method").
				WithEndLine(occ.EndLine)
			issues = append(issues, issue)
			reported = append(reported, lineRange{occ.StartLine, occ.EndLine})
		}
	}

	return issues
}

// jaccard computes set similarity over the distinct tokens of two
// blocks. Token order and multiplicity do not matter here; the hash
// bucketing already grouped blocks by exact normalized content.
func jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func init() {
	rules.Register(New())
}
