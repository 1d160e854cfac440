package duplication

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyvet/pyvet/internal/pysrc"
)

// ExclusionRange marks an inclusive 1-based line range that never
// participates in duplicate detection.
type ExclusionRange struct {
	StartLine int
	EndLine   int
}

// overlaps reports whether the range shares any line with [start, end].
func (r ExclusionRange) overlaps(start, end int) bool {
	return end >= r.StartLine && start <= r.EndLine
}

// CodeBlock is a candidate window of source lines with its normalized
// token form.
type CodeBlock struct {
	StartLine  int
	EndLine    int
	Raw        string
	Tokens     []string
	Normalized string
}

// hash returns the content key used to bucket identical blocks.
func (b *CodeBlock) hash() string {
	sum := sha256.Sum256([]byte(b.Normalized))
	return hex.EncodeToString(sum[:])
}

// container literal node types whose spans are excluded. Data tables
// produce high token overlap without being refactorable duplication.
var containerTypes = map[string]bool{
	"list":       true,
	"set":        true,
	"dictionary": true,
	"tuple":      true,
}

// exclusionRanges collects the line spans of container literals and
// docstrings in one tree pass.
func exclusionRanges(tree *pysrc.Tree) []ExclusionRange {
	var ranges []ExclusionRange
	pysrc.Walk(tree.Root(), func(n *sitter.Node) bool {
		if containerTypes[n.Type()] || pysrc.IsDocstring(n) {
			ranges = append(ranges, ExclusionRange{
				StartLine: pysrc.Line(n),
				EndLine:   pysrc.EndLine(n),
			})
			// Nested literals are already covered by this span.
			return false
		}
		return true
	})
	return ranges
}

// tokenIndex provides per-line access to the file's normalized tokens.
type tokenIndex struct {
	byRow map[int][]pysrc.Token // keyed by 0-based start row
	multi []pysrc.Token         // tokens spanning more than one row
}

func indexTokens(toks []pysrc.Token) *tokenIndex {
	idx := &tokenIndex{byRow: make(map[int][]pysrc.Token)}
	for _, t := range toks {
		idx.byRow[t.Row] = append(idx.byRow[t.Row], t)
		if t.EndRow > t.Row {
			idx.multi = append(idx.multi, t)
		}
	}
	return idx
}

// blockTokens normalizes the window [startLine, endLine] (1-based,
// inclusive). The bool result is false when the window cannot be
// represented: it splits a multi-line token or holds no tokens at all.
// A "\n" marker separates tokens on different rows.
func (idx *tokenIndex) blockTokens(startLine, endLine int) ([]string, bool) {
	startRow, endRow := startLine-1, endLine-1

	for _, t := range idx.multi {
		startsBefore := t.Row < startRow && t.EndRow >= startRow
		endsAfter := t.Row <= endRow && t.EndRow > endRow
		if startsBefore || endsAfter {
			return nil, false
		}
	}

	var out []string
	lastEnd := -1
	for row := startRow; row <= endRow; row++ {
		for _, t := range idx.byRow[row] {
			if len(out) > 0 && t.Row > lastEnd {
				out = append(out, "\n")
			}
			out = append(out, t.Text)
			lastEnd = t.EndRow
		}
	}

	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// isMeaningful reports whether the window holds at least minLines lines
// of actual code once blanks and comment lines are stripped.
func isMeaningful(lines []string, minLines int) bool {
	code := 0
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		code++
	}
	return code >= minLines
}

// collectBlocks slides every candidate window over the file and buckets
// the surviving blocks by content hash. Bucket keys are returned in
// first-seen order (start ascending, then length ascending), which makes
// the later reporting pass deterministic.
func collectBlocks(lines []string, excl []ExclusionRange, idx *tokenIndex, minLines, maxLines int) (map[string][]*CodeBlock, []string) {
	buckets := make(map[string][]*CodeBlock)
	var order []string

	total := len(lines)
	for start := 1; start <= total; start++ {
		remaining := total - start + 1
		limit := maxLines
		if remaining < limit {
			limit = remaining
		}
		// Windows anchor on a code line. A blank or comment lead-in
		// would report the same region at a shifted start.
		firstLine := strings.TrimSpace(lines[start-1])
		if firstLine == "" || strings.HasPrefix(firstLine, "#") {
			continue
		}

	window:
		for size := minLines; size <= limit; size++ {
			end := start + size - 1

			for _, r := range excl {
				if r.overlaps(start, end) {
					continue window
				}
			}

			blockLines := lines[start-1 : end]
			if !isMeaningful(blockLines, minLines) {
				continue
			}

			toks, ok := idx.blockTokens(start, end)
			if !ok {
				continue
			}

			block := &CodeBlock{
				StartLine:  start,
				EndLine:    end,
				Raw:        strings.Join(blockLines, "\n"),
				Tokens:     toks,
				Normalized: strings.Join(toks, " "),
			}

			key := block.hash()
			if _, seen := buckets[key]; !seen {
				order = append(order, key)
			}
			buckets[key] = append(buckets[key], block)
		}
	}

	return buckets, order
}
