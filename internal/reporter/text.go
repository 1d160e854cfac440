package reporter

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/pyvet/pyvet/internal/analyzer"
	"github.com/pyvet/pyvet/internal/rules"
)

// Styles for different parts of the output
var (
	// Color detection using termenv (respects NO_COLOR, CLICOLOR_FORCE, terminal detection)
	useColors = termenv.EnvColorProfile() != termenv.Ascii

	// File header style
	fileStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("44")) // Cyan

	// Parse error style
	parseErrStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	// Suggestion style
	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")) // Green

	// Snippet style (used when syntax highlighting is off)
	snippetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	// Summary banner style
	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")) // Yellow

	// Alert style for the high/medium trailer
	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	// Severity styles
	severityStyles = map[rules.Severity]lipgloss.Style{
		rules.SeverityHigh: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		rules.SeverityMedium: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")), // Yellow
		rules.SeverityLow: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")), // Blue
		rules.SeverityInfo: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("44")), // Cyan
	}

	// Severity icons, with ASCII fallbacks for terminals that cannot
	// render Unicode.
	severityIcons = map[rules.Severity]string{
		rules.SeverityHigh:   "✗",
		rules.SeverityMedium: "⚠",
		rules.SeverityLow:    "ℹ",
		rules.SeverityInfo:   "→",
	}
	asciiIcons = map[rules.Severity]string{
		rules.SeverityHigh:   "X",
		rules.SeverityMedium: "!",
		rules.SeverityLow:    "i",
		rules.SeverityInfo:   ">",
	}
)

// severityOrder is the rendering order for grouping and summaries.
var severityOrder = []rules.Severity{
	rules.SeverityHigh,
	rules.SeverityMedium,
	rules.SeverityLow,
	rules.SeverityInfo,
}

// TextOptions configures the text reporter output.
type TextOptions struct {
	// Color enables/disables colored output. Default: auto-detect.
	Color *bool

	// SyntaxHighlight enables Python syntax highlighting in snippets.
	SyntaxHighlight bool

	// ShowSource shows source code snippets. Default: true.
	ShowSource bool

	// GroupBy selects "file" (default) or "severity" grouping.
	GroupBy string

	// ASCII forces plain ASCII severity markers.
	ASCII bool

	// ChromaStyle is the Chroma style name for syntax highlighting.
	// Default: "monokai" for dark terminals, "github" for light.
	ChromaStyle string
}

// DefaultTextOptions returns sensible defaults for text output.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Color:           nil, // auto-detect
		SyntaxHighlight: true,
		ShowSource:      true,
		GroupBy:         "file",
		ChromaStyle:     "", // auto-detect
	}
}

// TextReporter renders results as styled text.
type TextReporter struct {
	w         io.Writer
	opts      TextOptions
	color     bool
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// NewTextReporter creates a new text reporter with the given options.
func NewTextReporter(w io.Writer, opts TextOptions) *TextReporter {
	r := &TextReporter{w: w, opts: opts, color: useColors}
	if opts.Color != nil {
		r.color = *opts.Color
	}

	if r.color && opts.SyntaxHighlight {
		r.lexer = lexers.Get("python")
		if r.lexer == nil {
			r.lexer = lexers.Fallback
		}
		r.lexer = chroma.Coalesce(r.lexer)

		// Select style based on terminal background or user preference
		styleName := opts.ChromaStyle
		if styleName == "" {
			if lipgloss.HasDarkBackground() {
				styleName = "monokai"
			} else {
				styleName = "github"
			}
		}
		r.style = styles.Get(styleName)
		if r.style == nil {
			r.style = styles.Fallback
		}

		r.formatter = formatters.Get("terminal256")
		if r.formatter == nil {
			r.formatter = formatters.Fallback
		}
	}

	return r
}

// Report implements Reporter.
func (r *TextReporter) Report(result *analyzer.AnalysisResult, _ ReportMetadata) error {
	switch r.opts.GroupBy {
	case "severity":
		r.reportBySeverity(result)
	default:
		r.reportByFile(result)
	}
	r.printSummary(result)
	return nil
}

// reportByFile prints issues grouped under their file, in result order.
func (r *TextReporter) reportByFile(result *analyzer.AnalysisResult) {
	for i := range result.Files {
		fa := &result.Files[i]

		if fa.ParseError != "" {
			header := fmt.Sprintf("%s %s", r.icon(rules.SeverityHigh), fa.FilePath)
			fmt.Fprintln(r.w, "\n"+r.render(parseErrStyle, header))
			fmt.Fprintf(r.w, "  Parse error: %s\n", fa.ParseError)
			continue
		}
		if !fa.HasIssues() {
			continue
		}

		fmt.Fprintln(r.w, "\n"+r.render(fileStyle, fa.FilePath))

		sorted := slices.Clone(fa.Issues)
		slices.SortStableFunc(sorted, func(a, b rules.Issue) int {
			return a.Line - b.Line
		})
		for _, issue := range sorted {
			r.printIssue(issue, false)
		}
	}
}

// reportBySeverity prints all issues bucketed by severity, most severe
// first. Parse failures only surface in the summary under this grouping.
func (r *TextReporter) reportBySeverity(result *analyzer.AnalysisResult) {
	buckets := make(map[rules.Severity][]rules.Issue)
	for _, issue := range result.AllIssues() {
		buckets[issue.Severity] = append(buckets[issue.Severity], issue)
	}

	for _, sev := range severityOrder {
		issues := buckets[sev]
		if len(issues) == 0 {
			continue
		}

		header := strings.ToUpper(sev.String()) + " Severity Issues"
		fmt.Fprintln(r.w, "\n"+r.render(r.severityStyle(sev), header))

		slices.SortStableFunc(issues, func(a, b rules.Issue) int {
			if c := strings.Compare(a.File, b.File); c != 0 {
				return c
			}
			return a.Line - b.Line
		})
		for _, issue := range issues {
			r.printIssue(issue, true)
		}
	}
}

// printIssue renders one finding: marker line, message, optional
// suggestion and snippet.
func (r *TextReporter) printIssue(issue rules.Issue, includeFile bool) {
	location := fmt.Sprintf("%d:%d", issue.Line, issue.Column)
	if includeFile {
		location = fmt.Sprintf("%s:%s", issue.File, location)
	}

	head := fmt.Sprintf("%s [%s] %s", r.icon(issue.Severity), issue.RuleID, location)
	fmt.Fprintln(r.w, "  "+r.render(r.severityStyle(issue.Severity), head))
	fmt.Fprintln(r.w, "    "+issue.Message)

	if issue.Suggestion != "" {
		arrow := "→"
		if r.opts.ASCII {
			arrow = ">"
		}
		fmt.Fprintln(r.w, "    "+r.render(suggestionStyle, arrow+" "+issue.Suggestion))
	}

	if r.opts.ShowSource && issue.CodeSnippet != "" {
		for _, line := range strings.Split(issue.CodeSnippet, "\n") {
			fmt.Fprintln(r.w, "    "+r.renderSnippetLine(line))
		}
	}
}

// printSummary renders the closing statistics block.
func (r *TextReporter) printSummary(result *analyzer.AnalysisResult) {
	banner := strings.Repeat("=", 70)
	fmt.Fprintln(r.w, "\n"+r.render(summaryStyle, banner))
	fmt.Fprintln(r.w, r.render(summaryStyle, "Summary"))
	fmt.Fprintln(r.w, r.render(summaryStyle, banner))

	fmt.Fprintf(r.w, "\nFiles analyzed: %d\n", result.TotalFiles())
	fmt.Fprintf(r.w, "Files with issues: %d\n", result.FilesWithIssues())
	if n := result.FilesWithParseErrors(); n > 0 {
		fmt.Fprintf(r.w, "Files with parse errors: %d\n", n)
	}
	fmt.Fprintf(r.w, "Total issues: %d\n", result.TotalIssues())

	if result.TotalIssues() > 0 {
		counts := result.CountBySeverity()
		fmt.Fprintln(r.w, "\nIssues by severity:")
		for _, sev := range severityOrder {
			if counts[sev] == 0 {
				continue
			}
			line := fmt.Sprintf("%s: %d", strings.ToUpper(sev.String()), counts[sev])
			fmt.Fprintln(r.w, "  "+r.render(r.severityStyle(sev), line))
		}
	}

	if result.IssuesAtLeast(rules.SeverityMedium) > 0 {
		trailer := r.icon(rules.SeverityMedium) + " High or medium severity issues found"
		fmt.Fprintln(r.w, "\n"+r.render(alertStyle, trailer))
	}
}

// render applies a style when color is enabled.
func (r *TextReporter) render(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// renderSnippetLine highlights a snippet line, falling back to a plain
// gray rendering.
func (r *TextReporter) renderSnippetLine(line string) string {
	if r.color && r.lexer != nil && r.style != nil && r.formatter != nil {
		return r.highlightLine(line)
	}
	return r.render(snippetStyle, line)
}

// highlightLine applies syntax highlighting to a single line.
func (r *TextReporter) highlightLine(line string) string {
	iterator, err := r.lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var buf bytes.Buffer
	err = r.formatter.Format(&buf, r.style, iterator)
	if err != nil {
		return line
	}

	// Trim trailing newline that formatter might add
	return strings.TrimSuffix(buf.String(), "\n")
}

func (r *TextReporter) severityStyle(sev rules.Severity) lipgloss.Style {
	if style, ok := severityStyles[sev]; ok {
		return style
	}
	return severityStyles[rules.SeverityMedium]
}

func (r *TextReporter) icon(sev rules.Severity) string {
	icons := severityIcons
	fallback := "•"
	if r.opts.ASCII {
		icons = asciiIcons
		fallback = "*"
	}
	if icon, ok := icons[sev]; ok {
		return icon
	}
	return fallback
}
