// Package analyzer orchestrates detector execution over Python files.
//
// The per-file pipeline: read → source map → parse → suppression table →
// run enabled detectors. Multi-file analysis fans out over a bounded
// worker pool and collects results as they complete. Failures stay local:
// a file that cannot be read or parsed is recorded on its FileAnalysis,
// and a detector that errors or panics is logged as a DetectorFailure
// while the remaining detectors still run.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pyvet/pyvet/internal/config"
	"github.com/pyvet/pyvet/internal/directive"
	"github.com/pyvet/pyvet/internal/discovery"
	"github.com/pyvet/pyvet/internal/pysrc"
	"github.com/pyvet/pyvet/internal/rules"
	"github.com/pyvet/pyvet/internal/sourcemap"
)

// defaultWorkers is the pool size when the configuration does not set one.
const defaultWorkers = 4

// Analyzer runs the enabled detectors over Python source files.
// It is immutable after construction and safe for concurrent use.
type Analyzer struct {
	cfg       *config.Config
	detectors []rules.Detector
	channel   Channel
}

// New creates an analyzer from the given configuration, running every
// detector in the default registry that the configuration enables.
// A nil channel discards diagnostics.
func New(cfg *config.Config, ch Channel) *Analyzer {
	return NewWithRegistry(cfg, ch, rules.DefaultRegistry())
}

// NewWithRegistry creates an analyzer with a custom detector registry.
// This allows isolated detector sets per invocation (useful for testing).
func NewWithRegistry(cfg *config.Config, ch Channel, registry *rules.Registry) *Analyzer {
	if ch == nil {
		ch = Discard()
	}
	if registry == nil {
		registry = rules.DefaultRegistry()
	}

	var enabled []rules.Detector
	for _, d := range registry.All() {
		if d.Enabled(cfg) {
			enabled = append(enabled, d)
		}
	}
	return &Analyzer{cfg: cfg, detectors: enabled, channel: ch}
}

// Detectors returns the names of the detectors this analyzer runs, in
// execution order.
func (a *Analyzer) Detectors() []string {
	names := make([]string, len(a.detectors))
	for i, d := range a.detectors {
		names[i] = d.Name()
	}
	return names
}

// AnalyzeFile reads and analyzes one Python file. Read and parse failures
// are recorded on the returned FileAnalysis rather than returned as
// errors.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) FileAnalysis {
	source, err := os.ReadFile(path)
	if err != nil {
		a.channel.Log(LevelError, fmt.Sprintf("Error analyzing %s: %v", path, err))
		return FileAnalysis{
			FilePath:   path,
			ParseError: fmt.Sprintf("Error analyzing file: %v", err),
		}
	}
	return a.AnalyzeSource(ctx, path, source)
}

// AnalyzeSource analyzes in-memory content under the given path. The path
// is used for issue locations and diagnostics only; nothing is read from
// disk.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte) FileAnalysis {
	fa := FileAnalysis{FilePath: path}

	sm := sourcemap.New(source)
	fa.LinesOfCode = linesOfCode(sm)

	tree, err := pysrc.Parse(ctx, source)
	if err != nil {
		a.channel.Log(LevelError, fmt.Sprintf("Error analyzing %s: %v", path, err))
		fa.ParseError = fmt.Sprintf("Error analyzing file: %v", err)
		return fa
	}
	if line, bad := tree.SyntaxError(); bad {
		fa.ParseError = fmt.Sprintf("Syntax error: invalid syntax at line %d", line)
		return fa
	}

	in := &rules.Input{
		FilePath:     path,
		Tree:         tree,
		Map:          sm,
		Suppressions: directive.Build(sm.Lines()),
		Config:       a.cfg,
	}
	fa.Issues = a.runDetectors(in)
	return fa
}

// linesOfCode counts source lines the way an editor shows them: a
// trailing newline does not start another line.
func linesOfCode(sm *sourcemap.SourceMap) int {
	n := sm.LineCount()
	if n > 0 && sm.Line(n-1) == "" {
		n--
	}
	return n
}

// runDetectors executes every enabled detector against one file.
// Issues a detector returned before failing are kept.
func (a *Analyzer) runDetectors(in *rules.Input) []rules.Issue {
	var issues []rules.Issue
	for _, det := range a.detectors {
		found, err := a.runDetector(det, in)
		issues = append(issues, found...)
		if err != nil {
			fail := &DetectorFailure{Detector: det.Name(), File: in.FilePath, Err: err}
			a.channel.Log(LevelError, fail.Error())
		}
	}
	return issues
}

// runDetector isolates one detector invocation, converting a panic into
// an error so a buggy detector cannot take down the whole file.
func (a *Analyzer) runDetector(det rules.Detector, in *rules.Input) (issues []rules.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return det.Check(in)
}

// AnalyzeFiles discovers Python files from the given inputs (files,
// directories, or glob patterns) and analyzes them concurrently. Results
// arrive in completion order; callers that need stable output sort them.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, inputs []string) (*AnalysisResult, error) {
	files, err := discovery.Discover(inputs, discovery.Options{
		Exclude: a.cfg.Analysis.Exclude,
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		a.channel.Warn("No Python files found in " + strings.Join(inputs, ", "))
		return NewResult(), nil
	}
	return a.analyzePool(ctx, files)
}

// AnalyzeDirectory analyzes every Python file under dir.
func (a *Analyzer) AnalyzeDirectory(ctx context.Context, dir string) (*AnalysisResult, error) {
	return a.AnalyzeFiles(ctx, []string{dir})
}

// analyzePool fans the file list out over a bounded worker pool.
func (a *Analyzer) analyzePool(ctx context.Context, files []string) (*AnalysisResult, error) {
	workers := a.cfg.Analysis.MaxWorkers
	if workers <= 0 {
		workers = defaultWorkers
	}

	result := NewResult()
	total := len(files)

	// Semaphore channel for concurrency limiting.
	sem := make(chan struct{}, workers)

	var (
		wg       sync.WaitGroup
		resultMu sync.Mutex
	)

	for _, path := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			// Acquire semaphore (respects context cancellation).
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			fa := a.analyzeFileSafe(ctx, path)

			resultMu.Lock()
			result.Add(fa)
			done := result.TotalFiles()
			resultMu.Unlock()

			a.channel.Progressf("Analyzed %d/%d files", done, total)
		}(path)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// analyzeFileSafe converts a panic escaping the per-file pipeline into a
// synthetic failed analysis so one bad file cannot take down the pool.
func (a *Analyzer) analyzeFileSafe(ctx context.Context, path string) (fa FileAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			a.channel.Log(LevelError, fmt.Sprintf("Error analyzing %s: %v", path, r))
			fa = FileAnalysis{
				FilePath:   path,
				ParseError: fmt.Sprintf("Analysis failed: %v", r),
			}
		}
	}()
	return a.AnalyzeFile(ctx, path)
}

// DetectorFailure describes a detector that returned an error or panicked
// while checking a file. Failures are diagnostics, not fatal: remaining
// detectors still run and issues gathered before the failure are kept.
type DetectorFailure struct {
	Detector string
	File     string
	Err      error
}

func (e *DetectorFailure) Error() string {
	return fmt.Sprintf("detector %s failed on %s: %v", e.Detector, e.File, e.Err)
}

func (e *DetectorFailure) Unwrap() error {
	return e.Err
}
