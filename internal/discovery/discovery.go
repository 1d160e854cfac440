// Package discovery finds Python source files with glob pattern support.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Options configures file discovery behavior.
type Options struct {
	// Patterns are the file name globs to match inside directories
	// (default: DefaultPatterns()).
	Patterns []string

	// Exclude lists substrings; a file whose path contains any of them
	// is skipped.
	Exclude []string
}

// DefaultPatterns returns the default Python source patterns.
func DefaultPatterns() []string {
	return []string{"*.py"}
}

// Discover finds Python files matching the given inputs.
// Each input can be:
// - A specific file path
// - A directory (searched recursively with default patterns)
// - A glob pattern (expanded with doublestar)
//
// Results are deduplicated by absolute path and sorted. A literal input
// path that does not exist is an error.
func Discover(inputs []string, opts Options) ([]string, error) {
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns()
	}

	seen := make(map[string]bool)
	var results []string

	for _, input := range inputs {
		discovered, err := discoverInput(input, opts, seen)
		if err != nil {
			return nil, err
		}
		results = append(results, discovered...)
	}

	slices.Sort(results)
	return results, nil
}

// discoverInput processes a single input (file, directory, or glob pattern).
func discoverInput(input string, opts Options, seen map[string]bool) ([]string, error) {
	// Glob characters make os.Stat meaningless (and invalid on Windows),
	// so expand those inputs directly.
	if containsGlobChars(input) {
		return globMatches(input, opts, seen)
	}

	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path does not exist: %s", input)
		}
		return nil, err
	}
	if info.IsDir() {
		return discoverDirectory(input, opts, seen)
	}
	return discoverFile(input, opts, seen)
}

// containsGlobChars returns true if the path contains glob special characters.
func containsGlobChars(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', ']':
			return true
		}
	}
	return false
}

// discoverFile admits an explicitly named file. Explicit inputs bypass the
// *.py pattern check so that oddly named scripts can still be analyzed,
// but exclusions apply.
func discoverFile(path string, opts Options, seen map[string]bool) ([]string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if isExcluded(absPath, opts.Exclude) || seen[absPath] {
		return nil, nil
	}
	seen[absPath] = true

	// Preserve the original path for display.
	return []string{path}, nil
}

// discoverDirectory recursively searches a directory for Python files.
func discoverDirectory(dir string, opts Options, seen map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var results []string
	for _, pattern := range opts.Patterns {
		patterns := []string{
			filepath.Join(absDir, "**", pattern), // Recursive
			filepath.Join(absDir, pattern),       // Direct
		}
		for _, p := range patterns {
			discovered, err := globMatches(p, opts, seen)
			if err != nil {
				return nil, err
			}
			results = append(results, discovered...)
		}
	}

	return results, nil
}

// globMatches expands a glob pattern and returns matching files.
func globMatches(pattern string, opts Options, seen map[string]bool) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	var results []string
	for _, match := range matches {
		absPath, err := filepath.Abs(match)
		if err != nil {
			return nil, err
		}

		if isExcluded(absPath, opts.Exclude) || seen[absPath] {
			continue
		}
		seen[absPath] = true
		results = append(results, absPath)
	}

	return results, nil
}

// isExcluded checks whether any exclusion entry occurs as a substring of
// the path. Substring matching keeps exclusions trivial to reason about:
// "test_" skips test files anywhere, "/migrations/" skips a directory.
func isExcluded(absPath string, exclude []string) bool {
	if len(exclude) == 0 {
		return false
	}
	pathSlash := filepath.ToSlash(absPath)
	for _, sub := range exclude {
		if sub != "" && strings.Contains(pathSlash, filepath.ToSlash(sub)) {
			return true
		}
	}
	return false
}
