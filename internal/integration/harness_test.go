package integration

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// checkCase describes one end-to-end run of `pyvet check` against a
// fixture under testdata/. Every fixture directory holds a single app.py
// unless isDir passes the whole directory as the target.
type checkCase struct {
	name       string
	dir        string
	args       []string
	env        []string
	wantExit   int
	snapExt    string // Snapshot file extension override (e.g. ".sarif", ".txt")
	snapRaw    bool   // If true, use MatchStandaloneSnapshot (plain text) instead of MatchStandaloneJSON
	isDir      bool   // If true, pass the directory instead of app.py
	afterCheck func(t *testing.T, stderr string)
}

func runCheckCase(t *testing.T, tc checkCase) {
	t.Helper()

	testdataDir := filepath.Join("testdata", tc.dir)

	args := make([]string, 0, 2+len(tc.args))
	args = append(args, "check")
	args = append(args, tc.args...)

	// Add target (directory or file)
	if tc.isDir {
		args = append(args, testdataDir)
	} else {
		args = append(args, filepath.Join(testdataDir, "app.py"))
	}

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"GOCOVERDIR="+coverageDir,
	)
	// Add test-specific environment variables
	cmd.Env = append(cmd.Env, tc.env...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	output := stdoutBuf.Bytes()

	// Check exit code
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("command failed to start: %v", err)
		}
	}
	if exitCode != tc.wantExit {
		t.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s", tc.wantExit, exitCode, output, stderrBuf.String())
	}

	// Normalize output for cross-platform snapshot comparison
	outputStr := string(output)
	// Normalize line endings (Windows CRLF -> LF) for consistent snapshots
	outputStr = strings.ReplaceAll(outputStr, "\r\n", "\n")

	// Replace absolute paths with relative ones for reproducible snapshots.
	wd, err := os.Getwd()
	if err == nil {
		wdSlash := filepath.ToSlash(wd) + "/"
		outputStr = strings.ReplaceAll(outputStr, wdSlash, "")
	}

	if tc.snapRaw {
		// Non-JSON formats (e.g. text .txt)
		snaps.WithConfig(snaps.Ext(tc.snapExt)).MatchStandaloneSnapshot(t, outputStr)
	} else {
		// MatchStandaloneJSON validates JSON and defaults to
		// .snap.json; Ext overrides for variants like .sarif.
		opts := []func(*snaps.Config){
			snaps.JSON(snaps.JSONConfig{
				SortKeys: true,
				Indent:   "  ",
			}),
		}
		if tc.snapExt != "" {
			opts = append(opts, snaps.Ext(tc.snapExt))
		}
		snaps.WithConfig(opts...).MatchStandaloneJSON(t, outputStr)
	}

	if tc.afterCheck != nil {
		tc.afterCheck(t, stderrBuf.String())
	}
}

// runCheckRaw runs the built binary with the given arguments and returns
// raw stdout, stderr, and exit code without snapshotting anything.
func runCheckRaw(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "GOCOVERDIR="+coverageDir)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	var exitCode int
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("command failed to start: %v", err)
		}
	}

	return outBuf.String(), errBuf.String(), exitCode
}
