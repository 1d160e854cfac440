package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// benchBinaryPath holds the path to the built binary for benchmarks.
// It's initialized once via TestMain (which runs before benchmarks).
var benchBinaryPath string

func init() {
	// Use the same binary as integration tests if already built
	if binaryPath != "" {
		benchBinaryPath = binaryPath
	}
}

// ensureBinary builds the binary if not already built by TestMain.
func ensureBinary(b *testing.B) {
	b.Helper()
	if benchBinaryPath != "" {
		return
	}

	// Build the binary (this happens when running benchmarks without tests)
	tmpDir := b.TempDir()

	binaryName := "pyvet"
	if runtime.GOOS == "windows" {
		binaryName = "pyvet.exe"
	}
	benchBinaryPath = filepath.Join(tmpDir, binaryName)

	cmd := exec.Command("go", "build", "-o", benchBinaryPath, "github.com/pyvet/pyvet/cmd/pyvet")
	cmd.Env = append(os.Environ(), "GOEXPERIMENT=jsonv2")
	if out, err := cmd.CombinedOutput(); err != nil {
		b.Fatalf("failed to build binary: %s", out)
	}
}

// BenchmarkDiscovery measures discovering and analyzing every Python file
// in the integration testdata directory. This exercises file I/O,
// directory traversal, and the full analysis pipeline.
func BenchmarkDiscovery(b *testing.B) {
	ensureBinary(b)

	absTestdataDir, err := filepath.Abs("testdata")
	if err != nil {
		b.Fatal(err)
	}

	// Verify the directory exists
	if _, err := os.Stat(absTestdataDir); os.IsNotExist(err) {
		b.Fatalf("testdata directory does not exist: %s", absTestdataDir)
	}

	b.ResetTimer()
	for b.Loop() {
		cmd := exec.Command(benchBinaryPath, "check", "--format", "json", absTestdataDir)
		// Suppress output, we only care about timing
		cmd.Stdout = nil
		cmd.Stderr = nil
		// Ignore exit code - test fixtures have intentional findings
		_ = cmd.Run() //nolint:errcheck // intentionally ignoring exit code
	}
}

// BenchmarkSingleFile measures analyzing the mixed-pattern fixture, which
// triggers several detector families in one pass.
func BenchmarkSingleFile(b *testing.B) {
	ensureBinary(b)

	fixture := filepath.Join("testdata", "patterns", "app.py")
	absPath, err := filepath.Abs(fixture)
	if err != nil {
		b.Fatal(err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		b.Fatalf("benchmark fixture does not exist: %s", absPath)
	}

	b.ResetTimer()
	for b.Loop() {
		cmd := exec.Command(benchBinaryPath, "check", "--format", "json", absPath)
		cmd.Stdout = nil
		cmd.Stderr = nil
		_ = cmd.Run() //nolint:errcheck // intentionally ignoring exit code
	}
}
