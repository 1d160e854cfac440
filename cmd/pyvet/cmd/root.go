package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pyvet/pyvet/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "pyvet",
		Usage:   "A structural quality analyzer for Python code",
		Version: version.Version(),
		Description: `pyvet analyzes Python source files without executing them.

It measures per-function complexity, finds duplicated logic across a
file, and flags patterns with simpler idiomatic alternatives.

Examples:
  pyvet check app.py
  pyvet check --format json src/
  pyvet check .`,
		Commands: []*cli.Command{
			checkCommand(),
			rulesCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
