package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/pyvet/pyvet/internal/analyzer"
)

// buildChannel wires analyzer diagnostics to the terminal. It returns
// the channel and a stop function that clears any in-place progress
// line; the stop function is safe to call more than once.
func buildChannel(cmd *cli.Command) (analyzer.Channel, func()) {
	if cmd.Bool("quiet") {
		return analyzer.Discard(), func() {}
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cmd.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	logChannel := analyzer.NewLogChannel(logger)

	// In-place progress needs a real terminal, and verbose logging
	// already prints each progress update as a debug line.
	if cmd.Bool("verbose") || !isatty.IsTerminal(os.Stderr.Fd()) {
		return logChannel, func() {}
	}

	pc := &progressChannel{LogChannel: logChannel, out: os.Stderr}
	return pc, pc.Stop
}

// progressChannel renders progress updates as a single status line that
// rewrites itself in place on stderr.
type progressChannel struct {
	*analyzer.LogChannel

	mu     sync.Mutex
	out    io.Writer
	active bool
}

// Progressf overwrites the current status line.
func (p *progressChannel) Progressf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "\r\033[2K"+format, args...)
	p.active = true
}

// Stop clears the status line so subsequent output starts cleanly.
func (p *progressChannel) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		fmt.Fprint(p.out, "\r\033[2K")
		p.active = false
	}
}
