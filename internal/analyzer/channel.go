package analyzer

import "github.com/sirupsen/logrus"

// Level is a log level for the Channel interface.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Channel receives diagnostic output from the analysis pipeline.
// Implementations map to environment-specific UX (CLI stderr, test
// buffers) and must be safe for concurrent use: the worker pool reports
// progress from multiple goroutines.
type Channel interface {
	Log(level Level, msg string)
	Warn(msg string)
	Progressf(format string, args ...any)
}

// discardChannel drops everything. Installed when callers pass a nil
// channel.
type discardChannel struct{}

func (discardChannel) Log(Level, string)        {}
func (discardChannel) Warn(string)              {}
func (discardChannel) Progressf(string, ...any) {}

// Discard returns a channel that drops all diagnostics.
func Discard() Channel {
	return discardChannel{}
}

// LogChannel routes diagnostics to a logrus logger. Progress updates are
// emitted at debug level so they only appear under verbose logging;
// interactive front ends layer their own progress rendering on top.
type LogChannel struct {
	Logger *logrus.Logger
}

// NewLogChannel creates a Channel backed by the given logger.
func NewLogChannel(logger *logrus.Logger) *LogChannel {
	return &LogChannel{Logger: logger}
}

// Log writes msg at the corresponding logrus level.
func (c *LogChannel) Log(level Level, msg string) {
	switch level {
	case LevelDebug:
		c.Logger.Debug(msg)
	case LevelWarn:
		c.Logger.Warn(msg)
	case LevelError:
		c.Logger.Error(msg)
	default:
		c.Logger.Info(msg)
	}
}

// Warn writes msg at warning level.
func (c *LogChannel) Warn(msg string) {
	c.Logger.Warn(msg)
}

// Progressf writes a formatted progress update at debug level.
func (c *LogChannel) Progressf(format string, args ...any) {
	c.Logger.Debugf(format, args...)
}
