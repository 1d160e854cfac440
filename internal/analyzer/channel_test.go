package analyzer

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscard(t *testing.T) {
	t.Parallel()

	ch := Discard()
	ch.Log(LevelError, "dropped")
	ch.Warn("dropped")
	ch.Progressf("dropped %d", 1)
}

func TestLogChannel_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level Level
		want  logrus.Level
	}{
		{"debug", LevelDebug, logrus.DebugLevel},
		{"info", LevelInfo, logrus.InfoLevel},
		{"warn", LevelWarn, logrus.WarnLevel},
		{"error", LevelError, logrus.ErrorLevel},
		{"unknown maps to info", Level(42), logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)

			NewLogChannel(logger).Log(tt.level, "hello")

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.want, entry.Level)
			assert.Equal(t, "hello", entry.Message)
		})
	}
}

func TestLogChannel_Warn(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	NewLogChannel(logger).Warn("careful")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "careful", entry.Message)
}

func TestLogChannel_Progressf(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	NewLogChannel(logger).Progressf("Analyzed %d/%d files", 3, 7)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "Analyzed 3/7 files", entry.Message)
}

func TestLogChannel_ProgressHiddenByDefault(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	NewLogChannel(logger).Progressf("Analyzed %d/%d files", 1, 1)
	assert.Nil(t, hook.LastEntry(), "progress stays quiet unless verbose")
}
