package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromVerbosity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbosity int
		quiet     bool
		want      slog.Level
	}{
		{"Default", 0, false, slog.LevelWarn},
		{"Verbose", 1, false, slog.LevelInfo},
		{"VeryVerbose", 2, false, slog.LevelDebug},
		{"Max", 5, false, slog.LevelDebug},
		{"Quiet", 0, true, LevelSilent},
		{"QuietWins", 3, true, LevelSilent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LevelFromVerbosity(tt.verbosity, tt.quiet))
		})
	}
}

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	level, ok := LevelFromString(" DEBUG ")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, level)

	level, ok = LevelFromString("warning")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)

	level, ok = LevelFromString("loud")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelError, Resolve(0, false, "error"))
	assert.Equal(t, slog.LevelInfo, Resolve(1, false, "error"))
	assert.Equal(t, LevelSilent, Resolve(0, true, "debug"))
	assert.Equal(t, slog.LevelWarn, Resolve(0, false, ""))
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown key=value")

	NewDiscard().Error("dropped")
}
