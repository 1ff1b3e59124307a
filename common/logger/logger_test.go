package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	cases := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		l, err := NewLogger(tc.level, "json", "familytree-data")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(tc.want), "level %q", tc.level)
		if tc.want > zapcore.DebugLevel {
			assert.False(t, l.Core().Enabled(tc.want-1), "level %q", tc.level)
		}
	}
}

func TestNewLogger_Console(t *testing.T) {
	l, err := NewLogger("info", "console", "")
	require.NoError(t, err)
	assert.NotNil(t, l)
}
