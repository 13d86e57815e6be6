package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"info", zapcore.InfoLevel},
		{"DEBUG", zapcore.DebugLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, cfg := range []Config{
		{Environment: "development", Level: "debug"},
		{Environment: "production", Level: "info"},
		{Environment: "production", Level: "warn", Lambda: true},
	} {
		logger, err := New(cfg)
		require.NoError(t, err)

		level, _ := ParseLevel(cfg.Level)
		assert.True(t, logger.Core().Enabled(level))
		assert.False(t, logger.Core().Enabled(level-1))
	}

	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}
