package clog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
	}{
		{name: "nil config uses defaults", cfg: nil},
		{name: "json format", cfg: &Config{Level: "debug", Format: "json"}},
		{name: "console format", cfg: &Config{Level: "warn", Format: "console"}},
		{name: "empty fields filled with defaults", cfg: &Config{}},
		{name: "invalid level", cfg: &Config{Level: "verbose"}, expectError: true},
		{name: "invalid format", cfg: &Config{Format: "xml"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, valid := range []string{"debug", "info", "warn", "warning", "error", "INFO"} {
		_, err := parseLevel(valid)
		assert.NoError(t, err, valid)
	}
	_, err := parseLevel("trace")
	assert.Error(t, err)
}

func TestWith(t *testing.T) {
	logger, err := New(&Config{Level: "info", Format: "json"})
	require.NoError(t, err)

	child := logger.With(String("component", "cache"))
	require.NotNil(t, child)
	// 子 Logger 不影响父 Logger
	child.Info("child log", Int64("id", 1))
	logger.Info("parent log")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Info("dropped")
	logger.Error("dropped", Error(nil))
	assert.NotNil(t, logger.With(String("k", "v")))
}
