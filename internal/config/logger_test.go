package config

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		name       string
		cfg        LoggerConfig
		expectEnv  string
		expectInfo bool
	}{
		{name: "info with environment", cfg: LoggerConfig{Level: "info", Format: "json", Environment: "staging"}, expectEnv: "staging", expectInfo: true},
		{name: "warn drops info", cfg: LoggerConfig{Level: "warn", Format: "json"}, expectInfo: false},
		{name: "unknown level falls back to info", cfg: LoggerConfig{Level: "loud", Format: "json"}, expectInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tt.cfg, &buf)

			logger.Info().Dur("duration", 1500*time.Microsecond).Msg("request completed")

			if !tt.expectInfo {
				assert.Zero(t, buf.Len())
				return
			}

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, AppName, entry["app"])
			assert.Equal(t, "request completed", entry["message"])
			assert.InDelta(t, 1.5, entry["duration"], 0.0001)
			if tt.expectEnv != "" {
				assert.Equal(t, tt.expectEnv, entry["env"])
			} else {
				assert.NotContains(t, entry, "env")
			}
		})
	}
}

func TestNewLogger_Console(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := newLogger(LoggerConfig{Level: "debug", Format: "console"}, &buf)
	logger.Debug().Str("rfq_id", "abc").Msg("loaded")

	out := buf.String()
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "rfq_id=")
	assert.False(t, json.Valid(buf.Bytes()))
}
