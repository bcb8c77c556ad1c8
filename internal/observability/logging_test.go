package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info().Msg("dropped")
	logger.Warn().Str("backend_url", "http://localhost:8000").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "resume-analyzer", entry["service"])
	assert.Equal(t, "http://localhost:8000", entry["backend_url"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "console")

	logger.Debug().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	tests := []string{"", "verbose", "INFO"}
	for _, level := range tests {
		logger := NewLogger(&bytes.Buffer{}, level, "json")
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel(), level)
	}
}
