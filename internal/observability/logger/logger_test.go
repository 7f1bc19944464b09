package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildStampsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(Config{Environment: "test", Version: "1.0.0"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Info("invoice created", zap.String("invoice_no", "INV/2024/001"))
	log.Debug("dropped at info level")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "billdesk", entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "INV/2024/001", entry["invoice_no"])
	assert.Contains(t, entry, "ts")
}

func TestBuildRejectsUnknownLevel(t *testing.T) {
	_, err := build(Config{Level: "chatty"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestBuildDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(Config{Level: "debug", Format: "console", Debug: true}, zapcore.AddSync(&buf))
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log.Debug("render started")
	assert.Contains(t, buf.String(), "render started")
}
