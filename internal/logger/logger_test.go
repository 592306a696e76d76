package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/homeloto/retail-api/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	l, err := New("production", &config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Info("draw resolved", zap.String("draw_id", "105"))
	_ = l.Sync()

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"draw_id":"105"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("production", &config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestInitReplacesGlobal(t *testing.T) {
	require.NoError(t, Init("development", nil))
	assert.NotNil(t, zap.L())
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init("production", &config.LogConfig{Level: "info"}))
	assert.False(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, SetLevel("debug"))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, SetLevel("warn"))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))

	assert.Error(t, SetLevel("loud"))
	assert.True(t, zap.L().Core().Enabled(zap.WarnLevel))
}
