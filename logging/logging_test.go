package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func keepLogger(t *testing.T) {
	orig := logger.Log
	t.Cleanup(func() { logger.Log = orig })
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	keepLogger(t)
	orig := logger.Log

	err := Init(Options{Level: "loud"})

	assert.Error(t, err)
	assert.Same(t, orig, logger.Log, "a bad level leaves the installed logger alone")
}

func TestInitSetsLevel(t *testing.T) {
	keepLogger(t)

	require.NoError(t, Init(Options{Level: "warn"}))

	assert.False(t, logger.Log.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Log.Core().Enabled(zap.ErrorLevel))
}

func TestInitWritesRotatedFile(t *testing.T) {
	keepLogger(t)

	path := filepath.Join(t.TempDir(), "heywrite.log")
	require.NoError(t, Init(Options{Level: "debug", File: path, JSON: true}))

	logger.Info("session started", zap.String("session", "abc"))
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"session started"`)
	assert.Contains(t, string(data), `"session":"abc"`)
}
