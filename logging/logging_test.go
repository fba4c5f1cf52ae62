package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_todo/config"
)

func TestNewWritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "go_todo.log")

	logger, err := New(config.LoggerConfig{Level: "info", Encoding: "json", File: file})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("task created")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"task created"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = New(config.LoggerConfig{Encoding: "xml"})
	assert.Error(t, err)
}
