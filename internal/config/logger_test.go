package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "debug", Output: &out})

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.WithField("file", "a.jpg").Debug("Processed image")
	assert.Contains(t, out.String(), "Processed image")
	assert.Contains(t, out.String(), "file=a.jpg")
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	logger := NewLogger(LoggerOptions{Level: "loud", Output: &bytes.Buffer{}})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewLoggerFile(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "picmark.log")

	logger := NewLogger(LoggerOptions{Level: "info", File: path, Output: &out})
	logger.Info("Batch processing completed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Batch processing completed")
	assert.Contains(t, out.String(), "Batch processing completed")
}
