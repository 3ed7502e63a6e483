package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "warn")
	require.NoError(t, err)

	log.Info("CreateBooking: hidden %d", 1)
	log.Warn("CreateBooking: slot %s taken", "10:00")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "CreateBooking: slot 10:00 taken")
	assert.Contains(t, out, `"level":"warn"`)
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New("", "loud")
	assert.Error(t, err)
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	log, err := New(path, "info")
	require.NoError(t, err)
	log.Info("hello %s", "file")
	require.NoError(t, log.Close())

	assert.FileExists(t, path)
}
