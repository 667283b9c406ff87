package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, err := New(Options{Env: "test", Dir: dir, Console: &console})
	require.NoError(t, err)

	logger.Info("planning run finished", zap.Int("slots", 4))
	logger.Debug("rotation detail")
	_ = logger.Sync()

	assert.Contains(t, console.String(), "planning run finished")
	assert.NotContains(t, console.String(), "rotation detail", "debug stays out of the console by default")

	files, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"slots":4`)
	assert.Contains(t, string(data), "rotation detail")
}

func TestNew_Verbose(t *testing.T) {
	var console bytes.Buffer

	logger, err := New(Options{Dir: t.TempDir(), Verbose: true, Console: &console})
	require.NoError(t, err)

	logger.Debug("rotation detail")
	_ = logger.Sync()

	assert.Contains(t, console.String(), "rotation detail")
}
