package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	quiet, err := logging.New(false)
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.InfoLevel))

	loud, err := logging.New(true)
	require.NoError(t, err)
	assert.True(t, loud.Core().Enabled(zapcore.DebugLevel))
}

func TestRunFile(t *testing.T) {
	at := time.Date(2024, 3, 8, 17, 0, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "deploy-20240308T170005Z.jsonl"), logging.RunFile("logs", "deploy", at))
}

func TestWithRunLogWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allocate.jsonl")

	logger, closeFn, err := logging.WithRunLog(zap.NewNop(), path)
	require.NoError(t, err)
	logger.Info("Iteration #1", zap.String("cohort", "team"), zap.Uint64("nonce", 7))
	logger.Debug("Fee data", zap.Int("iteration", 1))
	require.NoError(t, closeFn())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Iteration #1", entry["msg"])
	assert.Equal(t, "team", entry["cohort"])
	assert.Equal(t, float64(7), entry["nonce"])
}

func TestWithRunLogBadPath(t *testing.T) {
	_, _, err := logging.WithRunLog(zap.NewNop(), filepath.Join(t.TempDir(), "missing", "x.jsonl"))
	assert.Error(t, err)
}
