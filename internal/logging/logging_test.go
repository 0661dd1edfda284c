package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/rin/internal/config"
)

func TestOpenWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rin.log")

	log, closer, err := Open(config.LogConfig{Level: "info", File: path})
	require.NoError(t, err)

	log.Info().Str("component", "test").Msg("hello")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hello"`)
	assert.Contains(t, string(data), `"app":"rin"`)
}

func TestOpenLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rin.log")

	log, closer, err := Open(config.LogConfig{Level: "warn", File: path})
	require.NoError(t, err)

	log.Info().Msg("quiet")
	log.Warn().Msg("loud")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestOpenBadLevel(t *testing.T) {
	_, _, err := Open(config.LogConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestOpenNoWriters(t *testing.T) {
	log, closer, err := Open(config.LogConfig{Level: "info"})
	require.NoError(t, err)
	log.Info().Msg("discarded")
	require.NoError(t, closer())
}
