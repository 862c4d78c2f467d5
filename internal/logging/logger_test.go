package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("error", true))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN", false))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense", false))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("", false))
}

func TestSetupDebugWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kconsole.log")

	logger, closer := Setup(Options{Mode: ModeTUI, Debug: true, File: path})
	logger.Info().Str("cluster", "prod").Msg("connected")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cluster":"prod"`)
	assert.Contains(t, string(data), `"message":"connected"`)
}

func TestSetupTUIWithoutDebugDiscards(t *testing.T) {
	_, closer := Setup(Options{Mode: ModeTUI})
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetupCLIWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := Setup(Options{Mode: ModeCLI, Level: "warn", Out: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Str("cluster", "dev").Msg("cluster unreachable")
	require.NoError(t, closer.Close())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "cluster unreachable")
	assert.Contains(t, buf.String(), "cluster=dev")
}
