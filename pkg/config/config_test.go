package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "packages", cfg.PackagesDir)
	assert.Equal(t, 1, cfg.Jobs)
	assert.False(t, cfg.FailFast)
	assert.Equal(t, ".omuws", cfg.StateDir)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())
}

func TestLoadFileAndEnv(t *testing.T) {
	root := t.TempDir()
	content := "packages_dir = \"libs\"\njobs = 2\n\n[log]\nlevel = \"debug\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))
	t.Setenv("OMUWS_JOBS", "4")
	t.Setenv("OMUWS_PACKAGE", "ignored")

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "libs", cfg.PackagesDir)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
}

func TestValidate(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg.Log.Level = "info"
	cfg.Jobs = 0
	assert.Error(t, cfg.Validate())
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}
