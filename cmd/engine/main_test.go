package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDataDirEnvWins(t *testing.T) {
	t.Setenv("JOBSEARCH_DATA_DIR", "/tmp/engine-data")
	assert.Equal(t, "/tmp/engine-data", resolveDataDir("no-such-config.yml"))
}

func TestResolveDataDirFromShippedConfig(t *testing.T) {
	t.Setenv("JOBSEARCH_DATA_DIR", "")

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("app:\n  data_dir: /var/lib/engine\n"), 0o644))

	assert.Equal(t, "/var/lib/engine", resolveDataDir(cfgPath))
}

func TestResolveDataDirFallsBackToLocal(t *testing.T) {
	t.Setenv("JOBSEARCH_DATA_DIR", "")
	assert.Equal(t, ".", resolveDataDir("no-such-config.yml"))
}
