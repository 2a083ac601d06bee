package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	out, vr := NormalizeAndValidate(Config{})
	require.True(t, vr.OK(), "errors: %v", vr.Errors)
	assert.Equal(t, Default(), out)
}

func TestNormalizePreservesExplicitValues(t *testing.T) {
	var cfg Config
	cfg.App.Port = 9000
	cfg.Search.MaxPages = 3
	cfg.Budget.MonthlyCeiling = 100

	out, vr := NormalizeAndValidate(cfg)
	require.True(t, vr.OK())
	assert.Equal(t, 9000, out.App.Port)
	assert.Equal(t, 3, out.Search.MaxPages)
	assert.Equal(t, 100, out.Budget.MonthlyCeiling)
	// untouched sections still get defaults
	assert.Equal(t, 24, out.Cache.TTLHours)
}

func TestValidateRejectsBadRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative max_pages", func(c *Config) { c.Search.MaxPages = -1 }},
		{"port out of range", func(c *Config) { c.App.Port = 70000 }},
		{"negative ttl", func(c *Config) { c.Cache.TTLHours = -1 }},
		{"negative ceiling", func(c *Config) { c.Budget.MonthlyCeiling = -5 }},
		{"bad base url", func(c *Config) { c.Upstream.BaseURL = "ftp://example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			_, vr := NormalizeAndValidate(cfg)
			assert.False(t, vr.OK())
		})
	}
}

func TestValidateWarnsOnTinyBudget(t *testing.T) {
	cfg := Default()
	cfg.Budget.MonthlyCeiling = 2
	cfg.Search.MaxPages = 5

	_, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK(), "a tiny budget is legal, just unwise")
	assert.NotEmpty(t, vr.Warnings)
}

func TestNormalizeTrimsBaseURL(t *testing.T) {
	cfg := Default()
	cfg.Upstream.BaseURL = "  https://api.example.com/  "

	out, vr := NormalizeAndValidate(cfg)
	require.True(t, vr.OK())
	assert.Equal(t, "https://api.example.com", out.Upstream.BaseURL)
}

func TestSaveAtomicRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := Default()
	cfg.App.Port = 12345
	require.NoError(t, SaveAtomic(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12345, loaded.App.Port)
	assert.Equal(t, cfg.Upstream.BaseURL, loaded.Upstream.BaseURL)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	first := Default()
	first.App.Port = 1111
	require.NoError(t, SaveAtomic(path, first))

	second := Default()
	second.App.Port = 2222
	require.NoError(t, SaveAtomic(path, second))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2222, loaded.App.Port)

	backup, err := Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 1111, backup.App.Port)
}

func TestSaveAtomicRefusesInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := Default()
	cfg.Search.MaxPages = -1
	err := SaveAtomic(path, cfg)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid config must not be written")
}

func TestEnsureUserConfigSeedsFromShippedDefault(t *testing.T) {
	dir := t.TempDir()
	shipped := filepath.Join(dir, "shipped.yml")
	require.NoError(t, os.WriteFile(shipped, []byte("app:\n  port: 4242\n"), 0o644))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	userPath, err := EnsureUserConfig(dataDir, shipped)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	loaded, err := Load(userPath)
	require.NoError(t, err)
	assert.Equal(t, 4242, loaded.App.Port)
}

func TestEnsureUserConfigFallsBackToBuiltins(t *testing.T) {
	dataDir := t.TempDir()

	userPath, err := EnsureUserConfig(dataDir, filepath.Join(dataDir, "no-such-default.yml"))
	require.NoError(t, err)

	loaded, err := Load(userPath)
	require.NoError(t, err)
	assert.Equal(t, Default().App.Port, loaded.App.Port)
}

func TestEnsureUserConfigLeavesExistingAlone(t *testing.T) {
	dataDir := t.TempDir()
	existing := filepath.Join(dataDir, "config.yml")
	require.NoError(t, os.WriteFile(existing, []byte("app:\n  port: 5555\n"), 0o644))

	userPath, err := EnsureUserConfig(dataDir, "ignored.yml")
	require.NoError(t, err)

	loaded, err := Load(userPath)
	require.NoError(t, err)
	assert.Equal(t, 5555, loaded.App.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
