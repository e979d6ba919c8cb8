package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PROMPTS_HOME", filepath.Join(home, ".prompts"))
	for _, key := range []string{"PROMPTS_VAULT", "PROMPTS_MODEL", "PROMPTS_LOG_FILE", "PROMPTS_LOG_VERBOSITY", "PROMPTS_LOG_JSON"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestDefaults(t *testing.T) {
	isolate(t)

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "vault", cfg.Vault)
	assert.Equal(t, "claude-sonnet-4", cfg.Model)
	assert.Equal(t, 0, cfg.Log.Verbosity)
	assert.False(t, cfg.Log.JSON)
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PROMPTS_VAULT", "/srv/prompts")
	t.Setenv("PROMPTS_LOG_VERBOSITY", "2")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/prompts", cfg.Vault)
	assert.Equal(t, 2, cfg.Log.Verbosity)
}

func TestConfigFile(t *testing.T) {
	home := isolate(t)
	path := DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("vault = \"~/notes/vault\"\nmodel = \"claude-opus-4\"\n\n[log]\njson = true\n"), 0644))

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "notes", "vault"), cfg.Vault)
	assert.Equal(t, "claude-opus-4", cfg.Model)
	assert.True(t, cfg.Log.JSON)
}

func TestExplicitConfigMustExist(t *testing.T) {
	isolate(t)
	_, err := New(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	home := isolate(t)
	assert.Equal(t, filepath.Join(home, ".prompts", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join(home, ".prompts", "logs", "prompts.log"), DefaultLogPath())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)

	v, err := New("")
	require.NoError(t, err)
	v.Set(KeyVault, "")
	_, err = Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault")

	v, err = New("")
	require.NoError(t, err)
	v.Set(KeyLogVerbosity, -1)
	_, err = Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.verbosity")
}
