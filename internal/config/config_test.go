// Package config tests.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 1024, cfg.CacheCapacity)
	assert.Equal(t, "gpt-4", cfg.OpenAIModel)
	assert.Equal(t, 2000, cfg.OpenAIMaxTokens)
	assert.Equal(t, 30*time.Second, cfg.ShellTimeout)
	assert.Equal(t, time.Duration(0), cfg.StreamStepDelay)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("SHELL_TIMEOUT", "5s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.ShellTimeout)
}

func TestConfig_EnabledFlags(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.OpenAIEnabled())
	assert.False(t, cfg.SlackEnabled())

	cfg.OpenAIAPIKey = "sk-test"
	assert.True(t, cfg.OpenAIEnabled())

	cfg.SlackBotToken = "xoxb-test"
	assert.False(t, cfg.SlackEnabled())
	cfg.SlackChannel = "#sessions"
	assert.True(t, cfg.SlackEnabled())
}

func TestLoadTools_EmptyPath(t *testing.T) {
	tc, err := LoadTools("")
	require.NoError(t, err)
	assert.Empty(t, tc.AllowedCommands)
}

func TestLoadTools_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allowed_commands:\n  - echo\n  - ls\n"), 0o644))

	tc, err := LoadTools(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "ls"}, tc.AllowedCommands)
}

func TestLoadTools_MissingFile(t *testing.T) {
	_, err := LoadTools(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadTools_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allowed_commands: {not a list"), 0o644))
	_, err := LoadTools(path)
	assert.Error(t, err)
}
