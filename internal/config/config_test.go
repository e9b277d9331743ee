package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDLConfig(t *testing.T) {
	input := `
engine "playwright"
tool-prefix "browser_"
headless false
executable-path "/usr/bin/chromium"
navigation-timeout 60
shutdown-timeout 2
log-file "/tmp/pptrmcp.log"

playwright {
    install false
    driver-dir "/opt/driver"
}
`
	cfg, err := ParseKDLConfig(input)
	require.NoError(t, err)

	assert.Equal(t, EnginePlaywright, cfg.Engine)
	assert.Equal(t, "browser_", cfg.ToolPrefix)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "/usr/bin/chromium", cfg.ExecutablePath)
	assert.Equal(t, 60*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/tmp/pptrmcp.log", cfg.LogFile)
	assert.False(t, cfg.Playwright.Install)
	assert.Equal(t, "/opt/driver", cfg.Playwright.DriverDirectory)
}

func TestParseKDLConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseKDLConfig(`navigation-timeout 10`)
	require.NoError(t, err)

	want := DefaultConfig()
	want.NavigationTimeout = 10 * time.Second
	assert.Equal(t, want, cfg)
}

func TestParseKDLConfigEmptyPrefix(t *testing.T) {
	cfg, err := ParseKDLConfig(`tool-prefix ""`)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.ToolPrefix)
}

func TestParseKDLConfigRejectsUnknownEngine(t *testing.T) {
	_, err := ParseKDLConfig(`engine "webkit"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webkit")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.ShutdownTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestWriteDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", GlobalConfigFile)
	require.NoError(t, WriteDefaultConfig(path))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// A second write does not clobber the user's file.
	assert.ErrorIs(t, WriteDefaultConfig(path), os.ErrExist)
}

func TestGlobalConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "pptrmcp", "config.kdl"), GlobalConfigPath())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	t.Run("missing global config", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("missing explicit config", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.kdl"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("global config", func(t *testing.T) {
		path := GlobalConfigPath()
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(`engine "playwright"`), 0644))

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, EnginePlaywright, cfg.Engine)
	})

	t.Run("broken config names the file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.kdl")
		require.NoError(t, os.WriteFile(path, []byte(`engine "gecko"`), 0644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestConfigJSONTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NavigationTimeout = 1500 * time.Millisecond

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "1.5s", got["navigation_timeout"])
	assert.Equal(t, "5s", got["shutdown_timeout"])
	assert.Equal(t, EngineCDP, got["engine"])
	assert.Equal(t, true, got["headless"])
	assert.Contains(t, got, "playwright")
}
