package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kdl "github.com/sblinch/kdl-go"
)

// GlobalConfigFile is the config file name under the config directory.
const GlobalConfigFile = "config.kdl"

// KDLConfig mirrors the config file. Pointers tell "unset" apart from
// an explicit zero.
type KDLConfig struct {
	Engine            string        `kdl:"engine"`
	ToolPrefix        *string       `kdl:"tool-prefix"`
	Headless          *bool         `kdl:"headless"`
	ExecutablePath    string        `kdl:"executable-path"`
	NavigationTimeout int           `kdl:"navigation-timeout"`
	ShutdownTimeout   int           `kdl:"shutdown-timeout"`
	LogFile           string        `kdl:"log-file"`
	Playwright        KDLPlaywright `kdl:"playwright"`
}

// KDLPlaywright holds the playwright block.
type KDLPlaywright struct {
	Install   *bool  `kdl:"install"`
	DriverDir string `kdl:"driver-dir"`
}

// Load reads the config at path. An empty path means the global config,
// which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GlobalConfigPath()
		if path == "" {
			return DefaultConfig(), nil
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := ParseKDLConfig(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseKDLConfig parses KDL configuration data over the defaults.
func ParseKDLConfig(data string) (*Config, error) {
	var kdlCfg KDLConfig
	if err := kdl.Unmarshal([]byte(data), &kdlCfg); err != nil {
		return nil, err
	}

	cfg := kdlConfigToConfig(&kdlCfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func kdlConfigToConfig(kdlCfg *KDLConfig) *Config {
	cfg := DefaultConfig()

	if kdlCfg.Engine != "" {
		cfg.Engine = strings.ToLower(kdlCfg.Engine)
	}
	if kdlCfg.ToolPrefix != nil {
		cfg.ToolPrefix = *kdlCfg.ToolPrefix
	}
	if kdlCfg.Headless != nil {
		cfg.Headless = *kdlCfg.Headless
	}
	if kdlCfg.ExecutablePath != "" {
		cfg.ExecutablePath = kdlCfg.ExecutablePath
	}
	if kdlCfg.NavigationTimeout > 0 {
		cfg.NavigationTimeout = time.Duration(kdlCfg.NavigationTimeout) * time.Second
	}
	if kdlCfg.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = time.Duration(kdlCfg.ShutdownTimeout) * time.Second
	}
	if kdlCfg.LogFile != "" {
		cfg.LogFile = kdlCfg.LogFile
	}

	if kdlCfg.Playwright.Install != nil {
		cfg.Playwright.Install = *kdlCfg.Playwright.Install
	}
	if kdlCfg.Playwright.DriverDir != "" {
		cfg.Playwright.DriverDirectory = kdlCfg.Playwright.DriverDir
	}

	return cfg
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "pptrmcp", GlobalConfigFile)
}

// WriteDefaultConfig writes a default config file with documentation.
// An existing file is left alone.
func WriteDefaultConfig(path string) error {
	defaultKDL := `// pptrmcp configuration

// Browser driver: "cdp" (chromedp) or "playwright"
engine "cdp"

// Prefix of every tool name
tool-prefix "puppeteer_"

// Launch without a window unless the launch call says otherwise
headless true

// Browser binary used by launch calls that do not name one
// executable-path "/usr/bin/chromium"

// Navigation timeout in seconds
navigation-timeout 30

// Seconds to wait for the browser to close on exit
shutdown-timeout 5

// Append logs to this file instead of stderr
// log-file "/tmp/pptrmcp.log"

playwright {
    // Download the driver and browsers on first use
    install true
    // driver-dir "/opt/ms-playwright-go"
}
`
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strings.TrimSpace(defaultKDL) + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
