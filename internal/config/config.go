package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Browser engines.
const (
	EngineCDP        = "cdp"
	EnginePlaywright = "playwright"
)

// Config holds the complete server configuration.
type Config struct {
	// Engine selects the browser driver: "cdp" or "playwright".
	Engine string `json:"engine"`
	// ToolPrefix is prepended to every tool name.
	ToolPrefix string `json:"tool_prefix"`
	// Headless is the launch default when a call does not say.
	Headless bool `json:"headless"`
	// ExecutablePath is the launch default browser binary.
	ExecutablePath string `json:"executable_path,omitempty"`
	// NavigationTimeout bounds navigate.
	NavigationTimeout time.Duration `json:"navigation_timeout"`
	// ShutdownTimeout bounds browser release on exit.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	// LogFile receives log output instead of stderr when set.
	LogFile string `json:"log_file,omitempty"`

	Playwright PlaywrightConfig `json:"playwright"`
}

// MarshalJSON prints the timeouts as duration strings such as "30s".
func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	return json.Marshal(struct {
		plain
		NavigationTimeout string `json:"navigation_timeout"`
		ShutdownTimeout   string `json:"shutdown_timeout"`
	}{
		plain:             plain(c),
		NavigationTimeout: c.NavigationTimeout.String(),
		ShutdownTimeout:   c.ShutdownTimeout.String(),
	})
}

// PlaywrightConfig configures the playwright engine.
type PlaywrightConfig struct {
	// Install downloads the driver and browsers on first use.
	Install bool `json:"install"`
	// DriverDirectory overrides where the driver lives.
	DriverDirectory string `json:"driver_directory,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine:            EngineCDP,
		ToolPrefix:        "puppeteer_",
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		Playwright: PlaywrightConfig{
			Install: true,
		},
	}
}

// Validate reports settings no component can run with.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineCDP, EnginePlaywright:
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", c.Engine, EngineCDP, EnginePlaywright)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown-timeout must be positive")
	}
	return nil
}
