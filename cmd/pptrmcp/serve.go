package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/standardbeagle/pptrmcp/internal/browser"
	"github.com/standardbeagle/pptrmcp/internal/browser/cdp"
	"github.com/standardbeagle/pptrmcp/internal/browser/pw"
	"github.com/standardbeagle/pptrmcp/internal/config"
	"github.com/standardbeagle/pptrmcp/internal/session"
	"github.com/standardbeagle/pptrmcp/internal/supervisor"
	"github.com/standardbeagle/pptrmcp/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Run the MCP server over stdio.

The browser is released when the client disconnects or the process
receives SIGINT, SIGTERM or SIGHUP.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg.LogFile)
	if err != nil {
		return err
	}

	provider := newProvider(cfg)
	s := session.New(provider, session.Options{
		ToolPrefix:        cfg.ToolPrefix,
		Headless:          cfg.Headless,
		ExecutablePath:    cfg.ExecutablePath,
		NavigationTimeout: cfg.NavigationTimeout,
	})
	d := tools.NewDispatcher(s, cfg.ToolPrefix)

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    appName,
			Version: appVersion,
		},
		&mcp.ServerOptions{
			HasTools:     true,
			Instructions: instructions(cfg.ToolPrefix),
		},
	)
	d.Register(server)

	log.Printf("Starting %s v%s (%s engine)", appName, appVersion, provider.Name())

	code := supervisor.Run(cmd.Context(), supervisor.Config{
		ShutdownTimeout: cfg.ShutdownTimeout,
		TransportClosed: func() { s.MarkTransportClosed() },
	}, func(ctx context.Context) error {
		return server.Run(ctx, &mcp.StdioTransport{})
	}, d.Release)

	log.Println("Server shutdown complete")
	closeLog()
	if code != supervisor.ExitOK {
		os.Exit(code)
	}
	return nil
}

func newProvider(cfg *config.Config) browser.Provider {
	if cfg.Engine == config.EnginePlaywright {
		return pw.New(pw.Options{
			Install:         cfg.Playwright.Install,
			DriverDirectory: cfg.Playwright.DriverDirectory,
		})
	}
	return cdp.New()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if engine, _ := cmd.Flags().GetString("engine"); engine != "" {
		cfg.Engine = engine
	}
	if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" {
		cfg.LogFile = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging sends log output to stderr, or appends it to path. Stdout
// carries the protocol and is never logged to.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(os.Stderr)
		return func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(io.Discard)
		f.Close()
	}, nil
}

func instructions(prefix string) string {
	return fmt.Sprintf(`Browser automation server. One browser at a time; pages are addressed by ids you choose.

Typical flow:
  %[1]slaunch {}
  %[1]snew_page {pageId: "main"}
  %[1]snavigate {pageId: "main", url: "https://example.com"}
  %[1]sget_text {pageId: "main", selector: "h1"}
  %[1]sclose_browser {}

Failures come back as tool errors whose text starts with "Error: ".`, prefix)
}
