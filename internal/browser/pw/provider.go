// Package pw drives Chromium through the Playwright driver.
package pw

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// Options configures the Playwright driver.
type Options struct {
	// Install downloads the driver and Chromium on first use.
	Install bool
	// DriverDirectory overrides where the driver is cached.
	DriverDirectory string
}

// Provider lazily starts the Playwright driver and launches Chromium.
type Provider struct {
	opts Options

	mu sync.Mutex
	pw *playwright.Playwright
}

// New returns a Playwright provider. The driver starts on first launch.
func New(opts Options) *Provider {
	return &Provider{opts: opts}
}

// Name implements browser.Provider.
func (p *Provider) Name() string { return "playwright" }

func (p *Provider) driver() (*playwright.Playwright, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pw != nil {
		return p.pw, nil
	}

	// The driver must not write to stdout: it carries the protocol.
	opts := &playwright.RunOptions{
		Browsers:        []string{"chromium"},
		Verbose:         false,
		Stdout:          io.Discard,
		Stderr:          io.Discard,
		DriverDirectory: p.opts.DriverDirectory,
	}
	if p.opts.Install {
		if err := playwright.Install(opts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	p.pw = pw
	return pw, nil
}

// Launch starts Chromium. With a user data directory the profile is
// persistent; otherwise a fresh context with one page is created.
func (p *Provider) Launch(ctx context.Context, cfg browser.LaunchConfig) (browser.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := p.driver()
	if err != nil {
		return nil, err
	}

	if cfg.UserDataDir != "" {
		bctx, err := pw.Chromium.LaunchPersistentContext(cfg.UserDataDir, persistentOptions(cfg))
		if err != nil {
			return nil, err
		}
		return newBrowser(nil, bctx, cfg), nil
	}

	b, err := pw.Chromium.Launch(launchOptions(cfg))
	if err != nil {
		return nil, err
	}
	bctx, err := b.NewContext()
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if _, err := bctx.NewPage(); err != nil {
		_ = b.Close()
		return nil, err
	}
	return newBrowser(b, bctx, cfg), nil
}

// Connect attaches over CDP and adopts the browser's default context.
func (p *Provider) Connect(ctx context.Context, endpoint string, cfg browser.LaunchConfig) (browser.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := p.driver()
	if err != nil {
		return nil, err
	}

	opts := playwright.BrowserTypeConnectOverCDPOptions{}
	if cfg.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(cfg.SlowMo.Milliseconds()))
	}
	b, err := pw.Chromium.ConnectOverCDP(endpoint, opts)
	if err != nil {
		return nil, err
	}

	var bctx playwright.BrowserContext
	if contexts := b.Contexts(); len(contexts) > 0 {
		bctx = contexts[0]
	} else if bctx, err = b.NewContext(); err != nil {
		_ = b.Close()
		return nil, err
	}
	return newBrowser(b, bctx, cfg), nil
}

// Close stops the driver.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pw == nil {
		return nil
	}
	err := p.pw.Stop()
	p.pw = nil
	return err
}

func launchOptions(cfg browser.LaunchConfig) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     cfg.Args,
	}
	if cfg.ExecutablePath != "" {
		opts.ExecutablePath = playwright.String(cfg.ExecutablePath)
	}
	if cfg.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(cfg.SlowMo.Milliseconds()))
	}
	if cfg.Stealth {
		opts.IgnoreDefaultArgs = []string{"--enable-automation"}
	}
	opts.Proxy = proxyOption(cfg)
	return opts
}

func persistentOptions(cfg browser.LaunchConfig) playwright.BrowserTypeLaunchPersistentContextOptions {
	l := launchOptions(cfg)
	return playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:          l.Headless,
		Args:              l.Args,
		ExecutablePath:    l.ExecutablePath,
		SlowMo:            l.SlowMo,
		IgnoreDefaultArgs: l.IgnoreDefaultArgs,
		Proxy:             l.Proxy,
	}
}

// proxyOption hands proxy credentials to the launch. The server itself is
// already a --proxy-server flag in Args; Playwright requires the server
// field whenever credentials are set.
func proxyOption(cfg browser.LaunchConfig) *playwright.Proxy {
	if cfg.ProxyAuth == nil {
		return nil
	}
	server := proxyServerArg(cfg.Args)
	if server == "" {
		return nil
	}
	return &playwright.Proxy{
		Server:   server,
		Username: playwright.String(cfg.ProxyAuth.Username),
		Password: playwright.String(cfg.ProxyAuth.Password),
	}
}

func proxyServerArg(args []string) string {
	server := ""
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "--proxy-server="); ok {
			server = v
		}
	}
	return server
}
