// Package cdp drives Chrome over the DevTools protocol with chromedp.
package cdp

import (
	"context"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// Provider launches or attaches to Chrome instances.
type Provider struct{}

// New returns the chromedp provider.
func New() *Provider { return &Provider{} }

// Name implements browser.Provider.
func (p *Provider) Name() string { return "cdp" }

// Launch starts a local Chrome. The instance outlives ctx; only
// Browser.Close releases it.
func (p *Provider) Launch(ctx context.Context, cfg browser.LaunchConfig) (browser.Browser, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOptions(cfg)...)
	return start(ctx, allocCtx, allocCancel, cfg)
}

// Connect attaches to a running Chrome. endpoint may be a ws:// DevTools
// URL or the http:// address of the debugging port.
func (p *Provider) Connect(ctx context.Context, endpoint string, cfg browser.LaunchConfig) (browser.Browser, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.WithoutCancel(ctx), endpoint)
	return start(ctx, allocCtx, allocCancel, cfg)
}

func start(ctx context.Context, allocCtx context.Context, allocCancel context.CancelFunc, cfg browser.LaunchConfig) (*Browser, error) {
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts (or dials) the browser and attaches to its
	// initial tab. Cancellation of ctx aborts the attempt.
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	b := &Browser{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		cfg:         cfg,
	}
	first := newTab(b, browserCtx, nil)
	if err := first.init(ctx); err != nil {
		_ = b.Close(ctx)
		return nil, err
	}
	b.tabs = append(b.tabs, first)
	return b, nil
}

func allocatorOptions(cfg browser.LaunchConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.Stealth {
		opts = append(opts, chromedp.Flag("enable-automation", false))
	}
	if cfg.ExecutablePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecutablePath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	for _, arg := range cfg.Args {
		name, value, ok := parseFlag(arg)
		if !ok {
			continue
		}
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// parseFlag splits a command line switch into a chromedp flag. "--a=b"
// yields ("a", "b"), "--a" yields ("a", true).
func parseFlag(arg string) (string, any, bool) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	if arg == "" {
		return "", nil, false
	}
	name, value, hasValue := strings.Cut(arg, "=")
	if !hasValue {
		return name, true, true
	}
	return name, value, true
}
