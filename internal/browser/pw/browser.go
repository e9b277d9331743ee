package pw

import (
	"context"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// Browser wraps the context every tab shares. b is nil for persistent
// profiles, where the context owns the process.
type Browser struct {
	b    playwright.Browser
	bctx playwright.BrowserContext
	cfg  browser.LaunchConfig

	mu   sync.Mutex
	tabs map[playwright.Page]*Tab
}

func newBrowser(b playwright.Browser, bctx playwright.BrowserContext, cfg browser.LaunchConfig) *Browser {
	return &Browser{b: b, bctx: bctx, cfg: cfg, tabs: make(map[playwright.Page]*Tab)}
}

func (b *Browser) wrap(p playwright.Page) *Tab {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.tabs[p]; ok {
		return t
	}
	t := newTab(b, p)
	b.tabs[p] = t
	p.OnClose(func(playwright.Page) {
		b.mu.Lock()
		delete(b.tabs, p)
		b.mu.Unlock()
	})
	return t
}

func (b *Browser) NewPage(ctx context.Context) (browser.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := b.bctx.NewPage()
	if err != nil {
		return nil, err
	}
	return b.wrap(p), nil
}

func (b *Browser) Pages(ctx context.Context) ([]browser.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages := b.bctx.Pages()
	tabs := make([]browser.Tab, 0, len(pages))
	for _, p := range pages {
		tabs = append(tabs, b.wrap(p))
	}
	return tabs, nil
}

func (b *Browser) Close(ctx context.Context) error {
	if b.b == nil {
		return b.bctx.Close()
	}
	return b.b.Close()
}
