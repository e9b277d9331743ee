package cdp

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// Browser is a chromedp browser context. Its own context doubles as the
// handle of the instance's initial tab.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	cfg         browser.LaunchConfig

	mu     sync.Mutex
	tabs   []*Tab
	closed bool
}

// NewPage opens a new tab.
func (b *Browser) NewPage(ctx context.Context) (browser.Tab, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	stop := context.AfterFunc(ctx, cancel)
	err := chromedp.Run(tabCtx)
	stop()
	if err != nil {
		cancel()
		return nil, err
	}

	t := newTab(b, tabCtx, cancel)
	if err := t.init(ctx); err != nil {
		cancel()
		return nil, err
	}

	b.mu.Lock()
	b.tabs = append(b.tabs, t)
	b.mu.Unlock()
	return t, nil
}

// Pages returns the open tabs, known ones first in creation order. Page
// targets opened outside this process are attached on the way.
func (b *Browser) Pages(ctx context.Context) ([]browser.Tab, error) {
	infos, err := chromedp.Targets(b.ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	known := make(map[string]bool, len(b.tabs))
	var live []*Tab
	for _, t := range b.tabs {
		if t.isClosed() {
			continue
		}
		known[string(t.id())] = true
		live = append(live, t)
	}

	for _, info := range infos {
		if info.Type != "page" || known[string(info.TargetID)] {
			continue
		}
		tabCtx, cancel := chromedp.NewContext(b.ctx, chromedp.WithTargetID(info.TargetID))
		if err := chromedp.Run(tabCtx); err != nil {
			cancel()
			continue
		}
		t := newTab(b, tabCtx, cancel)
		if err := t.init(ctx); err != nil {
			cancel()
			continue
		}
		live = append(live, t)
	}
	b.tabs = live

	pages := make([]browser.Tab, len(live))
	for i, t := range live {
		pages[i] = t
	}
	return pages, nil
}

// Close shuts the browser down and waits for the process to exit.
func (b *Browser) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(b.ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	b.cancel()
	b.allocCancel()
	return err
}
