package pw

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

const routeAll = "**/*"

// Tab wraps a Playwright page.
type Tab struct {
	b    *Browser
	page playwright.Page

	mu           sync.Mutex
	intercepting bool
	routed       bool
	handlers     []func(browser.Request)
}

func newTab(b *Browser, page playwright.Page) *Tab {
	return &Tab{b: b, page: page}
}

func (t *Tab) Goto(ctx context.Context, url string, waitUntil browser.WaitUntil) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := browser.DefaultNavigationTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	_, err := t.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntilState(waitUntil),
		Timeout:   milliseconds(timeout),
	})
	return err
}

func (t *Tab) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.page.Click(selector)
}

func (t *Tab) Type(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.page.Type(selector, text)
}

func (t *Tab) Query(ctx context.Context, selector string) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := t.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, nil
	}
	return &element{h: h}, nil
}

func (t *Tab) Evaluate(ctx context.Context, script string) (browser.EvalResult, error) {
	if err := ctx.Err(); err != nil {
		return browser.EvalResult{}, err
	}
	v, err := t.page.Evaluate(browser.EvalWrapper(script))
	if err != nil {
		return browser.EvalResult{}, err
	}
	return browser.DecodeWrapped(v)
}

func (t *Tab) EvaluateOnNewDocument(ctx context.Context, script string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.page.AddInitScript(playwright.Script{Content: playwright.String(script)})
}

func (t *Tab) Screenshot(ctx context.Context, opts browser.ScreenshotOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(opts.FullPage),
		Type:     playwright.ScreenshotTypePng,
	}
	if opts.Path != "" {
		o.Path = playwright.String(opts.Path)
	}
	return t.page.Screenshot(o)
}

// WaitForSelector waits for the selector to be attached. Playwright reads
// a zero timeout as "forever", so zero is a single query instead.
func (t *Tab) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		el, err := t.Query(ctx, selector)
		if err != nil {
			return err
		}
		if el == nil {
			return fmt.Errorf("Waiting for selector `%s` failed: Waiting failed: %dms exceeded", selector, timeout.Milliseconds())
		}
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: milliseconds(timeout),
	})
	return err
}

// SetViewport resizes the page and applies the device emulation
// Playwright only exposes per context through a CDP session.
func (t *Tab) SetViewport(ctx context.Context, v browser.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.page.SetViewportSize(v.Width, v.Height); err != nil {
		return err
	}
	if v.ScaleFactor() == 1 && !v.IsMobile && !v.HasTouch && !v.IsLandscape {
		return nil
	}

	session, err := t.page.Context().NewCDPSession(t.page)
	if err != nil {
		return err
	}
	defer session.Detach()

	if _, err := session.Send("Emulation.setDeviceMetricsOverride", deviceMetrics(v)); err != nil {
		return err
	}
	_, err = session.Send("Emulation.setTouchEmulationEnabled", map[string]interface{}{"enabled": v.HasTouch})
	return err
}

func (t *Tab) SetUserAgent(ctx context.Context, ua string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session, err := t.page.Context().NewCDPSession(t.page)
	if err != nil {
		return err
	}
	defer session.Detach()

	_, err = session.Send("Emulation.setUserAgentOverride", map[string]interface{}{"userAgent": ua})
	return err
}

func (t *Tab) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pageURL := t.page.URL()
	params := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, optionalCookie(c, pageURL))
	}
	return t.page.Context().AddCookies(params)
}

func (t *Tab) Cookies(ctx context.Context, urls ...string) ([]browser.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		urls = []string{t.page.URL()}
	}
	cookies, err := t.page.Context().Cookies(urls...)
	if err != nil {
		return nil, err
	}
	out := make([]browser.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, fromCookie(c))
	}
	return out, nil
}

// DeleteCookies rewrites the jar without the matching cookies.
func (t *Tab) DeleteCookies(ctx context.Context, filters []browser.CookieFilter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	jar := t.page.Context()
	all, err := jar.Cookies()
	if err != nil {
		return err
	}

	keep, removed := partitionCookies(all, filters, t.page.URL())
	if removed == 0 {
		return nil
	}
	if err := jar.ClearCookies(); err != nil {
		return err
	}
	if len(keep) == 0 {
		return nil
	}
	return jar.AddCookies(keep)
}

func (t *Tab) SetRequestInterception(ctx context.Context, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.intercepting = enabled
	switch {
	case enabled && !t.routed:
		if err := t.page.Route(routeAll, t.route); err != nil {
			return err
		}
		t.routed = true
	case !enabled && t.routed:
		if err := t.page.Unroute(routeAll); err != nil {
			return err
		}
		t.routed = false
	}
	return nil
}

func (t *Tab) OnRequest(fn func(browser.Request)) {
	t.mu.Lock()
	t.handlers = append(t.handlers, fn)
	t.mu.Unlock()
}

func (t *Tab) route(r playwright.Route) {
	t.mu.Lock()
	intercepting := t.intercepting
	handlers := append([]func(browser.Request){}, t.handlers...)
	t.mu.Unlock()

	req := &request{route: r, tab: t}
	if intercepting {
		for _, h := range handlers {
			h(req)
		}
	}
	if !req.handled() {
		_ = r.Continue()
	}
}

func (t *Tab) Close(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.page.Close()
}

type element struct {
	h playwright.ElementHandle
}

func (e *element) TextContent(ctx context.Context) (*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := e.h.Evaluate("e => e.textContent")
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	s := fmt.Sprint(v)
	return &s, nil
}

type request struct {
	route playwright.Route
	tab   *Tab

	mu   sync.Mutex
	done bool
}

func (r *request) URL() string          { return r.route.Request().URL() }
func (r *request) ResourceType() string { return r.route.Request().ResourceType() }

func (r *request) Headers() map[string]string {
	return r.route.Request().Headers()
}

func (r *request) Abort() error {
	if err := r.claim(); err != nil {
		return err
	}
	return r.route.Abort()
}

func (r *request) Continue(headers map[string]string) error {
	if err := r.claim(); err != nil {
		return err
	}
	if headers == nil {
		return r.route.Continue()
	}
	return r.route.Continue(playwright.RouteContinueOptions{Headers: headers})
}

func (r *request) claim() error {
	r.tab.mu.Lock()
	intercepting := r.tab.intercepting
	r.tab.mu.Unlock()
	if !intercepting {
		return browser.ErrInterceptionDisabled
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return browser.ErrRequestHandled
	}
	r.done = true
	return nil
}

func (r *request) handled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}
