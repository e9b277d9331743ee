package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// Tab is one chromedp target context.
type Tab struct {
	b      *Browser
	ctx    context.Context
	cancel context.CancelFunc // nil for the browser's initial tab
	closed atomic.Bool

	lifecycle *lifecycleWatch

	mu           sync.Mutex
	intercepting bool
	handlers     []func(browser.Request)
	auth         *authAttempts
}

func newTab(b *Browser, ctx context.Context, cancel context.CancelFunc) *Tab {
	return &Tab{
		b:         b,
		ctx:       ctx,
		cancel:    cancel,
		lifecycle: newLifecycleWatch(),
		auth:      newAuthAttempts(),
	}
}

func (t *Tab) id() target.ID {
	if c := chromedp.FromContext(t.ctx); c != nil && c.Target != nil {
		return c.Target.TargetID
	}
	return ""
}

func (t *Tab) isClosed() bool {
	return t.closed.Load() || t.ctx.Err() != nil
}

// init subscribes to the tab's events and applies launch-wide settings.
func (t *Tab) init(ctx context.Context) error {
	chromedp.ListenTarget(t.ctx, t.onEvent)
	return t.exec(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}
		return t.syncFetch(ctx)
	}))
}

// exec runs actions on the tab, aborting when ctx ends.
func (t *Tab) exec(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil && t.ctx.Err() == nil {
		return ctx.Err()
	}
	return err
}

// run is exec preceded by the configured inter-action delay.
func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	if d := t.b.cfg.SlowMo; d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return t.exec(ctx, actions...)
}

// executor returns a context for issuing commands from event callbacks,
// which must not block the chromedp event loop.
func (t *Tab) executor() context.Context {
	return cdp.WithExecutor(t.ctx, chromedp.FromContext(t.ctx).Target)
}

// Goto navigates and waits for the readiness condition. Without a
// deadline on ctx the wait is bounded by DefaultNavigationTimeout.
func (t *Tab) Goto(ctx context.Context, url string, waitUntil browser.WaitUntil) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, browser.DefaultNavigationTimeout)
		defer cancel()
	}
	deadline, _ := ctx.Deadline()
	timeout := time.Until(deadline).Round(time.Millisecond)
	event := lifecycleEventName(waitUntil)

	var res page.NavigateReturns
	err := t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		t.lifecycle.reset()
		return cdp.Execute(ctx, page.CommandNavigate, page.Navigate(url), &res)
	}))
	if err != nil {
		return err
	}
	if res.ErrorText != "" {
		return fmt.Errorf("%s at %s", res.ErrorText, url)
	}
	if res.LoaderID == "" {
		// Same-document navigation fires no lifecycle events.
		return nil
	}

	if err := t.lifecycle.wait(ctx, res.LoaderID, event); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("Navigation timeout of %d ms exceeded", timeout.Milliseconds())
		}
		return err
	}
	return nil
}

// firstNode returns the first node matching selector without waiting.
func firstNode(ctx context.Context, selector string) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)).Do(ctx); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("No element found for selector: %s", selector)
	}
	return nodes[0], nil
}

func (t *Tab) Click(ctx context.Context, selector string) error {
	return t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := firstNode(ctx, selector)
		if err != nil {
			return err
		}
		return chromedp.MouseClickNode(node).Do(ctx)
	}))
}

func (t *Tab) Type(ctx context.Context, selector, text string) error {
	return t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := firstNode(ctx, selector)
		if err != nil {
			return err
		}
		return chromedp.SendKeys([]cdp.NodeID{node.NodeID}, text, chromedp.ByNodeID).Do(ctx)
	}))
}

// Query resolves document.querySelector in the page.
func (t *Tab) Query(ctx context.Context, selector string) (browser.Element, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return nil, err
	}

	var obj *runtime.RemoteObject
	err = t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, exc, err := runtime.Evaluate("document.querySelector(" + string(quoted) + ")").Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		obj = res
		return nil
	}))
	if err != nil {
		return nil, err
	}
	if obj == nil || obj.ObjectID == "" || obj.Subtype == runtime.SubtypeNull {
		return nil, nil
	}
	return &element{tab: t, id: obj.ObjectID}, nil
}

func (t *Tab) Evaluate(ctx context.Context, script string) (browser.EvalResult, error) {
	expr := "(async function() {\n" + script + "\n})()"

	var obj *runtime.RemoteObject
	err := t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, exc, err := runtime.Evaluate(expr).
			WithReturnByValue(true).
			WithAwaitPromise(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		obj = res
		return nil
	}))
	if err != nil {
		return browser.EvalResult{}, err
	}
	return evalResult(obj), nil
}

func (t *Tab) EvaluateOnNewDocument(ctx context.Context, script string) error {
	return t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}))
}

func (t *Tab) Screenshot(ctx context.Context, opts browser.ScreenshotOptions) ([]byte, error) {
	var buf []byte
	var action chromedp.Action = chromedp.CaptureScreenshot(&buf)
	if opts.FullPage {
		// Quality 100 keeps the PNG encoding.
		action = chromedp.FullScreenshot(&buf, 100)
	}
	if err := t.run(ctx, action); err != nil {
		return nil, err
	}
	if opts.Path != "" {
		if err := os.WriteFile(opts.Path, buf, 0o644); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (t *Tab) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		el, err := t.Query(ctx, selector)
		if err != nil {
			return err
		}
		if el == nil {
			return selectorTimeoutError(selector, timeout)
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := t.run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err != nil && waitCtx.Err() != nil && ctx.Err() == nil {
		return selectorTimeoutError(selector, timeout)
	}
	return err
}

func selectorTimeoutError(selector string, timeout time.Duration) error {
	return fmt.Errorf("Waiting for selector `%s` failed: Waiting failed: %dms exceeded", selector, timeout.Milliseconds())
}

func (t *Tab) SetViewport(ctx context.Context, v browser.Viewport) error {
	opts := []chromedp.EmulateViewportOption{chromedp.EmulateScale(v.ScaleFactor())}
	if v.IsMobile {
		opts = append(opts, chromedp.EmulateMobile)
	}
	if v.HasTouch {
		opts = append(opts, chromedp.EmulateTouch)
	}
	if v.IsLandscape {
		opts = append(opts, chromedp.EmulateLandscape)
	} else {
		opts = append(opts, chromedp.EmulatePortrait)
	}
	return t.run(ctx, chromedp.EmulateViewport(int64(v.Width), int64(v.Height), opts...))
}

func (t *Tab) SetUserAgent(ctx context.Context, ua string) error {
	return t.run(ctx, emulation.SetUserAgentOverride(ua))
}

func (t *Tab) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	return t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		pageURL, err := currentURL(ctx)
		if err != nil {
			return err
		}
		params := make([]*network.CookieParam, 0, len(cookies))
		for _, c := range cookies {
			params = append(params, cookieParam(c, pageURL))
		}
		return network.SetCookies(params).Do(ctx)
	}))
}

func (t *Tab) Cookies(ctx context.Context, urls ...string) ([]browser.Cookie, error) {
	var out []browser.Cookie
	err := t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		get := network.GetCookies()
		if len(urls) > 0 {
			get = get.WithURLs(urls)
		}
		cookies, err := get.Do(ctx)
		if err != nil {
			return err
		}
		out = make([]browser.Cookie, 0, len(cookies))
		for _, c := range cookies {
			out = append(out, fromNetworkCookie(c))
		}
		return nil
	}))
	return out, err
}

func (t *Tab) DeleteCookies(ctx context.Context, filters []browser.CookieFilter) error {
	return t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		pageURL, err := currentURL(ctx)
		if err != nil {
			return err
		}
		for _, f := range filters {
			if err := deleteCookiesParams(f, pageURL).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	}))
}

func currentURL(ctx context.Context) (string, error) {
	var u string
	if err := chromedp.Location(&u).Do(ctx); err != nil {
		return "", err
	}
	return u, nil
}

func (t *Tab) SetRequestInterception(ctx context.Context, enabled bool) error {
	t.mu.Lock()
	t.intercepting = enabled
	t.mu.Unlock()
	return t.run(ctx, chromedp.ActionFunc(t.syncFetch))
}

// syncFetch keeps the Fetch domain enabled while either interception or
// proxy authentication needs paused requests.
func (t *Tab) syncFetch(ctx context.Context) error {
	t.mu.Lock()
	intercepting := t.intercepting
	t.mu.Unlock()
	auth := t.b.cfg.ProxyAuth != nil

	if !intercepting && !auth {
		return fetch.Disable().Do(ctx)
	}
	return fetch.Enable().
		WithPatterns([]*fetch.RequestPattern{{URLPattern: "*"}}).
		WithHandleAuthRequests(auth).
		Do(ctx)
}

func (t *Tab) OnRequest(fn func(browser.Request)) {
	t.mu.Lock()
	t.handlers = append(t.handlers, fn)
	t.mu.Unlock()
}

func (t *Tab) onEvent(ev any) {
	switch ev := ev.(type) {
	case *page.EventLifecycleEvent:
		t.lifecycle.record(ev.LoaderID, ev.Name)
	case *fetch.EventRequestPaused:
		go t.handlePaused(ev)
	case *fetch.EventAuthRequired:
		go t.handleAuth(ev)
	}
}

func (t *Tab) handlePaused(ev *fetch.EventRequestPaused) {
	ctx := t.executor()
	req := newRequest(ctx, t, ev)

	t.mu.Lock()
	intercepting := t.intercepting
	handlers := append([]func(browser.Request){}, t.handlers...)
	t.mu.Unlock()

	if intercepting {
		for _, h := range handlers {
			h(req)
		}
	}
	if !req.handled() {
		// Paused only for proxy authentication, or no callback resolved it.
		_ = fetch.ContinueRequest(ev.RequestID).Do(ctx)
	}
}

func (t *Tab) handleAuth(ev *fetch.EventAuthRequired) {
	creds := t.b.cfg.ProxyAuth
	resp := &fetch.AuthChallengeResponse{Response: fetch.AuthChallengeResponseResponseDefault}

	if creds != nil && t.auth.first(ev.RequestID, time.Now()) {
		resp = &fetch.AuthChallengeResponse{
			Response: fetch.AuthChallengeResponseResponseProvideCredentials,
			Username: creds.Username,
			Password: creds.Password,
		}
	} else if creds != nil {
		// The credentials were rejected once already.
		resp.Response = fetch.AuthChallengeResponseResponseCancelAuth
	}

	_ = fetch.ContinueWithAuth(ev.RequestID, resp).Do(t.executor())
}

// Close closes the target. It fails when the owning browser is gone.
func (t *Tab) Close(ctx context.Context) error {
	if t.closed.Load() {
		return errors.New("Target closed")
	}
	err := t.exec(ctx, page.Close())
	t.closed.Store(true)
	if t.cancel != nil {
		t.cancel()
	}
	return err
}

type element struct {
	tab *Tab
	id  runtime.RemoteObjectID
}

func (e *element) TextContent(ctx context.Context) (*string, error) {
	var obj *runtime.RemoteObject
	err := e.tab.exec(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		res, exc, err := runtime.CallFunctionOn("function() { return this.textContent; }").
			WithObjectID(e.id).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		obj = res
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return textValue(obj)
}
