// Package browsertest provides an in-memory browser.Provider for tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// ErrClosed is returned by operations on closed fakes.
var ErrClosed = errors.New("Target closed")

// Provider records launches and hands out fake browsers.
type Provider struct {
	mu sync.Mutex

	// LaunchErr fails the next Launch or Connect.
	LaunchErr error
	// InitialPages is the number of tabs a new browser starts with.
	InitialPages int

	Launches  []browser.LaunchConfig
	Endpoints []string
	Browsers  []*Browser
	Closed    int
}

// NewProvider returns a provider whose browsers start with one tab.
func NewProvider() *Provider {
	return &Provider{InitialPages: 1}
}

func (p *Provider) Name() string { return "fake" }

func (p *Provider) Launch(ctx context.Context, cfg browser.LaunchConfig) (browser.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Launches = append(p.Launches, cfg)
	return p.start(cfg)
}

func (p *Provider) Connect(ctx context.Context, endpoint string, cfg browser.LaunchConfig) (browser.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Endpoints = append(p.Endpoints, endpoint)
	return p.start(cfg)
}

func (p *Provider) start(cfg browser.LaunchConfig) (*Browser, error) {
	if err := p.LaunchErr; err != nil {
		p.LaunchErr = nil
		return nil, err
	}
	b := &Browser{Config: cfg}
	for i := 0; i < p.InitialPages; i++ {
		b.tabs = append(b.tabs, NewTab())
	}
	p.Browsers = append(p.Browsers, b)
	return b, nil
}

// Close counts provider shutdowns.
func (p *Provider) Close() error {
	p.mu.Lock()
	p.Closed++
	p.mu.Unlock()
	return nil
}

// Last returns the most recently started browser.
func (p *Provider) Last() *Browser {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Browsers) == 0 {
		return nil
	}
	return p.Browsers[len(p.Browsers)-1]
}

// Browser is a fake browser instance.
type Browser struct {
	mu sync.Mutex

	Config     browser.LaunchConfig
	CloseCalls int
	CloseErr   error
	NewPageErr error

	tabs    []*Tab
	created []*Tab
}

func (b *Browser) NewPage(ctx context.Context) (browser.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.CloseCalls > 0 {
		return nil, ErrClosed
	}
	if b.NewPageErr != nil {
		return nil, b.NewPageErr
	}
	t := NewTab()
	b.tabs = append(b.tabs, t)
	b.created = append(b.created, t)
	return t, nil
}

func (b *Browser) Pages(ctx context.Context) ([]browser.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []browser.Tab
	for _, t := range b.tabs {
		if !t.isClosed() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (b *Browser) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CloseCalls++
	for _, t := range b.tabs {
		t.markClosed()
	}
	return b.CloseErr
}

// InitialTab returns the tab the browser started with.
func (b *Browser) InitialTab() *Tab {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.tabs) == 0 {
		return nil
	}
	return b.tabs[0]
}

// Created returns the tabs opened through NewPage.
func (b *Browser) Created() []*Tab {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Tab(nil), b.created...)
}

// Tab is a fake tab. Exported fields configure behavior; the recorded
// calls are read back through the accessor methods.
type Tab struct {
	mu sync.Mutex

	// Elements maps selectors to their textContent; a nil value is a
	// node whose text is null.
	Elements map[string]*string
	// Results maps scripts to their evaluation result.
	Results map[string]browser.EvalResult
	// Err fails every operation when set.
	Err error

	closed       bool
	viewports    []browser.Viewport
	userAgents   []string
	initScripts  []string
	gotos        []string
	waits        []browser.WaitUntil
	clicks       []string
	typed        []string
	jar          []browser.Cookie
	intercepting bool
	handlers     []func(browser.Request)
	deadline     time.Duration
}

// NewTab returns an empty fake tab.
func NewTab() *Tab {
	return &Tab{
		Elements: make(map[string]*string),
		Results:  make(map[string]browser.EvalResult),
	}
}

func (t *Tab) check() error {
	if t.closed {
		return ErrClosed
	}
	return t.Err
}

func (t *Tab) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Tab) markClosed() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

func (t *Tab) Goto(ctx context.Context, url string, waitUntil browser.WaitUntil) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	if d, ok := ctx.Deadline(); ok {
		t.deadline = time.Until(d)
	}
	t.gotos = append(t.gotos, url)
	t.waits = append(t.waits, waitUntil)
	return nil
}

func (t *Tab) Click(ctx context.Context, selector string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.Elements[selector]; !ok {
		return fmt.Errorf("No element found for selector: %s", selector)
	}
	t.clicks = append(t.clicks, selector)
	return nil
}

func (t *Tab) Type(ctx context.Context, selector, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.Elements[selector]; !ok {
		return fmt.Errorf("No element found for selector: %s", selector)
	}
	t.typed = append(t.typed, text)
	return nil
}

func (t *Tab) Query(ctx context.Context, selector string) (browser.Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return nil, err
	}
	text, ok := t.Elements[selector]
	if !ok {
		return nil, nil
	}
	return element{text: text}, nil
}

func (t *Tab) Evaluate(ctx context.Context, script string) (browser.EvalResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return browser.EvalResult{}, err
	}
	res, ok := t.Results[script]
	if !ok {
		return browser.EvalResult{Undefined: true}, nil
	}
	return res, nil
}

func (t *Tab) EvaluateOnNewDocument(ctx context.Context, script string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	t.initScripts = append(t.initScripts, script)
	return nil
}

// pngHeader is the signature every PNG starts with.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func (t *Tab) Screenshot(ctx context.Context, opts browser.ScreenshotOptions) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return nil, err
	}
	data := append([]byte(nil), pngHeader...)
	if opts.Path != "" {
		if err := os.WriteFile(opts.Path, data, 0o644); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (t *Tab) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.Elements[selector]; !ok {
		return fmt.Errorf("Waiting for selector `%s` failed: Waiting failed: %dms exceeded", selector, timeout.Milliseconds())
	}
	return nil
}

func (t *Tab) SetViewport(ctx context.Context, v browser.Viewport) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	t.viewports = append(t.viewports, v)
	return nil
}

func (t *Tab) SetUserAgent(ctx context.Context, ua string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	t.userAgents = append(t.userAgents, ua)
	return nil
}

func (t *Tab) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	t.jar = append(t.jar, cookies...)
	return nil
}

// Cookies returns the jar; a URL filter matches the cookie URL field.
func (t *Tab) Cookies(ctx context.Context, urls ...string) ([]browser.Cookie, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return append([]browser.Cookie(nil), t.jar...), nil
	}
	var out []browser.Cookie
	for _, c := range t.jar {
		for _, u := range urls {
			if c.URL == u {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (t *Tab) DeleteCookies(ctx context.Context, filters []browser.CookieFilter) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	var keep []browser.Cookie
	for _, c := range t.jar {
		drop := false
		for _, f := range filters {
			if c.Name == f.Name && (f.Domain == "" || f.Domain == c.Domain) && (f.Path == "" || f.Path == c.Path) {
				drop = true
				break
			}
		}
		if !drop {
			keep = append(keep, c)
		}
	}
	t.jar = keep
	return nil
}

func (t *Tab) SetRequestInterception(ctx context.Context, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return err
	}
	t.intercepting = enabled
	return nil
}

func (t *Tab) OnRequest(fn func(browser.Request)) {
	t.mu.Lock()
	t.handlers = append(t.handlers, fn)
	t.mu.Unlock()
}

func (t *Tab) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if t.Err != nil {
		return t.Err
	}
	t.closed = true
	return nil
}

// Viewports returns every viewport applied to the tab.
func (t *Tab) Viewports() []browser.Viewport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]browser.Viewport(nil), t.viewports...)
}

// UserAgents returns every user agent applied to the tab.
func (t *Tab) UserAgents() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.userAgents...)
}

// InitScripts returns the scripts registered for new documents.
func (t *Tab) InitScripts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.initScripts...)
}

// Gotos returns the navigated URLs.
func (t *Tab) Gotos() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.gotos...)
}

// Waits returns the readiness conditions of each navigation.
func (t *Tab) Waits() []browser.WaitUntil {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]browser.WaitUntil(nil), t.waits...)
}

// Clicks returns the clicked selectors.
func (t *Tab) Clicks() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.clicks...)
}

// Typed returns the typed texts.
func (t *Tab) Typed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.typed...)
}

// NavigationDeadline is the time left on the context of the last Goto.
func (t *Tab) NavigationDeadline() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline
}

// Intercepting reports the interception state.
func (t *Tab) Intercepting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.intercepting
}

// HandlerCount returns the number of registered request callbacks.
func (t *Tab) HandlerCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

// Emit runs req through the registered callbacks when interception is on.
func (t *Tab) Emit(req *Request) {
	t.mu.Lock()
	on := t.intercepting
	handlers := append([]func(browser.Request){}, t.handlers...)
	t.mu.Unlock()
	if !on {
		return
	}
	for _, h := range handlers {
		h(req)
	}
}

type element struct {
	text *string
}

func (e element) TextContent(ctx context.Context) (*string, error) {
	return e.text, nil
}

// Request is a fake intercepted request.
type Request struct {
	Link    string
	Type    string
	Header  map[string]string
	Aborted bool
	// Continued holds the headers of a Continue call.
	Continued map[string]string

	handled bool
}

func (r *Request) URL() string                { return r.Link }
func (r *Request) ResourceType() string       { return r.Type }
func (r *Request) Headers() map[string]string { return r.Header }

func (r *Request) Abort() error {
	if r.handled {
		return browser.ErrRequestHandled
	}
	r.handled = true
	r.Aborted = true
	return nil
}

func (r *Request) Continue(headers map[string]string) error {
	if r.handled {
		return browser.ErrRequestHandled
	}
	r.handled = true
	r.Continued = headers
	return nil
}

// Handled reports whether Abort or Continue succeeded.
func (r *Request) Handled() bool { return r.handled }
