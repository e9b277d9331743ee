// Package browser defines the capability contract the session layer drives.
//
// Engines live in subpackages (cdp, pw). Everything here is engine-neutral:
// the Provider/Browser/Tab interfaces, the value types passed through them,
// the stealth bundle and the request interception policy.
package browser

import (
	"context"
	"time"
)

// Provider starts or attaches to a browser instance.
type Provider interface {
	// Name identifies the engine ("cdp", "playwright").
	Name() string
	// Launch starts a new local browser instance.
	Launch(ctx context.Context, cfg LaunchConfig) (Browser, error)
	// Connect attaches to a running browser at endpoint.
	Connect(ctx context.Context, endpoint string, cfg LaunchConfig) (Browser, error)
}

// Browser is a live browser instance.
type Browser interface {
	// NewPage opens a new tab.
	NewPage(ctx context.Context) (Tab, error)
	// Pages returns the tabs the instance currently has open.
	Pages(ctx context.Context) ([]Tab, error)
	// Close releases the instance. Tabs obtained from it become invalid.
	Close(ctx context.Context) error
}

// Tab is one open browser tab.
type Tab interface {
	Goto(ctx context.Context, url string, waitUntil WaitUntil) error
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error

	// Query returns the first element matching selector, or nil when
	// nothing matches.
	Query(ctx context.Context, selector string) (Element, error)

	// Evaluate runs script as a function body in the page and awaits
	// the returned value.
	Evaluate(ctx context.Context, script string) (EvalResult, error)
	EvaluateOnNewDocument(ctx context.Context, script string) error

	// Screenshot captures a PNG. When opts.Path is set the image is also
	// written to that path.
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)

	// WaitForSelector waits up to timeout for selector to match. A zero
	// timeout checks once.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	SetViewport(ctx context.Context, v Viewport) error
	SetUserAgent(ctx context.Context, ua string) error

	SetCookies(ctx context.Context, cookies []Cookie) error
	Cookies(ctx context.Context, urls ...string) ([]Cookie, error)
	DeleteCookies(ctx context.Context, cookies []CookieFilter) error

	// SetRequestInterception toggles pausing of outgoing requests.
	SetRequestInterception(ctx context.Context, enabled bool) error
	// OnRequest registers a callback for intercepted requests. Callbacks
	// accumulate; they are never removed.
	OnRequest(fn func(Request))

	Close(ctx context.Context) error
}

// Element is a handle to a DOM node.
type Element interface {
	// TextContent returns the node's textContent, nil when the DOM
	// reports null.
	TextContent(ctx context.Context) (*string, error)
}

// Request is an intercepted outgoing request. Exactly one of Abort or
// Continue may succeed; later calls return ErrRequestHandled.
type Request interface {
	URL() string
	ResourceType() string
	Headers() map[string]string
	Abort() error
	Continue(headers map[string]string) error
}
