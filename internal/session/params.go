package session

import (
	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// DefaultSelectorTimeout is the wait_for_selector timeout in milliseconds.
const DefaultSelectorTimeout = 30000

// Upper bounds in milliseconds. Larger values overflow time.Duration.
const (
	MaxSelectorTimeout = 24 * 60 * 60 * 1000
	MaxSlowMo          = 60 * 1000
)

// ProxyParams configures an outgoing proxy.
type ProxyParams struct {
	Server   string `json:"server,omitempty" jsonschema:"Proxy server, e.g. http://host:8080"`
	Username string `json:"username,omitempty" jsonschema:"Proxy username"`
	Password string `json:"password,omitempty" jsonschema:"Proxy password"`
}

// LaunchParams is the input of launch.
type LaunchParams struct {
	Headless          *bool             `json:"headless,omitempty" jsonschema:"Run without a window (default true)"`
	Args              []string          `json:"args,omitempty" jsonschema:"Extra browser command line flags"`
	ExecutablePath    string            `json:"executablePath,omitempty" jsonschema:"Browser executable to launch"`
	BrowserWSEndpoint string            `json:"browserWSEndpoint,omitempty" jsonschema:"Attach to a running browser at this DevTools endpoint instead of launching"`
	UserDataDir       string            `json:"userDataDir,omitempty" jsonschema:"Persistent profile directory"`
	UserAgent         string            `json:"userAgent,omitempty" jsonschema:"User agent for the default page"`
	Viewport          *browser.Viewport `json:"viewport,omitempty" jsonschema:"Viewport applied to the default page and every new page"`
	Proxy             *ProxyParams      `json:"proxy,omitempty" jsonschema:"Proxy server and credentials"`
	Stealth           bool              `json:"stealth,omitempty" jsonschema:"Reduce automation detectability"`
	SlowMo            int               `json:"slowMo,omitempty" jsonschema:"Delay before every page operation in milliseconds"`
}

func (p LaunchParams) Validate() error {
	if p.SlowMo < 0 {
		return invalidf("slowMo must not be negative")
	}
	if p.SlowMo > MaxSlowMo {
		return invalidf("slowMo must not exceed %d ms", MaxSlowMo)
	}
	if p.Viewport != nil {
		if err := validateViewport(*p.Viewport); err != nil {
			return err
		}
	}
	return nil
}

func validateViewport(v browser.Viewport) error {
	if v.Width <= 0 || v.Height <= 0 {
		return invalidf("viewport width and height must be positive")
	}
	if v.DeviceScaleFactor < 0 {
		return invalidf("viewport deviceScaleFactor must not be negative")
	}
	return nil
}

// PageParams addresses a page.
type PageParams struct {
	PageID string `json:"pageId" jsonschema:"Page identifier"`
}

func (p PageParams) Validate() error { return nil }

// CloseBrowserParams is the empty input of close_browser.
type CloseBrowserParams struct{}

func (p CloseBrowserParams) Validate() error { return nil }

// NavigateParams is the input of navigate.
type NavigateParams struct {
	PageID    string `json:"pageId" jsonschema:"Page identifier"`
	URL       string `json:"url" jsonschema:"URL to load"`
	WaitUntil string `json:"waitUntil,omitempty" jsonschema:"Readiness condition: load (default), domcontentloaded, networkidle0 or networkidle2"`
}

func (p NavigateParams) Validate() error {
	if _, err := browser.ParseWaitUntil(p.WaitUntil); err != nil {
		return invalidf("%v", err)
	}
	return nil
}

// SelectorParams addresses an element on a page.
type SelectorParams struct {
	PageID   string `json:"pageId" jsonschema:"Page identifier"`
	Selector string `json:"selector" jsonschema:"CSS selector"`
}

func (p SelectorParams) Validate() error {
	if p.Selector == "" {
		return invalidf("selector must not be empty")
	}
	return nil
}

// TypeParams is the input of type.
type TypeParams struct {
	PageID   string `json:"pageId" jsonschema:"Page identifier"`
	Selector string `json:"selector" jsonschema:"CSS selector"`
	Text     string `json:"text" jsonschema:"Text to type"`
}

func (p TypeParams) Validate() error {
	if p.Selector == "" {
		return invalidf("selector must not be empty")
	}
	return nil
}

// ScreenshotParams is the input of screenshot.
type ScreenshotParams struct {
	PageID   string `json:"pageId" jsonschema:"Page identifier"`
	Path     string `json:"path,omitempty" jsonschema:"File to write the PNG to"`
	FullPage bool   `json:"fullPage,omitempty" jsonschema:"Capture the full scrollable page"`
}

func (p ScreenshotParams) Validate() error { return nil }

// EvaluateParams is the input of evaluate.
type EvaluateParams struct {
	PageID string `json:"pageId" jsonschema:"Page identifier"`
	Script string `json:"script" jsonschema:"JavaScript function body; its return value is the result"`
}

func (p EvaluateParams) Validate() error { return nil }

// WaitForSelectorParams is the input of wait_for_selector.
type WaitForSelectorParams struct {
	PageID   string `json:"pageId" jsonschema:"Page identifier"`
	Selector string `json:"selector" jsonschema:"CSS selector"`
	Timeout  *int   `json:"timeout,omitempty" jsonschema:"Timeout in milliseconds (default 30000, 0 checks once)"`
}

func (p WaitForSelectorParams) Validate() error {
	if p.Selector == "" {
		return invalidf("selector must not be empty")
	}
	if p.Timeout != nil && *p.Timeout < 0 {
		return invalidf("timeout must not be negative")
	}
	if p.Timeout != nil && *p.Timeout > MaxSelectorTimeout {
		return invalidf("timeout must not exceed %d ms", MaxSelectorTimeout)
	}
	return nil
}

func (p WaitForSelectorParams) timeoutMillis() int {
	if p.Timeout == nil {
		return DefaultSelectorTimeout
	}
	return *p.Timeout
}

// SetCookiesParams is the input of set_cookies.
type SetCookiesParams struct {
	PageID  string           `json:"pageId" jsonschema:"Page identifier"`
	Cookies []browser.Cookie `json:"cookies" jsonschema:"Cookies to set"`
}

func (p SetCookiesParams) Validate() error {
	for i, c := range p.Cookies {
		if c.Name == "" {
			return invalidf("cookies[%d].name must not be empty", i)
		}
		if !browser.ValidSameSite(c.SameSite) {
			return invalidf("cookies[%d].sameSite must be Strict, Lax or None", i)
		}
	}
	return nil
}

// GetCookiesParams is the input of get_cookies.
type GetCookiesParams struct {
	PageID string   `json:"pageId" jsonschema:"Page identifier"`
	URLs   []string `json:"urls,omitempty" jsonschema:"Only return cookies for these URLs"`
}

func (p GetCookiesParams) Validate() error { return nil }

// DeleteCookiesParams is the input of delete_cookies.
type DeleteCookiesParams struct {
	PageID  string                 `json:"pageId" jsonschema:"Page identifier"`
	Cookies []browser.CookieFilter `json:"cookies" jsonschema:"Cookies to delete"`
}

func (p DeleteCookiesParams) Validate() error {
	for i, c := range p.Cookies {
		if c.Name == "" {
			return invalidf("cookies[%d].name must not be empty", i)
		}
	}
	return nil
}

// InterceptionParams is the input of set_request_interception.
type InterceptionParams struct {
	PageID         string            `json:"pageId" jsonschema:"Page identifier"`
	Enable         *bool             `json:"enable,omitempty" jsonschema:"Enable (default) or disable interception"`
	BlockResources []string          `json:"blockResources,omitempty" jsonschema:"Resource types to abort: image, stylesheet, font, script, document, media, xhr, fetch, websocket, eventsource, manifest, texttrack, other"`
	Headers        map[string]string `json:"headers,omitempty" jsonschema:"Headers merged into every continued request"`
}

func (p InterceptionParams) Validate() error { return nil }

func (p InterceptionParams) enabled() bool {
	return p.Enable == nil || *p.Enable
}
