package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// Launch starts or attaches to a browser, replacing the current one.
func (s *Session) Launch(ctx context.Context, p LaunchParams) (string, error) {
	if s.browser != nil {
		if err := s.browser.Close(ctx); err != nil {
			s.Logf("closing previous browser: %v", err)
		}
		s.browser = nil
	}

	if p.Viewport != nil {
		v := *p.Viewport
		s.defaultViewport = &v
	} else {
		s.defaultViewport = nil
	}

	cfg := s.launchConfig(p)

	var (
		b   browser.Browser
		err error
	)
	if p.BrowserWSEndpoint != "" {
		b, err = s.provider.Connect(ctx, p.BrowserWSEndpoint, cfg)
	} else {
		b, err = s.provider.Launch(ctx, cfg)
	}
	if err != nil {
		return "", err
	}
	s.browser = b

	if p.Viewport != nil || p.UserAgent != "" || p.Stealth {
		if err := s.prepareDefaultTab(ctx, p); err != nil {
			return "", err
		}
	}

	if p.BrowserWSEndpoint != "" {
		return fmt.Sprintf("Browser connected to %s successfully", p.BrowserWSEndpoint), nil
	}
	return "Browser launched successfully", nil
}

func (s *Session) launchConfig(p LaunchParams) browser.LaunchConfig {
	cfg := browser.LaunchConfig{
		Headless:       s.opts.Headless,
		ExecutablePath: s.opts.ExecutablePath,
		UserDataDir:    p.UserDataDir,
		SlowMo:         time.Duration(p.SlowMo) * time.Millisecond,
		Stealth:        p.Stealth,
	}
	if p.Headless != nil {
		cfg.Headless = *p.Headless
	}
	if p.ExecutablePath != "" {
		cfg.ExecutablePath = p.ExecutablePath
	}

	var proxyServer string
	if p.Proxy != nil {
		proxyServer = p.Proxy.Server
		if p.Proxy.Username != "" || p.Proxy.Password != "" {
			cfg.ProxyAuth = &browser.Credentials{
				Username: p.Proxy.Username,
				Password: p.Proxy.Password,
			}
		}
	}
	cfg.Args = browser.BuildArgs(p.Args, p.Stealth, proxyServer)
	return cfg
}

// prepareDefaultTab applies launch-time emulation to the tab the browser
// opened with. Nothing happens when there is none.
func (s *Session) prepareDefaultTab(ctx context.Context, p LaunchParams) error {
	pages, err := s.browser.Pages(ctx)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return nil
	}
	tab := pages[0]

	if p.Viewport != nil {
		if err := tab.SetViewport(ctx, *p.Viewport); err != nil {
			return err
		}
	}

	ua := p.UserAgent
	if ua == "" && p.Stealth {
		ua = browser.StealthUserAgent
	}
	if ua != "" {
		if err := tab.SetUserAgent(ctx, ua); err != nil {
			return err
		}
	}

	if p.Stealth {
		if err := tab.EvaluateOnNewDocument(ctx, browser.StealthScript); err != nil {
			return err
		}
	}
	return nil
}

// NewPage opens a tab and registers it under the identifier, replacing
// any previous registration.
func (s *Session) NewPage(ctx context.Context, p PageParams) (string, error) {
	b, err := s.ResolveBrowser()
	if err != nil {
		return "", err
	}
	tab, err := b.NewPage(ctx)
	if err != nil {
		return "", err
	}
	if s.defaultViewport != nil {
		if err := tab.SetViewport(ctx, *s.defaultViewport); err != nil {
			if cerr := tab.Close(ctx); cerr != nil {
				s.Logf("closing page after viewport failure: %v", cerr)
			}
			return "", err
		}
	}
	s.tabs[p.PageID] = tab
	return fmt.Sprintf("Page %s created", p.PageID), nil
}

// ClosePage closes a tab. The registration stays when the provider fails.
func (s *Session) ClosePage(ctx context.Context, p PageParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	if err := tab.Close(ctx); err != nil {
		return "", err
	}
	delete(s.tabs, p.PageID)
	return fmt.Sprintf("Page %s closed", p.PageID), nil
}

// CloseBrowser closes the browser if there is one. It always succeeds.
func (s *Session) CloseBrowser(ctx context.Context, _ CloseBrowserParams) (string, error) {
	if s.browser != nil {
		if err := s.browser.Close(ctx); err != nil {
			s.Logf("closing browser: %v", err)
		}
		s.browser = nil
		s.tabs = make(map[string]browser.Tab)
	}
	return "Browser closed", nil
}

func (s *Session) Navigate(ctx context.Context, p NavigateParams) (string, error) {
	waitUntil, err := browser.ParseWaitUntil(p.WaitUntil)
	if err != nil {
		return "", invalidf("%v", err)
	}
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}

	if s.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.NavigationTimeout)
		defer cancel()
	}
	if err := tab.Goto(ctx, p.URL, waitUntil); err != nil {
		return "", err
	}
	return fmt.Sprintf("Navigated to %s", p.URL), nil
}

func (s *Session) Click(ctx context.Context, p SelectorParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	if err := tab.Click(ctx, p.Selector); err != nil {
		return "", err
	}
	return fmt.Sprintf("Clicked %s", p.Selector), nil
}

func (s *Session) Type(ctx context.Context, p TypeParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	if err := tab.Type(ctx, p.Selector, p.Text); err != nil {
		return "", err
	}
	return fmt.Sprintf("Typed into %s", p.Selector), nil
}

// GetText returns the textContent of the first match. A null text
// renders as "null".
func (s *Session) GetText(ctx context.Context, p SelectorParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	el, err := tab.Query(ctx, p.Selector)
	if err != nil {
		return "", err
	}
	if el == nil {
		return "", &ElementNotFoundError{Selector: p.Selector}
	}
	text, err := el.TextContent(ctx)
	if err != nil {
		return "", err
	}
	if text == nil {
		return "Text content: null", nil
	}
	return "Text content: " + *text, nil
}

func (s *Session) Evaluate(ctx context.Context, p EvaluateParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	res, err := tab.Evaluate(ctx, p.Script)
	if err != nil {
		return "", err
	}
	out, err := res.String()
	if err != nil {
		return "", err
	}
	return "Script result: " + out, nil
}

func (s *Session) WaitForSelector(ctx context.Context, p WaitForSelectorParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	timeout := time.Duration(p.timeoutMillis()) * time.Millisecond
	if err := tab.WaitForSelector(ctx, p.Selector, timeout); err != nil {
		return "", err
	}
	return fmt.Sprintf("Selector %s found", p.Selector), nil
}

// Screenshot captures a PNG. The bytes are only kept when a path is given.
func (s *Session) Screenshot(ctx context.Context, p ScreenshotParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	if _, err := tab.Screenshot(ctx, browser.ScreenshotOptions{Path: p.Path, FullPage: p.FullPage}); err != nil {
		return "", err
	}
	if p.Path != "" {
		return fmt.Sprintf("Screenshot saved to %s", p.Path), nil
	}
	return "Screenshot taken", nil
}

func (s *Session) SetCookies(ctx context.Context, p SetCookiesParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	if err := tab.SetCookies(ctx, p.Cookies); err != nil {
		return "", err
	}
	return fmt.Sprintf("Set %d cookie(s)", len(p.Cookies)), nil
}

// GetCookies reads the jar. An empty URL list reads like no list at all.
func (s *Session) GetCookies(ctx context.Context, p GetCookiesParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	cookies, err := tab.Cookies(ctx, p.URLs...)
	if err != nil {
		return "", err
	}
	records := make([]cookieRecord, 0, len(cookies))
	for _, c := range cookies {
		records = append(records, newCookieRecord(c))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return "Cookies: " + string(data), nil
}

// cookieRecord is a cookie as get_cookies reports it. Every flag is
// printed, false or not.
type cookieRecord struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	Size     int     `json:"size"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	Session  bool    `json:"session"`
	SameSite string  `json:"sameSite,omitempty"`
}

func newCookieRecord(c browser.Cookie) cookieRecord {
	return cookieRecord{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		Size:     c.Size,
		HTTPOnly: c.HTTPOnly,
		Secure:   c.Secure,
		Session:  c.Session,
		SameSite: c.SameSite,
	}
}

// DeleteCookies reports the number of cookies requested, not removed.
func (s *Session) DeleteCookies(ctx context.Context, p DeleteCookiesParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	if err := tab.DeleteCookies(ctx, p.Cookies); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted %d cookie(s)", len(p.Cookies)), nil
}

// SetRequestInterception toggles interception. Every enable registers a
// fresh callback for the given policy.
func (s *Session) SetRequestInterception(ctx context.Context, p InterceptionParams) (string, error) {
	tab, err := s.ResolveTab(p.PageID)
	if err != nil {
		return "", err
	}
	enable := p.enabled()
	if enable {
		tab.OnRequest(browser.NewInterceptPolicy(p.BlockResources, p.Headers).Handler(s.Logf))
	}
	if err := tab.SetRequestInterception(ctx, enable); err != nil {
		return "", err
	}
	if enable {
		return "Request interception enabled", nil
	}
	return "Request interception disabled", nil
}
