package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pptrmcp/internal/browser"
	"github.com/standardbeagle/pptrmcp/internal/browser/browsertest"
)

func newTestSession(t *testing.T) (*Session, *browsertest.Provider) {
	t.Helper()
	p := browsertest.NewProvider()
	return New(p, Options{ToolPrefix: "puppeteer_", Headless: true}), p
}

func launched(t *testing.T) (*Session, *browsertest.Provider) {
	t.Helper()
	s, p := newTestSession(t)
	_, err := s.Launch(context.Background(), LaunchParams{})
	require.NoError(t, err)
	return s, p
}

func openPage(t *testing.T, s *Session, id string) *browsertest.Tab {
	t.Helper()
	_, err := s.NewPage(context.Background(), PageParams{PageID: id})
	require.NoError(t, err)
	tab, err := s.ResolveTab(id)
	require.NoError(t, err)
	return tab.(*browsertest.Tab)
}

func TestResolve(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.ResolveBrowser()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotLaunched))
	assert.Equal(t, "Browser not launched. Call puppeteer_launch first.", err.Error())

	_, err = s.ResolveTab("missing")
	assert.EqualError(t, err, "Page missing not found")
	assert.Equal(t, KindNotFound, Kind(err))
}

func TestNotLaunchedUsesToolPrefix(t *testing.T) {
	s := New(browsertest.NewProvider(), Options{ToolPrefix: "browser_"})
	_, err := s.NewPage(context.Background(), PageParams{PageID: "x"})
	assert.EqualError(t, err, "Browser not launched. Call browser_launch first.")
}

func TestNewPageWithoutLaunch(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := s.NewPage(context.Background(), PageParams{PageID: "x"})
	assert.EqualError(t, err, "Browser not launched. Call puppeteer_launch first.")
	assert.Equal(t, KindNotLaunched, Kind(err))
}

func TestClosePageTwice(t *testing.T) {
	ctx := context.Background()
	for _, id := range []string{"a", "", "ページ"} {
		t.Run(id, func(t *testing.T) {
			s, _ := launched(t)

			msg, err := s.NewPage(ctx, PageParams{PageID: id})
			require.NoError(t, err)
			assert.Equal(t, "Page "+id+" created", msg)

			msg, err = s.ClosePage(ctx, PageParams{PageID: id})
			require.NoError(t, err)
			assert.Equal(t, "Page "+id+" closed", msg)

			_, err = s.ClosePage(ctx, PageParams{PageID: id})
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, id, nf.ID)
		})
	}
}

func TestClosePageProviderFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	tab := openPage(t, s, "a")
	tab.Err = errors.New("Protocol error: Target closed")

	_, err := s.ClosePage(ctx, PageParams{PageID: "a"})
	assert.EqualError(t, err, "Protocol error: Target closed")
	assert.Equal(t, KindProvider, Kind(err))

	_, err = s.ResolveTab("a")
	assert.NoError(t, err)
}

func TestClosePageAfterRelaunchSurfacesProviderError(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	openPage(t, s, "a")

	// Relaunching closes the old browser but keeps stale registrations.
	_, err := s.Launch(ctx, LaunchParams{})
	require.NoError(t, err)

	_, err = s.ClosePage(ctx, PageParams{PageID: "a"})
	assert.ErrorIs(t, err, browsertest.ErrClosed)
	assert.Equal(t, KindProvider, Kind(err))
}

func TestCloseBrowserIdempotent(t *testing.T) {
	ctx := context.Background()
	s, p := launched(t)
	openPage(t, s, "a")

	for i := 0; i < 2; i++ {
		msg, err := s.CloseBrowser(ctx, CloseBrowserParams{})
		require.NoError(t, err)
		assert.Equal(t, "Browser closed", msg)
	}
	assert.Equal(t, 1, p.Last().CloseCalls)

	_, err := s.ResolveTab("a")
	assert.Error(t, err)
	_, err = s.ResolveBrowser()
	assert.ErrorIs(t, err, ErrNotLaunched)
}

func TestCloseBrowserSwallowsProviderError(t *testing.T) {
	s, p := launched(t)
	p.Last().CloseErr = errors.New("boom")

	msg, err := s.CloseBrowser(context.Background(), CloseBrowserParams{})
	require.NoError(t, err)
	assert.Equal(t, "Browser closed", msg)
	_, err = s.ResolveBrowser()
	assert.Error(t, err)
}

func TestLaunchClosesPreviousOnce(t *testing.T) {
	ctx := context.Background()
	s, p := newTestSession(t)

	_, err := s.Launch(ctx, LaunchParams{})
	require.NoError(t, err)
	first := p.Last()

	_, err = s.Launch(ctx, LaunchParams{})
	require.NoError(t, err)
	second := p.Last()

	assert.NotSame(t, first, second)
	assert.Equal(t, 1, first.CloseCalls)
	assert.Equal(t, 0, second.CloseCalls)
	assert.Len(t, p.Launches, 2)
}

func TestLaunchViewportAppliedToNewPages(t *testing.T) {
	ctx := context.Background()
	s, p := newTestSession(t)
	v := browser.Viewport{Width: 1280, Height: 720, DeviceScaleFactor: 2}

	_, err := s.Launch(ctx, LaunchParams{Viewport: &v})
	require.NoError(t, err)
	assert.Equal(t, []browser.Viewport{v}, p.Last().InitialTab().Viewports())

	a := openPage(t, s, "a")
	b := openPage(t, s, "b")
	assert.Equal(t, []browser.Viewport{v}, a.Viewports())
	assert.Equal(t, []browser.Viewport{v}, b.Viewports())

	// A launch without a viewport clears the default.
	_, err = s.Launch(ctx, LaunchParams{})
	require.NoError(t, err)
	c := openPage(t, s, "c")
	assert.Empty(t, c.Viewports())
}

func TestLaunchConfig(t *testing.T) {
	ctx := context.Background()
	s, p := newTestSession(t)
	headless := false

	_, err := s.Launch(ctx, LaunchParams{
		Headless:       &headless,
		Args:           []string{"--lang=de"},
		ExecutablePath: "/opt/chrome",
		UserDataDir:    "/tmp/profile",
		Proxy:          &ProxyParams{Server: "http://proxy:8080", Username: "u", Password: "p"},
		SlowMo:         50,
	})
	require.NoError(t, err)

	cfg := p.Launches[0]
	assert.False(t, cfg.Headless)
	assert.Equal(t, "/opt/chrome", cfg.ExecutablePath)
	assert.Equal(t, "/tmp/profile", cfg.UserDataDir)
	assert.Equal(t, 50*time.Millisecond, cfg.SlowMo)
	assert.Equal(t, []string{"--lang=de", "--no-sandbox", "--disable-setuid-sandbox", "--proxy-server=http://proxy:8080"}, cfg.Args)
	require.NotNil(t, cfg.ProxyAuth)
	assert.Equal(t, browser.Credentials{Username: "u", Password: "p"}, *cfg.ProxyAuth)
}

func TestLaunchDefaultsFromOptions(t *testing.T) {
	p := browsertest.NewProvider()
	s := New(p, Options{Headless: true, ExecutablePath: "/usr/bin/chromium"})

	_, err := s.Launch(context.Background(), LaunchParams{Proxy: &ProxyParams{}})
	require.NoError(t, err)

	cfg := p.Launches[0]
	assert.True(t, cfg.Headless)
	assert.Equal(t, "/usr/bin/chromium", cfg.ExecutablePath)
	assert.Nil(t, cfg.ProxyAuth)
	for _, a := range cfg.Args {
		assert.False(t, strings.HasPrefix(a, "--proxy-server"))
	}
}

func TestLaunchStealth(t *testing.T) {
	ctx := context.Background()

	t.Run("default user agent", func(t *testing.T) {
		s, p := newTestSession(t)
		_, err := s.Launch(ctx, LaunchParams{Stealth: true})
		require.NoError(t, err)

		cfg := p.Launches[0]
		assert.True(t, cfg.Stealth)
		assert.Subset(t, cfg.Args, browser.StealthArgs)

		tab := p.Last().InitialTab()
		assert.Equal(t, []string{browser.StealthUserAgent}, tab.UserAgents())
		assert.Equal(t, []string{browser.StealthScript}, tab.InitScripts())
	})

	t.Run("explicit user agent wins", func(t *testing.T) {
		s, p := newTestSession(t)
		_, err := s.Launch(ctx, LaunchParams{Stealth: true, UserAgent: "custom"})
		require.NoError(t, err)
		assert.Equal(t, []string{"custom"}, p.Last().InitialTab().UserAgents())
	})

	t.Run("no default tab", func(t *testing.T) {
		s, p := newTestSession(t)
		p.InitialPages = 0
		msg, err := s.Launch(ctx, LaunchParams{Stealth: true})
		require.NoError(t, err)
		assert.Equal(t, "Browser launched successfully", msg)
	})

	t.Run("plain launch leaves default tab alone", func(t *testing.T) {
		s, p := newTestSession(t)
		_, err := s.Launch(ctx, LaunchParams{})
		require.NoError(t, err)
		tab := p.Last().InitialTab()
		assert.Empty(t, tab.UserAgents())
		assert.Empty(t, tab.InitScripts())
		assert.Empty(t, tab.Viewports())
	})
}

func TestLaunchConnect(t *testing.T) {
	s, p := newTestSession(t)
	msg, err := s.Launch(context.Background(), LaunchParams{BrowserWSEndpoint: "ws://127.0.0.1:9222/devtools/browser/x"})
	require.NoError(t, err)
	assert.Equal(t, "Browser connected to ws://127.0.0.1:9222/devtools/browser/x successfully", msg)
	assert.Empty(t, p.Launches)
	assert.Equal(t, []string{"ws://127.0.0.1:9222/devtools/browser/x"}, p.Endpoints)
}

func TestLaunchFailurePropagates(t *testing.T) {
	s, p := newTestSession(t)
	p.LaunchErr = errors.New("Failed to launch the browser process!")

	_, err := s.Launch(context.Background(), LaunchParams{})
	assert.EqualError(t, err, "Failed to launch the browser process!")
	assert.Equal(t, KindProvider, Kind(err))
	_, err = s.ResolveBrowser()
	assert.Error(t, err)
}

func TestNavigate(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	tab := openPage(t, s, "a")

	msg, err := s.Navigate(ctx, NavigateParams{PageID: "a", URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Navigated to https://example.com", msg)

	_, err = s.Navigate(ctx, NavigateParams{PageID: "a", URL: "https://example.com/2", WaitUntil: "networkidle2"})
	require.NoError(t, err)
	assert.Equal(t, []browser.WaitUntil{browser.WaitLoad, browser.WaitNetworkIdle2}, tab.Waits())

	_, err = s.Navigate(ctx, NavigateParams{PageID: "missing", URL: "https://x"})
	assert.EqualError(t, err, "Page missing not found")
}

func TestNavigateTimeoutOption(t *testing.T) {
	p := browsertest.NewProvider()
	s := New(p, Options{NavigationTimeout: 5 * time.Second})
	ctx := context.Background()
	_, err := s.Launch(ctx, LaunchParams{})
	require.NoError(t, err)
	tab := openPage(t, s, "a")

	_, err = s.Navigate(ctx, NavigateParams{PageID: "a", URL: "https://example.com"})
	require.NoError(t, err)
	assert.InDelta(t, 5*time.Second, tab.NavigationDeadline(), float64(time.Second))
}

func TestInteraction(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	tab := openPage(t, s, "a")
	hello, empty := "hello", ""
	tab.Elements["#msg"] = &hello
	tab.Elements["#empty"] = &empty
	tab.Elements["#null"] = nil

	msg, err := s.Click(ctx, SelectorParams{PageID: "a", Selector: "#msg"})
	require.NoError(t, err)
	assert.Equal(t, "Clicked #msg", msg)

	msg, err = s.Type(ctx, TypeParams{PageID: "a", Selector: "#msg", Text: "{{ raw }}"})
	require.NoError(t, err)
	assert.Equal(t, "Typed into #msg", msg)
	assert.Equal(t, []string{"{{ raw }}"}, tab.Typed())

	msg, err = s.GetText(ctx, SelectorParams{PageID: "a", Selector: "#msg"})
	require.NoError(t, err)
	assert.Equal(t, "Text content: hello", msg)

	msg, err = s.GetText(ctx, SelectorParams{PageID: "a", Selector: "#empty"})
	require.NoError(t, err)
	assert.Equal(t, "Text content: ", msg)

	msg, err = s.GetText(ctx, SelectorParams{PageID: "a", Selector: "#null"})
	require.NoError(t, err)
	assert.Equal(t, "Text content: null", msg)

	_, err = s.GetText(ctx, SelectorParams{PageID: "a", Selector: ".nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".nope")
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, KindElementNotFound, Kind(err))

	_, err = s.Click(ctx, SelectorParams{PageID: "a", Selector: ".nope"})
	assert.Equal(t, KindProvider, Kind(err))
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	tab := openPage(t, s, "a")
	tab.Results["return NaN"] = browser.EvalResult{Unserializable: "NaN"}
	tab.Results["return Infinity"] = browser.EvalResult{Unserializable: "Infinity"}
	tab.Results["return -Infinity"] = browser.EvalResult{Unserializable: "-Infinity"}
	tab.Results["return {a: [1, 2]}"] = browser.EvalResult{JSON: []byte(`{"a": [1, 2]}`)}
	tab.Results["return 1n"] = browser.EvalResult{Unserializable: "1n"}

	tests := []struct {
		script string
		want   string
	}{
		{"return NaN", "Script result: null"},
		{"return Infinity", "Script result: null"},
		{"return -Infinity", "Script result: null"},
		{"return undefined", "Script result: undefined"},
		{"return {a: [1, 2]}", `Script result: {"a":[1,2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			msg, err := s.Evaluate(ctx, EvaluateParams{PageID: "a", Script: tt.script})
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg)
		})
	}

	_, err := s.Evaluate(ctx, EvaluateParams{PageID: "a", Script: "return 1n"})
	assert.ErrorIs(t, err, browser.ErrBigInt)
}

func TestWaitForSelector(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	tab := openPage(t, s, "a")
	tab.Elements["#ready"] = nil

	msg, err := s.WaitForSelector(ctx, WaitForSelectorParams{PageID: "a", Selector: "#ready"})
	require.NoError(t, err)
	assert.Equal(t, "Selector #ready found", msg)

	zero := 0
	_, err = s.WaitForSelector(ctx, WaitForSelectorParams{PageID: "a", Selector: "#late", Timeout: &zero})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#late")
	assert.Contains(t, err.Error(), "0ms")

	_, err = s.WaitForSelector(ctx, WaitForSelectorParams{PageID: "a", Selector: "#late"})
	assert.Contains(t, err.Error(), "30000ms")
}

func TestScreenshotScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)
	path := filepath.Join(t.TempDir(), "x.png")

	_, err := s.Launch(ctx, LaunchParams{})
	require.NoError(t, err)
	_, err = s.NewPage(ctx, PageParams{PageID: "a"})
	require.NoError(t, err)
	_, err = s.Navigate(ctx, NavigateParams{PageID: "a", URL: "https://example.com"})
	require.NoError(t, err)

	msg, err := s.Screenshot(ctx, ScreenshotParams{PageID: "a", Path: path})
	require.NoError(t, err)
	assert.Equal(t, "Screenshot saved to "+path, msg)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	msg, err = s.Screenshot(ctx, ScreenshotParams{PageID: "a", FullPage: true})
	require.NoError(t, err)
	assert.Equal(t, "Screenshot taken", msg)
}

func TestCookies(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	openPage(t, s, "a")

	msg, err := s.SetCookies(ctx, SetCookiesParams{PageID: "a", Cookies: []browser.Cookie{
		{Name: "a", Value: "1", URL: "https://example.com"},
		{Name: "b", Value: "2", URL: "https://other.test"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Set 2 cookie(s)", msg)

	all, err := s.GetCookies(ctx, GetCookiesParams{PageID: "a"})
	require.NoError(t, err)
	empty, err := s.GetCookies(ctx, GetCookiesParams{PageID: "a", URLs: []string{}})
	require.NoError(t, err)
	assert.Equal(t, all, empty)
	assert.True(t, strings.HasPrefix(all, "Cookies: [\n  {"))

	scoped, err := s.GetCookies(ctx, GetCookiesParams{PageID: "a", URLs: []string{"https://other.test"}})
	require.NoError(t, err)
	assert.Contains(t, scoped, `"name": "b"`)
	assert.NotContains(t, scoped, `"name": "a"`)

	msg, err = s.DeleteCookies(ctx, DeleteCookiesParams{PageID: "a", Cookies: []browser.CookieFilter{{Name: "a"}, {Name: "zzz"}}})
	require.NoError(t, err)
	assert.Equal(t, "Deleted 2 cookie(s)", msg)

	none, err := s.GetCookies(ctx, GetCookiesParams{PageID: "a", URLs: []string{"https://nowhere.test"}})
	require.NoError(t, err)
	assert.Equal(t, "Cookies: []", none)
}

func TestGetCookiesPrintsEveryField(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	openPage(t, s, "a")

	_, err := s.SetCookies(ctx, SetCookiesParams{PageID: "a", Cookies: []browser.Cookie{
		{Name: "sid", Value: "1", Domain: "example.com", Path: "/"},
	}})
	require.NoError(t, err)

	out, err := s.GetCookies(ctx, GetCookiesParams{PageID: "a"})
	require.NoError(t, err)

	var cookies []map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(out, "Cookies: ")), &cookies))
	require.Len(t, cookies, 1)
	for _, key := range []string{"name", "value", "domain", "path", "expires", "size", "httpOnly", "secure", "session"} {
		assert.Contains(t, cookies[0], key)
	}
	assert.Equal(t, false, cookies[0]["httpOnly"])
	assert.Equal(t, false, cookies[0]["secure"])
	assert.NotContains(t, cookies[0], "sameSite")
}

func TestRequestInterception(t *testing.T) {
	ctx := context.Background()
	s, _ := launched(t)
	tab := openPage(t, s, "a")

	msg, err := s.SetRequestInterception(ctx, InterceptionParams{
		PageID:         "a",
		BlockResources: []string{"image"},
		Headers:        map[string]string{"X-Test": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Request interception enabled", msg)
	assert.True(t, tab.Intercepting())

	img := &browsertest.Request{Type: "image"}
	tab.Emit(img)
	assert.True(t, img.Aborted)

	doc := &browsertest.Request{Type: "document", Header: map[string]string{"accept": "text/html"}}
	tab.Emit(doc)
	assert.False(t, doc.Aborted)
	assert.Equal(t, map[string]string{"accept": "text/html", "X-Test": "1"}, doc.Continued)

	off := false
	msg, err = s.SetRequestInterception(ctx, InterceptionParams{PageID: "a", Enable: &off})
	require.NoError(t, err)
	assert.Equal(t, "Request interception disabled", msg)
	assert.False(t, tab.Intercepting())
	assert.Equal(t, 1, tab.HandlerCount())

	_, err = s.SetRequestInterception(ctx, InterceptionParams{PageID: "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, tab.HandlerCount())
}

func TestInterceptionFailuresQuietAfterTransportCloses(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	ctx := context.Background()
	s, _ := launched(t)
	tab := openPage(t, s, "a")

	// Two enables leave two callbacks; the second finds the request handled.
	for range 2 {
		_, err := s.SetRequestInterception(ctx, InterceptionParams{PageID: "a"})
		require.NoError(t, err)
	}

	tab.Emit(&browsertest.Request{Link: "https://example.com/a", Type: "xhr"})
	assert.Contains(t, buf.String(), "[session] intercept https://example.com/a")

	buf.Reset()
	s.MarkTransportClosed()
	tab.Emit(&browsertest.Request{Link: "https://example.com/b", Type: "xhr"})
	assert.Empty(t, buf.String())
}

func TestShutdown(t *testing.T) {
	s, p := launched(t)
	openPage(t, s, "a")

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, 1, p.Last().CloseCalls)
	assert.Equal(t, 1, p.Closed)
	_, err := s.ResolveTab("a")
	assert.Error(t, err)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, 1, p.Last().CloseCalls)
}

func TestTransportFlag(t *testing.T) {
	s, _ := newTestSession(t)
	assert.True(t, s.TransportAlive())
	assert.True(t, s.MarkTransportClosed())
	assert.False(t, s.MarkTransportClosed())
	assert.False(t, s.TransportAlive())
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrNotLaunched, KindNotLaunched},
		{&NotFoundError{ID: "x"}, KindNotFound},
		{&ElementNotFoundError{Selector: "x"}, KindElementNotFound},
		{&UnknownToolError{Name: "x"}, KindUnknownTool},
		{invalidf("x"), KindInvalidArguments},
		{errors.New("net::ERR_NAME_NOT_RESOLVED"), KindProvider},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err), tt.err.Error())
	}
}

func TestParamsValidate(t *testing.T) {
	neg := -1
	huge := 10_000_000_000_000
	maxTimeout := MaxSelectorTimeout
	tests := []struct {
		name   string
		params interface{ Validate() error }
		ok     bool
	}{
		{"navigate default", NavigateParams{PageID: "a", URL: "u"}, true},
		{"navigate bad waitUntil", NavigateParams{PageID: "a", URL: "u", WaitUntil: "idle"}, false},
		{"launch negative slowMo", LaunchParams{SlowMo: -5}, false},
		{"launch zero viewport", LaunchParams{Viewport: &browser.Viewport{}}, false},
		{"launch viewport", LaunchParams{Viewport: &browser.Viewport{Width: 10, Height: 10}}, true},
		{"wait negative timeout", WaitForSelectorParams{Selector: "a", Timeout: &neg}, false},
		{"wait overflowing timeout", WaitForSelectorParams{Selector: "a", Timeout: &huge}, false},
		{"wait max timeout", WaitForSelectorParams{Selector: "a", Timeout: &maxTimeout}, true},
		{"launch overflowing slowMo", LaunchParams{SlowMo: huge}, false},
		{"launch max slowMo", LaunchParams{SlowMo: MaxSlowMo}, true},
		{"cookie without name", SetCookiesParams{Cookies: []browser.Cookie{{Value: "x"}}}, false},
		{"cookie bad sameSite", SetCookiesParams{Cookies: []browser.Cookie{{Name: "a", SameSite: "lax"}}}, false},
		{"delete without name", DeleteCookiesParams{Cookies: []browser.CookieFilter{{}}}, false},
		{"empty selector", SelectorParams{PageID: "a"}, false},
		{"empty page id", PageParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, KindInvalidArguments, Kind(err))
		})
	}
}
