package browsertest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

const conformancePage = `<!DOCTYPE html>
<html>
<head><title>conformance</title></head>
<body>
<h1 id="title">Hello</h1>
<p id="empty"></p>
<input id="name">
<img src="/img.png">
</body>
</html>`

// site serves conformancePage and records what the browser asked for.
type site struct {
	mu      sync.Mutex
	paths   []string
	headers map[string]string
}

func (s *site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	if r.URL.Path == "/" {
		s.headers = map[string]string{"X-Test": r.Header.Get("X-Test")}
	}
	s.mu.Unlock()

	w.Header().Set("Cache-Control", "no-store")
	switch r.URL.Path {
	case "/":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(conformancePage))
	case "/img.png":
		w.Header().Set("Content-Type", "image/png")
	default:
		http.NotFound(w, r)
	}
}

func (s *site) requested(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (s *site) header(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[name]
}

func (s *site) reset() {
	s.mu.Lock()
	s.paths = nil
	s.headers = nil
	s.mu.Unlock()
}

// RunConformance drives a real engine through the tab operations the
// tools rely on. It launches one browser from p with cfg and closes it
// when the test ends.
func RunConformance(t *testing.T, p browser.Provider, cfg browser.LaunchConfig) {
	t.Helper()

	srv := &site{}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	b, err := p.Launch(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		assert.NoError(t, b.Close(closeCtx))
	})

	tab, err := b.NewPage(ctx)
	require.NoError(t, err)

	t.Run("navigate", func(t *testing.T) {
		require.NoError(t, tab.Goto(ctx, ts.URL+"/", browser.WaitLoad))
		assert.True(t, srv.requested("/"))

		res, err := tab.Evaluate(ctx, "return document.title")
		require.NoError(t, err)
		out, err := res.String()
		require.NoError(t, err)
		assert.Equal(t, `"conformance"`, out)
	})

	t.Run("text content", func(t *testing.T) {
		el, err := tab.Query(ctx, "#title")
		require.NoError(t, err)
		require.NotNil(t, el)
		text, err := el.TextContent(ctx)
		require.NoError(t, err)
		require.NotNil(t, text)
		assert.Equal(t, "Hello", *text)

		el, err = tab.Query(ctx, "#empty")
		require.NoError(t, err)
		require.NotNil(t, el)
		text, err = el.TextContent(ctx)
		require.NoError(t, err)
		require.NotNil(t, text)
		assert.Equal(t, "", *text)

		el, err = tab.Query(ctx, "#missing")
		require.NoError(t, err)
		assert.Nil(t, el)
	})

	t.Run("type and click", func(t *testing.T) {
		require.NoError(t, tab.Type(ctx, "#name", "ada"))
		require.NoError(t, tab.Click(ctx, "#title"))

		res, err := tab.Evaluate(ctx, "return document.querySelector('#name').value")
		require.NoError(t, err)
		out, err := res.String()
		require.NoError(t, err)
		assert.Equal(t, `"ada"`, out)
	})

	t.Run("evaluate", func(t *testing.T) {
		tests := []struct {
			script string
			want   string
		}{
			{"return NaN", "null"},
			{"return 1 / 0", "null"},
			{"return undefined", `"undefined"`},
			{"return document.textContent", "null"},
			{"return {a: [1, 2]}", `{"a":[1,2]}`},
			{"return await Promise.resolve(42)", "42"},
		}
		for _, tt := range tests {
			res, err := tab.Evaluate(ctx, tt.script)
			require.NoError(t, err, tt.script)
			out, err := res.String()
			require.NoError(t, err, tt.script)
			assert.JSONEq(t, tt.want, jsonOrQuoted(out), tt.script)
		}

		_, err := tab.Evaluate(ctx, "throw new Error('boom')")
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("wait for selector", func(t *testing.T) {
		require.NoError(t, tab.WaitForSelector(ctx, "#title", time.Second))
		assert.Error(t, tab.WaitForSelector(ctx, "#never", 200*time.Millisecond))
	})

	t.Run("screenshot", func(t *testing.T) {
		png, err := tab.Screenshot(ctx, browser.ScreenshotOptions{})
		require.NoError(t, err)
		require.Greater(t, len(png), 8)
		assert.Equal(t, "\x89PNG", string(png[:4]))
	})

	t.Run("interception", func(t *testing.T) {
		policy := browser.NewInterceptPolicy([]string{"image"}, map[string]string{"X-Test": "1"})
		tab.OnRequest(policy.Handler(t.Logf))
		require.NoError(t, tab.SetRequestInterception(ctx, true))

		srv.reset()
		require.NoError(t, tab.Goto(ctx, ts.URL+"/", browser.WaitLoad))
		assert.True(t, srv.requested("/"))
		assert.Equal(t, "1", srv.header("X-Test"))
		assert.False(t, srv.requested("/img.png"), "blocked image reached the server")

		require.NoError(t, tab.SetRequestInterception(ctx, false))
		srv.reset()
		require.NoError(t, tab.Goto(ctx, ts.URL+"/", browser.WaitLoad))
		assert.Eventually(t, func() bool { return srv.requested("/img.png") }, 5*time.Second, 50*time.Millisecond)
		assert.Empty(t, srv.header("X-Test"))
	})

	t.Run("close page", func(t *testing.T) {
		extra, err := b.NewPage(ctx)
		require.NoError(t, err)
		require.NoError(t, extra.Close(ctx))

		pages, err := b.Pages(ctx)
		require.NoError(t, err)
		assert.NotContains(t, pages, extra)
	})
}

// jsonOrQuoted lets "undefined" compare as a JSON string.
func jsonOrQuoted(s string) string {
	if s == "undefined" {
		return `"undefined"`
	}
	return s
}
