package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// lifecycleEventName maps a readiness condition to the Page.lifecycleEvent
// name that signals it.
func lifecycleEventName(w browser.WaitUntil) string {
	switch w {
	case browser.WaitDOMContentLoaded:
		return "DOMContentLoaded"
	case browser.WaitNetworkIdle0:
		return "networkIdle"
	case browser.WaitNetworkIdle2:
		return "networkAlmostIdle"
	default:
		return "load"
	}
}

// authAttemptTTL bounds how long a request that was given credentials
// stays remembered. A request still challenging after that is treated as new.
const authAttemptTTL = time.Minute

// authAttempts remembers which paused requests were already answered
// with proxy credentials, so a second challenge is cancelled instead of
// looping.
type authAttempts struct {
	mu    sync.Mutex
	tried map[fetch.RequestID]time.Time
}

func newAuthAttempts() *authAttempts {
	return &authAttempts{tried: make(map[fetch.RequestID]time.Time)}
}

// first reports whether id has not been answered yet and marks it.
// A repeat challenge ends the request, so its entry is dropped.
func (a *authAttempts) first(id fetch.RequestID, now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, at := range a.tried {
		if now.Sub(at) > authAttemptTTL {
			delete(a.tried, k)
		}
	}
	if _, ok := a.tried[id]; ok {
		delete(a.tried, id)
		return false
	}
	a.tried[id] = now
	return true
}

func (a *authAttempts) pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tried)
}

// lifecycleWatch records lifecycle events per loader so a navigation can
// wait for an event that fired before the wait started.
type lifecycleWatch struct {
	mu     sync.Mutex
	seen   map[cdp.LoaderID]map[string]bool
	notify chan struct{}
}

func newLifecycleWatch() *lifecycleWatch {
	return &lifecycleWatch{
		seen:   make(map[cdp.LoaderID]map[string]bool),
		notify: make(chan struct{}, 1),
	}
}

func (w *lifecycleWatch) reset() {
	w.mu.Lock()
	w.seen = make(map[cdp.LoaderID]map[string]bool)
	w.mu.Unlock()
}

func (w *lifecycleWatch) record(loader cdp.LoaderID, name string) {
	w.mu.Lock()
	events := w.seen[loader]
	if events == nil {
		events = make(map[string]bool)
		w.seen[loader] = events
	}
	events[name] = true
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *lifecycleWatch) has(loader cdp.LoaderID, name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seen[loader][name]
}

func (w *lifecycleWatch) wait(ctx context.Context, loader cdp.LoaderID, name string) error {
	for {
		if w.has(loader, name) {
			return nil
		}
		select {
		case <-w.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func evalResult(obj *runtime.RemoteObject) browser.EvalResult {
	if obj == nil || obj.Type == runtime.TypeUndefined {
		return browser.EvalResult{Undefined: true}
	}
	if obj.UnserializableValue != "" {
		return browser.EvalResult{Unserializable: string(obj.UnserializableValue)}
	}
	return browser.EvalResult{JSON: json.RawMessage(obj.Value)}
}

// textValue decodes a by-value string result; null yields nil.
func textValue(obj *runtime.RemoteObject) (*string, error) {
	if obj == nil || len(obj.Value) == 0 || obj.Subtype == runtime.SubtypeNull {
		return nil, nil
	}
	var s *string
	if err := json.Unmarshal(obj.Value, &s); err != nil {
		return nil, fmt.Errorf("decode text content: %w", err)
	}
	return s, nil
}

// cookieParam converts a descriptor for Network.setCookies. Without a URL
// or domain the cookie is scoped to the tab's current http(s) page.
func cookieParam(c browser.Cookie, pageURL string) *network.CookieParam {
	p := &network.CookieParam{
		Name:     c.Name,
		Value:    c.Value,
		URL:      c.URL,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: network.CookieSameSite(c.SameSite),
	}
	if p.URL == "" && p.Domain == "" && strings.HasPrefix(pageURL, "http") {
		p.URL = pageURL
	}
	if c.Expires > 0 {
		sec, frac := math.Modf(c.Expires)
		exp := cdp.TimeSinceEpoch(time.Unix(int64(sec), int64(frac*1e9)))
		p.Expires = &exp
	}
	return p
}

func fromNetworkCookie(c *network.Cookie) browser.Cookie {
	return browser.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		Size:     int(c.Size),
		HTTPOnly: c.HTTPOnly,
		Secure:   c.Secure,
		Session:  c.Session,
		SameSite: string(c.SameSite),
	}
}

func deleteCookiesParams(f browser.CookieFilter, pageURL string) *network.DeleteCookiesParams {
	p := network.DeleteCookies(f.Name)
	switch {
	case f.URL != "":
		p = p.WithURL(f.URL)
	case f.Domain == "" && strings.HasPrefix(pageURL, "http"):
		p = p.WithURL(pageURL)
	}
	if f.Domain != "" {
		p = p.WithDomain(f.Domain)
	}
	if f.Path != "" {
		p = p.WithPath(f.Path)
	}
	return p
}

func resourceType(rt network.ResourceType) string {
	return strings.ToLower(string(rt))
}

func flattenHeaders(h network.Headers) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
