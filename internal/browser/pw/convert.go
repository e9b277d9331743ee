package pw

import (
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// waitUntilState maps the readiness condition. Playwright has a single
// network idle state, so both idle variants share it.
func waitUntilState(w browser.WaitUntil) *playwright.WaitUntilState {
	switch w {
	case browser.WaitDOMContentLoaded:
		return playwright.WaitUntilStateDomcontentloaded
	case browser.WaitNetworkIdle0, browser.WaitNetworkIdle2:
		return playwright.WaitUntilStateNetworkidle
	default:
		return playwright.WaitUntilStateLoad
	}
}

func milliseconds(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func deviceMetrics(v browser.Viewport) map[string]interface{} {
	orientation := map[string]interface{}{"type": "portraitPrimary", "angle": 0}
	if v.IsLandscape {
		orientation = map[string]interface{}{"type": "landscapePrimary", "angle": 90}
	}
	return map[string]interface{}{
		"width":             v.Width,
		"height":            v.Height,
		"deviceScaleFactor": v.ScaleFactor(),
		"mobile":            v.IsMobile,
		"screenOrientation": orientation,
	}
}

func sameSite(s string) *playwright.SameSiteAttribute {
	switch s {
	case "Strict":
		return playwright.SameSiteAttributeStrict
	case "Lax":
		return playwright.SameSiteAttributeLax
	case "None":
		return playwright.SameSiteAttributeNone
	default:
		return nil
	}
}

// optionalCookie converts a descriptor. Playwright needs either a URL or
// a domain and path; the page URL fills in when both are missing.
func optionalCookie(c browser.Cookie, pageURL string) playwright.OptionalCookie {
	oc := playwright.OptionalCookie{
		Name:     c.Name,
		Value:    c.Value,
		SameSite: sameSite(c.SameSite),
	}
	if c.URL != "" {
		oc.URL = playwright.String(c.URL)
	}
	if c.Domain != "" {
		oc.Domain = playwright.String(c.Domain)
		path := c.Path
		if path == "" {
			path = "/"
		}
		oc.Path = playwright.String(path)
	} else if c.Path != "" {
		oc.Path = playwright.String(c.Path)
	}
	if oc.URL == nil && oc.Domain == nil && strings.HasPrefix(pageURL, "http") {
		oc.URL = playwright.String(pageURL)
		oc.Path = nil
	}
	if c.Expires > 0 {
		oc.Expires = playwright.Float(c.Expires)
	}
	if c.HTTPOnly {
		oc.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		oc.Secure = playwright.Bool(true)
	}
	return oc
}

func fromCookie(c playwright.Cookie) browser.Cookie {
	out := browser.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		Size:     len(c.Name) + len(c.Value),
		HTTPOnly: c.HttpOnly,
		Secure:   c.Secure,
		Session:  c.Expires < 0,
	}
	if c.SameSite != nil {
		out.SameSite = string(*c.SameSite)
	}
	return out
}

func toOptional(c playwright.Cookie) playwright.OptionalCookie {
	oc := playwright.OptionalCookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   playwright.String(c.Domain),
		Path:     playwright.String(c.Path),
		HttpOnly: playwright.Bool(c.HttpOnly),
		Secure:   playwright.Bool(c.Secure),
		SameSite: c.SameSite,
	}
	if c.Expires > 0 {
		oc.Expires = playwright.Float(c.Expires)
	}
	return oc
}

// partitionCookies splits the jar into cookies to keep and the number
// matched by any filter.
func partitionCookies(all []playwright.Cookie, filters []browser.CookieFilter, pageURL string) ([]playwright.OptionalCookie, int) {
	keep := make([]playwright.OptionalCookie, 0, len(all))
	removed := 0
	for _, c := range all {
		matched := false
		for _, f := range filters {
			if cookieMatches(c, f, pageURL) {
				matched = true
				break
			}
		}
		if matched {
			removed++
			continue
		}
		keep = append(keep, toOptional(c))
	}
	return keep, removed
}

// cookieMatches applies the Network.deleteCookies matching rules: name
// must match, domain and path narrow it, and a URL (the page URL when
// neither URL nor domain is given) must domain-match.
func cookieMatches(c playwright.Cookie, f browser.CookieFilter, pageURL string) bool {
	if c.Name != f.Name {
		return false
	}
	if f.Domain != "" && strings.TrimPrefix(c.Domain, ".") != strings.TrimPrefix(f.Domain, ".") {
		return false
	}
	if f.Path != "" && c.Path != f.Path {
		return false
	}

	raw := f.URL
	if raw == "" && f.Domain == "" && strings.HasPrefix(pageURL, "http") {
		raw = pageURL
	}
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return domainMatches(u.Hostname(), c.Domain) && strings.HasPrefix(pathOrRoot(u.Path), c.Path)
}

func domainMatches(host, cookieDomain string) bool {
	d := strings.TrimPrefix(cookieDomain, ".")
	return host == d || strings.HasSuffix(host, "."+d)
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
