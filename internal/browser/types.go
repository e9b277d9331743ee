package browser

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRequestHandled is returned when an intercepted request is
	// aborted or continued a second time.
	ErrRequestHandled = errors.New("request is already handled")
	// ErrInterceptionDisabled is returned when an intercepted request is
	// resolved after interception was switched off.
	ErrInterceptionDisabled = errors.New("request interception is not enabled")
)

// DefaultNavigationTimeout bounds Goto when the caller gives no deadline.
const DefaultNavigationTimeout = 30 * time.Second

// WaitUntil is the navigation readiness condition.
type WaitUntil string

const (
	WaitLoad             WaitUntil = "load"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitNetworkIdle0     WaitUntil = "networkidle0"
	WaitNetworkIdle2     WaitUntil = "networkidle2"
)

// ParseWaitUntil maps the wire value to a WaitUntil. Empty means load.
func ParseWaitUntil(s string) (WaitUntil, error) {
	switch w := WaitUntil(s); w {
	case "":
		return WaitLoad, nil
	case WaitLoad, WaitDOMContentLoaded, WaitNetworkIdle0, WaitNetworkIdle2:
		return w, nil
	default:
		return "", fmt.Errorf("unknown waitUntil value %q (use load, domcontentloaded, networkidle0 or networkidle2)", s)
	}
}

// Viewport mirrors the per-tab emulation settings.
type Viewport struct {
	Width             int     `json:"width" jsonschema:"Viewport width in CSS pixels"`
	Height            int     `json:"height" jsonschema:"Viewport height in CSS pixels"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor,omitempty" jsonschema:"Device scale factor (default 1)"`
	IsMobile          bool    `json:"isMobile,omitempty" jsonschema:"Emulate a mobile device"`
	HasTouch          bool    `json:"hasTouch,omitempty" jsonschema:"Enable touch events"`
	IsLandscape       bool    `json:"isLandscape,omitempty" jsonschema:"Landscape screen orientation"`
}

// ScaleFactor returns DeviceScaleFactor, defaulting to 1.
func (v Viewport) ScaleFactor() float64 {
	if v.DeviceScaleFactor <= 0 {
		return 1
	}
	return v.DeviceScaleFactor
}

// Credentials authenticate against a proxy.
type Credentials struct {
	Username string
	Password string
}

// LaunchConfig is the fully built engine configuration.
type LaunchConfig struct {
	Headless       bool
	Args           []string
	ExecutablePath string
	UserDataDir    string
	// ProxyAuth answers proxy authentication challenges on every tab.
	ProxyAuth *Credentials
	// SlowMo delays every tab operation.
	SlowMo time.Duration
	// Stealth drops the engine's own automation markers. Args already
	// carry StealthArgs when it is set.
	Stealth bool
}

// ScreenshotOptions controls a capture. The encoding is always PNG.
type ScreenshotOptions struct {
	Path     string
	FullPage bool
}

// Cookie is a cookie descriptor as read from or written to the jar.
type Cookie struct {
	Name     string  `json:"name" jsonschema:"Cookie name"`
	Value    string  `json:"value" jsonschema:"Cookie value"`
	URL      string  `json:"url,omitempty" jsonschema:"URL the cookie is associated with"`
	Domain   string  `json:"domain,omitempty" jsonschema:"Cookie domain"`
	Path     string  `json:"path,omitempty" jsonschema:"Cookie path"`
	Expires  float64 `json:"expires,omitempty" jsonschema:"Expiry as Unix time in seconds"`
	Size     int     `json:"size,omitempty" jsonschema:"Size in bytes (read only)"`
	HTTPOnly bool    `json:"httpOnly,omitempty" jsonschema:"HTTP only flag"`
	Secure   bool    `json:"secure,omitempty" jsonschema:"Secure flag"`
	Session  bool    `json:"session,omitempty" jsonschema:"Session cookie (read only)"`
	SameSite string  `json:"sameSite,omitempty" jsonschema:"Same-site policy: Strict, Lax or None"`
}

// CookieFilter selects cookies to delete. Domain, Path and URL narrow
// the match when set.
type CookieFilter struct {
	Name   string `json:"name" jsonschema:"Cookie name"`
	URL    string `json:"url,omitempty" jsonschema:"Delete cookies matching this URL"`
	Domain string `json:"domain,omitempty" jsonschema:"Delete cookies for this domain"`
	Path   string `json:"path,omitempty" jsonschema:"Delete cookies for this path"`
}

// ValidSameSite reports whether s is an accepted same-site policy.
func ValidSameSite(s string) bool {
	switch s {
	case "", "Strict", "Lax", "None":
		return true
	}
	return false
}
