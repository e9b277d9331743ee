// Package session holds the browser automation state shared by all tool
// calls and implements one handler per tool.
//
// A Session is not safe for concurrent use; callers serialize access (see
// tools.Dispatcher).
package session

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// Options configures a Session.
type Options struct {
	// ToolPrefix is prepended to tool names in user-facing messages.
	ToolPrefix string
	// Headless is the launch default when the call does not say.
	Headless bool
	// ExecutablePath is the launch default when the call does not say.
	ExecutablePath string
	// NavigationTimeout bounds navigate. Zero means the provider default.
	NavigationTimeout time.Duration
}

// Session maps page identifiers to tabs of the single current browser.
type Session struct {
	provider browser.Provider
	opts     Options

	browser         browser.Browser
	tabs            map[string]browser.Tab
	defaultViewport *browser.Viewport

	transportAlive atomic.Bool
}

// New creates an empty session driving provider.
func New(provider browser.Provider, opts Options) *Session {
	s := &Session{
		provider: provider,
		opts:     opts,
		tabs:     make(map[string]browser.Tab),
	}
	s.transportAlive.Store(true)
	return s
}

// ResolveTab returns the tab registered under id.
func (s *Session) ResolveTab(id string) (browser.Tab, error) {
	tab, ok := s.tabs[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return tab, nil
}

// ResolveBrowser returns the current browser.
func (s *Session) ResolveBrowser() (browser.Browser, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("%w. Call %slaunch first.", ErrNotLaunched, s.opts.ToolPrefix)
	}
	return s.browser, nil
}

// MarkTransportClosed records that the reply channel is gone. It reports
// whether this call made the transition.
func (s *Session) MarkTransportClosed() bool {
	return s.transportAlive.CompareAndSwap(true, false)
}

// TransportAlive reports whether replies can still be delivered.
func (s *Session) TransportAlive() bool {
	return s.transportAlive.Load()
}

// Logf writes a diagnostic line unless the transport has closed.
func (s *Session) Logf(format string, args ...any) {
	if !s.transportAlive.Load() {
		return
	}
	log.Printf("[session] "+format, args...)
}

// Shutdown releases the browser, if any, and stops the provider when it
// holds resources of its own.
func (s *Session) Shutdown(ctx context.Context) error {
	var err error
	if s.browser != nil {
		err = s.browser.Close(ctx)
		s.browser = nil
		s.tabs = make(map[string]browser.Tab)
	}
	if c, ok := s.provider.(interface{ Close() error }); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
