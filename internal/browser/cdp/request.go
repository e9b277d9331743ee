package cdp

import (
	"context"
	"sort"
	"sync"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"

	"github.com/standardbeagle/pptrmcp/internal/browser"
)

// request is a Fetch.requestPaused event seen through browser.Request.
type request struct {
	ctx context.Context
	tab *Tab
	ev  *fetch.EventRequestPaused

	mu   sync.Mutex
	done bool
}

func newRequest(ctx context.Context, tab *Tab, ev *fetch.EventRequestPaused) *request {
	return &request{ctx: ctx, tab: tab, ev: ev}
}

func (r *request) URL() string {
	if r.ev.Request == nil {
		return ""
	}
	return r.ev.Request.URL
}

func (r *request) ResourceType() string {
	return resourceType(r.ev.ResourceType)
}

func (r *request) Headers() map[string]string {
	if r.ev.Request == nil {
		return map[string]string{}
	}
	return flattenHeaders(r.ev.Request.Headers)
}

func (r *request) Abort() error {
	if err := r.claim(); err != nil {
		return err
	}
	return fetch.FailRequest(r.ev.RequestID, network.ErrorReasonFailed).Do(r.ctx)
}

func (r *request) Continue(headers map[string]string) error {
	if err := r.claim(); err != nil {
		return err
	}
	cont := fetch.ContinueRequest(r.ev.RequestID)
	if headers != nil {
		cont = cont.WithHeaders(headerEntries(headers))
	}
	return cont.Do(r.ctx)
}

func (r *request) claim() error {
	r.tab.mu.Lock()
	intercepting := r.tab.intercepting
	r.tab.mu.Unlock()
	if !intercepting {
		return browser.ErrInterceptionDisabled
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return browser.ErrRequestHandled
	}
	r.done = true
	return nil
}

func (r *request) handled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func headerEntries(headers map[string]string) []*fetch.HeaderEntry {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]*fetch.HeaderEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, &fetch.HeaderEntry{Name: name, Value: headers[name]})
	}
	return entries
}
