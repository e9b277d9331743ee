package browser

import "strings"

// ResourceTypes lists the resource categories a caller may block.
var ResourceTypes = []string{
	"document", "stylesheet", "image", "media", "font", "script",
	"texttrack", "xhr", "fetch", "eventsource", "websocket",
	"manifest", "other",
}

// InterceptPolicy decides what happens to every intercepted request.
type InterceptPolicy struct {
	block   map[string]struct{}
	headers map[string]string
}

// Decision is the outcome of InterceptPolicy.Decide.
type Decision struct {
	Abort   bool
	Headers map[string]string
}

// NewInterceptPolicy builds a policy blocking the given resource types
// and merging headers into continued requests.
func NewInterceptPolicy(blockResources []string, headers map[string]string) *InterceptPolicy {
	p := &InterceptPolicy{
		block:   make(map[string]struct{}, len(blockResources)),
		headers: make(map[string]string, len(headers)),
	}
	for _, rt := range blockResources {
		p.block[strings.ToLower(rt)] = struct{}{}
	}
	for k, v := range headers {
		p.headers[k] = v
	}
	return p
}

// Decide aborts blocked resource types and otherwise returns the
// request headers with the overrides applied on top.
func (p *InterceptPolicy) Decide(resourceType string, headers map[string]string) Decision {
	if _, blocked := p.block[strings.ToLower(resourceType)]; blocked {
		return Decision{Abort: true}
	}

	merged := make(map[string]string, len(headers)+len(p.headers))
	for k, v := range headers {
		merged[k] = v
	}
	// Header names are case-insensitive; an override replaces any casing.
	for k := range p.headers {
		for existing := range merged {
			if strings.EqualFold(existing, k) {
				delete(merged, existing)
			}
		}
	}
	for k, v := range p.headers {
		merged[k] = v
	}
	return Decision{Headers: merged}
}

// Handler adapts the policy to Tab.OnRequest. Failures to abort or
// continue go to logf; a nil logf drops them.
func (p *InterceptPolicy) Handler(logf func(format string, args ...any)) func(Request) {
	return func(req Request) {
		d := p.Decide(req.ResourceType(), req.Headers())
		var err error
		if d.Abort {
			err = req.Abort()
		} else {
			err = req.Continue(d.Headers)
		}
		if err != nil && logf != nil {
			logf("intercept %s: %v", req.URL(), err)
		}
	}
}
