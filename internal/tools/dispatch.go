// Package tools routes MCP tool calls to session handlers.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"

	"github.com/standardbeagle/pptrmcp/internal/session"
)

// DefaultPrefix is prepended to every registered tool name.
const DefaultPrefix = "puppeteer_"

// Result is the outcome of one dispatched call.
type Result struct {
	// Text is the reply as the caller sees it. Failures start with "Error: ".
	Text    string
	IsError bool
	// Message and Kind describe a failure.
	Message string
	Kind    session.ErrorKind
}

func successResult(text string) Result {
	return Result{Text: text}
}

func failureResult(err error) Result {
	return Result{
		Text:    "Error: " + err.Error(),
		IsError: true,
		Message: err.Error(),
		Kind:    session.Kind(err),
	}
}

type params interface {
	Validate() error
}

type entry struct {
	name        string
	description string
	schema      *jsonschema.Schema
	resolved    *jsonschema.Resolved
	call        func(ctx context.Context, raw json.RawMessage) (string, error)
}

// Dispatcher is the tool table. It runs one call at a time so handlers see
// a consistent Session.
type Dispatcher struct {
	s       *session.Session
	prefix  string
	sem     chan struct{}
	entries map[string]*entry
	order   []string

	// base is cancelled by Release; every call context derives from it.
	base       context.Context
	cancelBase context.CancelFunc
}

// NewDispatcher builds the table for s. Tool names are registered as
// prefix+name; calls may use either form.
func NewDispatcher(s *session.Session, prefix string) *Dispatcher {
	d := &Dispatcher{
		s:       s,
		prefix:  prefix,
		sem:     make(chan struct{}, 1),
		entries: make(map[string]*entry),
	}
	d.base, d.cancelBase = context.WithCancel(context.Background())
	registerBrowserTools(d)
	return d
}

// add registers a handler whose input decodes into P.
func add[P params](d *Dispatcher, name, description string, fn func(context.Context, P) (string, error)) {
	schema, err := jsonschema.For[P](nil)
	if err != nil {
		panic(fmt.Sprintf("tool %s: schema: %v", name, err))
	}
	relax(schema)
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("tool %s: resolve schema: %v", name, err))
	}

	d.entries[name] = &entry{
		name:        name,
		description: description,
		schema:      schema,
		resolved:    resolved,
		call: func(ctx context.Context, raw json.RawMessage) (string, error) {
			p, err := decode[P](resolved, raw)
			if err != nil {
				return "", err
			}
			return fn(ctx, p)
		},
	}
	d.order = append(d.order, name)
}

// relax lets unknown properties through at every level. Callers built
// for other automation servers send extra cookie and viewport fields.
func relax(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	s.AdditionalProperties = nil
	for _, prop := range s.Properties {
		relax(prop)
	}
	relax(s.Items)
	for _, alt := range s.AnyOf {
		relax(alt)
	}
}

func decode[P params](resolved *jsonschema.Resolved, raw json.RawMessage) (P, error) {
	var p P
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return p, &session.ValidationError{Msg: err.Error()}
	}
	if err := resolved.Validate(instance); err != nil {
		return p, &session.ValidationError{Msg: err.Error()}
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, &session.ValidationError{Msg: err.Error()}
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Dispatch runs the named tool. It never fails: every error, including a
// handler panic, becomes an error Result.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw json.RawMessage) (res Result) {
	callID := uuid.NewString()[:8]

	e, ok := d.lookup(name)
	if !ok {
		res = failureResult(&session.UnknownToolError{Name: name})
		d.logf("%s %s: %s", callID, name, res.Message)
		return res
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(d.base, cancel)
	defer stop()

	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return failureResult(ctx.Err())
	}
	defer func() { <-d.sem }()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logf("%s %s: panic: %v\n%s", callID, e.name, r, debug.Stack())
			res = failureResult(fmt.Errorf("Internal error: %v", r))
		}
	}()

	text, err := e.call(ctx, raw)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		res = failureResult(err)
		d.logf("%s %s failed after %s [%s]: %v", callID, e.name, elapsed, res.Kind, err)
		return res
	}
	d.logf("%s %s ok (%s)", callID, e.name, elapsed)
	return successResult(text)
}

func (d *Dispatcher) lookup(name string) (*entry, bool) {
	if e, ok := d.entries[name]; ok {
		return e, true
	}
	if d.prefix == "" {
		return nil, false
	}
	bare, found := strings.CutPrefix(name, d.prefix)
	if !found {
		return nil, false
	}
	e, ok := d.entries[bare]
	return e, ok
}

// shutdownGrace bounds the browser close when ctx ran out while waiting
// for the in-flight call.
const shutdownGrace = 2 * time.Second

// Release cancels the in-flight call, waits for it until ctx ends and
// then shuts the session down. The shutdown happens even when the call
// never returns; engines that ignore cancellation lose their browser
// underneath it.
func (d *Dispatcher) Release(ctx context.Context) error {
	d.cancelBase()

	var waitErr error
	select {
	case d.sem <- struct{}{}:
		defer func() { <-d.sem }()
	case <-ctx.Done():
		waitErr = fmt.Errorf("waiting for in-flight call: %w", ctx.Err())
		d.logf("release: %v", waitErr)
	}

	shutdownCtx := ctx
	if waitErr != nil {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
	}
	return errors.Join(waitErr, d.s.Shutdown(shutdownCtx))
}

func (d *Dispatcher) logf(format string, args ...any) {
	if !d.s.TransportAlive() {
		return
	}
	log.Printf("[dispatch] "+format, args...)
}

// Prefix returns the tool name prefix.
func (d *Dispatcher) Prefix() string { return d.prefix }

// ToolInfo describes one registered tool.
type ToolInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    []string `json:"required,omitempty"`
	Optional    []string `json:"optional,omitempty"`
}

// Catalog lists the registered tools in registration order.
func (d *Dispatcher) Catalog() []ToolInfo {
	out := make([]ToolInfo, 0, len(d.order))
	for _, name := range d.order {
		e := d.entries[name]
		required := make(map[string]bool, len(e.schema.Required))
		for _, r := range e.schema.Required {
			required[r] = true
		}

		info := ToolInfo{
			Name:        d.prefix + name,
			Description: e.description,
			Required:    append([]string{}, e.schema.Required...),
		}
		for prop := range e.schema.Properties {
			if !required[prop] {
				info.Optional = append(info.Optional, prop)
			}
		}
		sort.Strings(info.Required)
		sort.Strings(info.Optional)
		out = append(out, info)
	}
	return out
}
