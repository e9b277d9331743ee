package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerBrowserTools(d *Dispatcher) {
	s := d.s

	add(d, "launch", `Launch a browser, or attach to a running one with browserWSEndpoint.
Any previously launched browser is closed first. The viewport is applied to
the default page and to every page created until the next launch.

Examples:
  launch {}
  launch {headless: false, viewport: {width: 1280, height: 800}}
  launch {stealth: true, proxy: {server: "http://proxy:8080", username: "u", password: "p"}}
  launch {browserWSEndpoint: "ws://127.0.0.1:9222/devtools/browser/<id>"}`, s.Launch)

	add(d, "new_page", `Open a new page under a caller-chosen pageId.
An existing page with the same pageId is replaced in the registry.`, s.NewPage)

	add(d, "navigate", `Load a URL in a page.
waitUntil: load (default), domcontentloaded, networkidle0, networkidle2`, s.Navigate)

	add(d, "click", `Click the first element matching a CSS selector.`, s.Click)

	add(d, "type", `Type text into the first element matching a CSS selector.`, s.Type)

	add(d, "get_text", `Get the text content of the first element matching a CSS selector.`, s.GetText)

	add(d, "screenshot", `Capture a PNG screenshot of a page.
Pass path to save the image; fullPage captures the whole scrollable page.`, s.Screenshot)

	add(d, "evaluate", `Run JavaScript in a page and return its result as JSON.
The script is a function body: use return to produce a value.

Example:
  evaluate {pageId: "main", script: "return document.title"}`, s.Evaluate)

	add(d, "wait_for_selector", `Wait for an element matching a CSS selector to appear.
timeout is in milliseconds (default 30000); 0 checks once.`, s.WaitForSelector)

	add(d, "close_page", `Close a page and forget its pageId.`, s.ClosePage)

	add(d, "close_browser", `Close the browser and all of its pages.`, s.CloseBrowser)

	add(d, "set_cookies", `Set cookies for a page.
Each cookie needs name and value; url, domain, path, expires, httpOnly,
secure and sameSite (Strict, Lax, None) are optional.`, s.SetCookies)

	add(d, "get_cookies", `Get cookies visible to a page, optionally only for the given URLs.`, s.GetCookies)

	add(d, "delete_cookies", `Delete cookies by name, optionally narrowed by url, domain and path.`, s.DeleteCookies)

	add(d, "set_request_interception", `Intercept the requests of a page.
Requests of a blocked resource type are aborted; all others continue with the
given headers merged in. Pass enable: false to stop intercepting.

Example:
  set_request_interception {pageId: "main", blockResources: ["image", "font"], headers: {"X-Debug": "1"}}`, s.SetRequestInterception)
}

// Register adds every tool to server. Calls go through Dispatch, so
// argument validation and error translation happen there.
func (d *Dispatcher) Register(server *mcp.Server) {
	for _, name := range d.order {
		e := d.entries[name]
		server.AddTool(&mcp.Tool{
			Name:        d.prefix + name,
			Description: e.description,
			InputSchema: e.schema,
		}, d.handler())
	}
}

func (d *Dispatcher) handler() mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return d.Dispatch(ctx, req.Params.Name, req.Params.Arguments).CallToolResult(), nil
	}
}

// CallToolResult converts r to the MCP reply envelope.
func (r Result) CallToolResult() *mcp.CallToolResult {
	res := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: r.Text},
		},
	}
	if r.IsError {
		res.IsError = true
		res.StructuredContent = map[string]any{
			"message":    r.Message,
			"error_kind": string(r.Kind),
		}
	}
	return res
}
