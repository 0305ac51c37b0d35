package tool

import (
	"fmt"
)

// WebTool is the web-search and browser-automation collaborator. Both
// operations are placeholders: they return well-formed result payloads
// without leaving the process, matching the sandbox-free deployment this
// backend targets.
type WebTool struct{}

// NewWebTool creates a WebTool.
func NewWebTool() *WebTool { return &WebTool{} }

// Search runs a web search for query.
func (t *WebTool) Search(query string) Result {
	if query == "" {
		return Result{Success: false, Error: "query is required"}
	}
	return Result{Success: true, Output: fmt.Sprintf("Search results for: %s", query)}
}

// BrowserAction performs a browser automation action.
func (t *WebTool) BrowserAction(action string) Result {
	if action == "" {
		return Result{Success: false, Error: "action is required"}
	}
	return Result{Success: true, Output: fmt.Sprintf("Browser action %q completed", action)}
}
