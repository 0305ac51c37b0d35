// Package tool implements the tool-execution collaborators the session core
// invokes: shell commands, file I/O and the web/browser placeholders. Every
// operation returns a structured Result — a failing tool never surfaces as a
// Go error to the aggregate, it is captured as a failure payload and attached
// to the session as an event.
package tool

// Result is the structured outcome of a tool invocation.
type Result struct {
	Success  bool   `json:"success"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}

// Map renders the result as event data.
func (r Result) Map() map[string]any {
	return map[string]any{
		"success":   r.Success,
		"output":    r.Output,
		"error":     r.Error,
		"exit_code": r.ExitCode,
	}
}
