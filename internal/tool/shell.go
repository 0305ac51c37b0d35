package tool

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultShellTimeout = 30 * time.Second

// ShellRunner executes shell commands with a timeout and an optional command
// allowlist. Use with caution — there is no sandbox here, allowlisting is the
// only guard.
type ShellRunner struct {
	workDir   string
	timeout   time.Duration
	allowlist map[string]struct{}
	logger    zerolog.Logger
}

// NewShellRunner creates a ShellRunner.
// workDir is the working directory for commands ("" = process cwd).
// timeout is the max duration per command (0 = 30s default).
// allowed restricts the first token of each command; empty = allow all.
func NewShellRunner(workDir string, timeout time.Duration, allowed []string, logger zerolog.Logger) *ShellRunner {
	if timeout == 0 {
		timeout = defaultShellTimeout
	}
	var allowlist map[string]struct{}
	if len(allowed) > 0 {
		allowlist = make(map[string]struct{}, len(allowed))
		for _, cmd := range allowed {
			allowlist[cmd] = struct{}{}
		}
	}
	return &ShellRunner{
		workDir:   workDir,
		timeout:   timeout,
		allowlist: allowlist,
		logger:    logger.With().Str("component", "tool.shell").Logger(),
	}
}

// Execute runs command through /bin/sh -c and captures combined output.
// Timeouts kill the process and report exit code -1.
func (r *ShellRunner) Execute(ctx context.Context, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Success: false, Error: "command is required", ExitCode: -1}
	}
	if r.allowlist != nil {
		head := strings.Fields(command)[0]
		if _, ok := r.allowlist[head]; !ok {
			return Result{Success: false, Error: "command not allowed: " + head, ExitCode: -1}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = r.workDir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	r.logger.Debug().Str("command", command).Str("dir", r.workDir).Msg("executing shell command")

	err := cmd.Run()
	output := strings.TrimSpace(buf.String())

	if ctx.Err() == context.DeadlineExceeded {
		return Result{Success: false, Output: output, Error: "command timeout", ExitCode: -1}
	}
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return Result{Success: false, Output: output, Error: err.Error(), ExitCode: code}
	}
	return Result{Success: true, Output: output, ExitCode: 0}
}
