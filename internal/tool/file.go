package tool

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileTool reads, writes and deletes files on behalf of a session.
type FileTool struct {
	logger zerolog.Logger
}

// NewFileTool creates a FileTool.
func NewFileTool(logger zerolog.Logger) *FileTool {
	return &FileTool{logger: logger.With().Str("component", "tool.file").Logger()}
}

// Read returns the file's content in Result.Output.
func (t *FileTool) Read(path string) Result {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Result{Success: false, Error: "file not found"}
	}
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	if info.IsDir() {
		return Result{Success: false, Error: "path is not a file"}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, Output: string(raw)}
}

// Write creates parent directories as needed and writes content.
func (t *FileTool) Write(path, content string) Result {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	t.logger.Debug().Str("path", path).Int("bytes", len(content)).Msg("file written")
	return Result{Success: true, Output: path}
}

// Delete removes the file.
func (t *FileTool) Delete(path string) Result {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Success: false, Error: "file not found"}
		}
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, Output: path}
}
