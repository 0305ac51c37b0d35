package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/likhonsdevbd/sheikh-ai/internal/app"
	"github.com/likhonsdevbd/sheikh-ai/internal/health"
)

// Handlers implements the HTTP endpoints. Every operation result is carried
// in the uniform envelope with HTTP 200; the envelope code distinguishes
// success from not-found and internal failures. Only malformed requests get
// a non-200 status.
type Handlers struct {
	commands    *app.CommandBus
	queries     *app.QueryBus
	checker     *health.Checker
	streamDelay time.Duration
	logger      zerolog.Logger
}

// NewHandlers creates the endpoint handlers.
func NewHandlers(commands *app.CommandBus, queries *app.QueryBus, checker *health.Checker, streamDelay time.Duration, logger zerolog.Logger) *Handlers {
	return &Handlers{
		commands:    commands,
		queries:     queries,
		checker:     checker,
		streamDelay: streamDelay,
		logger:      logger.With().Str("component", "api_handlers").Logger(),
	}
}

type createSessionRequest struct {
	Title string `json:"title"`
}

type chatRequest struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	EventID   string `json:"event_id"`
}

type viewShellRequest struct {
	ShellSessionID string `json:"shell_session_id"`
}

type execShellRequest struct {
	ShellSessionID string `json:"shell_session_id"`
	Exec           string `json:"exec"`
}

type viewFileRequest struct {
	File string `json:"file"`
}

type writeFileRequest struct {
	File    string `json:"file"`
	Content string `json:"content"`
}

// Root returns service identification info.
func (h *Handlers) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "sheikh-ai",
		"version": "1.0.0",
		"status":  "running",
	})
}

// Liveness always reports alive while the process runs.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness reports ready only when every registered dependency check passes.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	if !h.checker.IsReady(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// CreateSession handles PUT /api/v1/sessions.
func (h *Handlers) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	// An empty body is fine; the default title is applied downstream.
	_ = c.BodyParser(&req)
	return h.dispatch(c, app.CreateSession{Title: req.Title})
}

// ListSessions handles GET /api/v1/sessions.
func (h *Handlers) ListSessions(c *fiber.Ctx) error {
	return h.ask(c, app.ListSessions{})
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *Handlers) GetSession(c *fiber.Ctx) error {
	return h.ask(c, app.GetSession{SessionID: c.Params("id")})
}

// DeleteSession handles DELETE /api/v1/sessions/:id.
func (h *Handlers) DeleteSession(c *fiber.Ctx) error {
	return h.dispatch(c, app.DeleteSession{SessionID: c.Params("id")})
}

// StopSession handles POST /api/v1/sessions/:id/stop.
func (h *Handlers) StopSession(c *fiber.Ctx) error {
	return h.dispatch(c, app.StopSession{SessionID: c.Params("id")})
}

// GetHistory handles GET /api/v1/sessions/:id/history.
func (h *Handlers) GetHistory(c *fiber.Ctx) error {
	return h.ask(c, app.GetSessionHistory{SessionID: c.Params("id")})
}

// ViewShell handles POST /api/v1/sessions/:id/shell. A read operation: the
// body names which shell sub-session to view, nothing is executed.
func (h *Handlers) ViewShell(c *fiber.Ctx) error {
	var req viewShellRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ShellSessionID == "" {
		return badRequest(c, "shell_session_id is required")
	}
	return h.ask(c, app.ViewShellSession{
		SessionID:      c.Params("id"),
		ShellSessionID: req.ShellSessionID,
	})
}

// ExecuteShell handles POST /api/v1/sessions/:id/shell/exec.
func (h *Handlers) ExecuteShell(c *fiber.Ctx) error {
	var req execShellRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ShellSessionID == "" || req.Exec == "" {
		return badRequest(c, "shell_session_id and exec are required")
	}
	return h.dispatch(c, app.ExecuteShellCommand{
		SessionID:      c.Params("id"),
		ShellSessionID: req.ShellSessionID,
		Command:        req.Exec,
	})
}

// ViewFile handles POST /api/v1/sessions/:id/file. A read operation: the
// body names which file to view, nothing is written.
func (h *Handlers) ViewFile(c *fiber.Ctx) error {
	var req viewFileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.File == "" {
		return badRequest(c, "file path is required")
	}
	return h.ask(c, app.ViewFileContent{
		SessionID: c.Params("id"),
		Path:      req.File,
	})
}

// WriteFile handles POST /api/v1/sessions/:id/file/write.
func (h *Handlers) WriteFile(c *fiber.Ctx) error {
	var req writeFileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.File == "" {
		return badRequest(c, "file is required")
	}
	return h.dispatch(c, app.WriteFile{
		SessionID: c.Params("id"),
		Path:      req.File,
		Content:   req.Content,
	})
}

func (h *Handlers) dispatch(c *fiber.Ctx, cmd any) error {
	resp, err := h.commands.Send(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *Handlers) ask(c *fiber.Ctx, q any) error {
	resp, err := h.queries.Ask(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(app.Response{Code: fiber.StatusBadRequest, Msg: msg})
}
