package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/likhonsdevbd/sheikh-ai/internal/app"
)

// chatSteps are the simulated progress frames emitted before the final
// message when a step delay is configured.
var chatSteps = []string{"thinking", "generating"}

// Chat handles POST /api/v1/sessions/:id/chat. The full turn is processed
// up front; the result is then replayed to the client as server-sent events
// so the frontend can keep a single streaming code path.
func (h *Handlers) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Message == "" {
		return badRequest(c, "message is required")
	}

	resp, err := h.commands.Send(c.UserContext(), app.SendMessage{
		SessionID: c.Params("id"),
		Message:   req.Message,
		Timestamp: req.Timestamp,
		EventID:   req.EventID,
	})
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	var content string
	if data, ok := resp.Data.(map[string]any); ok {
		content, _ = data["response"].(string)
	}

	delay := h.streamDelay
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if resp.Code != 0 {
			// The whole envelope rides the error frame.
			writeSSE(w, "error", resp)
			return
		}

		if delay > 0 {
			for _, step := range chatSteps {
				writeSSE(w, "step", map[string]any{"status": step})
				if err := w.Flush(); err != nil {
					return
				}
				time.Sleep(delay)
			}
		}

		writeSSE(w, "message", map[string]any{"content": content})
		writeSSE(w, "done", map[string]any{"completed": true})
	}))
	return nil
}

func writeSSE(w *bufio.Writer, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	_ = w.Flush()
}
