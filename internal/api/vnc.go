package api

import (
	"github.com/gofiber/websocket/v2"
)

// VNC handles the websocket endpoint at /api/v1/sessions/:id/vnc. No real
// remote desktop is attached; the relay greets the client and echoes frames
// back so clients can exercise their transport end to end. Binary frames are
// echoed unchanged, text frames are acknowledged.
func (h *Handlers) VNC(conn *websocket.Conn) {
	sessionID := conn.Params("id")
	logger := h.logger.With().Str("session_id", sessionID).Logger()
	logger.Info().Msg("vnc relay connected")

	defer func() {
		logger.Info().Msg("vnc relay disconnected")
		_ = conn.Close()
	}()

	if err := conn.WriteJSON(map[string]any{
		"type":       "welcome",
		"session_id": sessionID,
		"mode":       "echo",
	}); err != nil {
		return
	}

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		switch msgType {
		case websocket.BinaryMessage:
			if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
				return
			}
		case websocket.TextMessage:
			if err := conn.WriteJSON(map[string]any{
				"type":  "ack",
				"bytes": len(payload),
			}); err != nil {
				return
			}
		}
	}
}
