package handler

import (
	"github.com/rvemuri2/helix-backend/internal/pkg/logger"
	internalWS "github.com/rvemuri2/helix-backend/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SequenceWsHandler upgrades panel clients onto the sequence update stream.
type SequenceWsHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewSequenceWsHandler(hub *internalWS.Hub, log logger.ILogger) *SequenceWsHandler {
	return &SequenceWsHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer. Clients identify
// themselves with the same user_id they chat under.
func (h *SequenceWsHandler) ServeWs(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing user_id"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SequenceWsHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, conn, userID)
			h.logger.Info("SequenceWsHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *SequenceWsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
