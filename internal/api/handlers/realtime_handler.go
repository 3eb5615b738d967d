package handlers

import (
	"log/slog"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/elite-estate/internal/websocket"
)

// RealtimeHandler upgrades dashboard clients to the change stream
type RealtimeHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub *websocket.Hub, upgrader gorillaws.Upgrader, logger *slog.Logger) *RealtimeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RealtimeHandler{hub: hub, upgrader: upgrader, logger: logger}
}

// Connect handles GET /api/realtime
func (h *RealtimeHandler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return nil
	}

	websocket.NewClient(h.hub, conn, h.logger).Serve()
	return nil
}
