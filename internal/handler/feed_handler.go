package handler

import (
	"context"

	"recall-be/internal/pkg/logger"
	"recall-be/internal/service"
	internalWS "recall-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// FeedHandler upgrades browser connections onto the per-project ledger feed.
type FeedHandler struct {
	workspaceService service.IWorkspaceService
	hub              *internalWS.Hub
	logger           logger.ILogger
}

func NewFeedHandler(workspaceService service.IWorkspaceService, hub *internalWS.Hub, log logger.ILogger) *FeedHandler {
	return &FeedHandler{
		workspaceService: workspaceService,
		hub:              hub,
		logger:           log,
	}
}

func (h *FeedHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/ws/v1")
	g.Use("/projects/:projectId", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	g.Get("/projects/:projectId", websocket.New(h.serveProjectFeed))
}

func (h *FeedHandler) serveProjectFeed(c *websocket.Conn) {
	projectId, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		c.Close()
		return
	}

	// Reject feeds for projects that do not exist.
	if _, err := h.workspaceService.Show(context.Background(), projectId); err != nil {
		h.logger.Warn("feed", "Feed rejected for unknown project", map[string]interface{}{
			"project_id": projectId.String(),
		})
		c.Close()
		return
	}

	internalWS.ServeWs(h.hub, c, projectId)
}
