package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/pitchscoop/pitchscoop-backend/internal/api/handlers"
	"github.com/pitchscoop/pitchscoop-backend/internal/metrics"
	"github.com/pitchscoop/pitchscoop-backend/internal/services"
)

// SetupRoutes configures all routes
func SetupRoutes(app *fiber.App, svc *services.Services) {
	// MCP tool dispatch
	app.Post("/mcp/execute", handlers.ExecuteTool(svc))

	// REST surface
	api := app.Group("/api")
	api.Get("/sessions", handlers.ListAllSessions(svc))
	api.Get("/events/:event_id/leaderboard", handlers.GetEventLeaderboard(svc))
	api.Get("/recordings/:id/audio", handlers.PlayAudio(svc))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "pitchscoop-backend",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Websocket ingest for recording streams
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/recordings/:id", websocket.New(func(conn *websocket.Conn) {
		handlers.RecordingStream(svc, conn)
	}))
}
