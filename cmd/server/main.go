package main

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/pitchscoop/pitchscoop-backend/internal/api"
	"github.com/pitchscoop/pitchscoop-backend/internal/completion"
	"github.com/pitchscoop/pitchscoop-backend/internal/config"
	"github.com/pitchscoop/pitchscoop-backend/internal/database"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository/postgres"
	"github.com/pitchscoop/pitchscoop-backend/internal/services"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.Auth.TokenSecret == "" {
		cfg.Auth.TokenSecret = "change-me-in-production"
		logrus.Warn("using default token secret; set PITCHSCOOP_TOKEN_SECRET in production")
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	// Completion client (Azure OpenAI in production, stub for local dev)
	client, err := completion.NewClient(cfg.Provider)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize completion client")
	}
	logrus.WithField("provider", client.Name()).Info("completion client ready")

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PitchScoop Backend",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, X-Judge-Key",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(db.DB)
	scoreRepo := postgres.NewScoreRepository(db.DB)
	judgeRepo := postgres.NewJudgeRepository(db.DB)

	// Initialize services
	svc := services.NewServices(cfg, sessionRepo, scoreRepo, judgeRepo, client)

	// Setup routes
	api.SetupRoutes(app, svc)

	// Start server
	addr := listenAddr(cfg)
	logrus.WithField("addr", addr).Info("pitchscoop backend starting")
	if err := app.Listen(addr); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func listenAddr(cfg *config.Config) string {
	port := cfg.Server.Port
	if port == 0 {
		port = 8000
	}
	return ":" + strconv.Itoa(port)
}

func getOrigins() string {
	origins := os.Getenv("PITCHSCOOP_CORS_ORIGINS")
	if origins == "" {
		return "http://localhost:3000,http://localhost:5173"
	}
	return origins
}
