package http

import (
	"time"

	"github.com/book-catalog/backend/internal/auth"
	"github.com/book-catalog/backend/internal/config"
	"github.com/book-catalog/backend/internal/http/handlers"
	"github.com/book-catalog/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handlers bundles everything the router mounts. Feed is nil when redis is disabled.
type Handlers struct {
	GraphQL *handlers.GraphQLHandler
	Health  *handlers.HealthHandler
	Feed    *handlers.ActivityFeed
}

func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			msg := err.Error()
			if code == fiber.StatusInternalServerError {
				msg = "internal server error"
			}
			return c.Status(code).JSON(fiber.Map{"error": msg, "request_id": middleware.GetRequestID(c)})
		},
	})
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	verifier auth.Verifier,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))
	app.Use(middleware.MetricsMiddleware())

	app.Get("/health", h.Health.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Playground page is static; the queries it sends still go through auth.
	app.Get("/graphql", h.GraphQL.Playground)

	app.Post("/graphql",
		middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute),
		middleware.AuthMiddleware(verifier, log),
		h.GraphQL.Query,
	)

	if h.Feed != nil {
		app.Use("/ws", handlers.WSUpgradeMiddleware())
		app.Get("/ws/activities", websocket.New(h.Feed.HandleWS))
	}
}
