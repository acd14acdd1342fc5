package handlers

import (
	"strconv"
	"time"

	"github.com/fenilmodi00/farcaster-gateway/services"
	"github.com/fenilmodi00/farcaster-gateway/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	corsAllowMethods = "GET,POST,OPTIONS"
	corsAllowHeaders = "Origin, Content-Type, Accept, Authorization, " + APIKeyHeader
	corsMaxAge       = 1728000
)

// Dependencies are the services the HTTP surface is built on
type Dependencies struct {
	APIKey        string
	Users         *services.UserService
	Casts         *services.CastService
	Cache         *services.CacheService
	Metrics       *shared.MetricsRegistry
	HealthTimeout time.Duration
}

// NewApp builds the Fiber application with middleware and every route registered.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "farcaster-gateway",
		Immutable:             true,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: corsAllowMethods,
		AllowHeaders: corsAllowHeaders,
		MaxAge:       corsMaxAge,
	}))
	if deps.Metrics != nil {
		app.Use(RecordMetrics(deps.Metrics))
	}

	RegisterRoutes(app, deps)
	return app
}

// RegisterRoutes mounts the health check and the authenticated /api/v1 group
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	healthTimeout := deps.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = 2 * time.Second
	}
	healthHandler := NewHealthHandler(deps.Cache, healthTimeout)
	userHandler := NewUserHandler(deps.Users)
	castHandler := NewCastHandler(deps.Casts)

	app.Get("/health", healthHandler.GetHealth)

	api := app.Group("/api/v1", RequireAPIKey(deps.APIKey))

	// OPTIONS without Origin or Access-Control-Request-Method falls through cors
	api.Options("/*", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		c.Set(fiber.HeaderAccessControlMaxAge, strconv.Itoa(corsMaxAge))
		return c.SendStatus(fiber.StatusNoContent)
	})

	// User Routes
	api.Get("/users/:fid/earnings", userHandler.GetUserEarnings)
	api.Get("/fids", userHandler.GetFid)
	api.Get("/far-scores", userHandler.GetFarScores)

	// Cast Routes
	api.Get("/casts/embeds", castHandler.GetCastEmbeds)
	api.Get("/casts/earnings", castHandler.GetCastEarnings)
	api.Get("/earnings", castHandler.GetCastEarnings)
}
