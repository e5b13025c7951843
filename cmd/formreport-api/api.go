// Package main provides the form reporting API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/dukex/formreport/pkg/services"
	"github.com/dukex/formreport/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	metrics     *metrics.Metrics
	jwtSecret   string
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	m *metrics.Metrics,
	jwtSecret string,
) *API {
	return &API{
		persistence: persistence,
		logger:      logger,
		eventBus:    eventBus,
		metrics:     m,
		jwtSecret:   jwtSecret,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	svc := services.New(a.persistence, a.eventBus, a.metrics, a.logger)
	handlers := web.NewAPIHandlers(svc, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			_, healthy := svc.HealthCheck(c.Context())

			return healthy
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Form Report API")
	})

	app.Get("/health", handlers.HealthCheck)

	if a.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(a.metrics.Handler()))
	}

	api := app.Group("/api/v1", web.Authenticate(a.jwtSecret))
	web.Register(api, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	if a.jwtSecret == "" {
		a.logger.Warn("No JWT secret configured, trusting the " + web.UserIDHeader + " header")
	}

	return app.Listen(":" + strconv.Itoa(port))
}
