// Package server assembles the Fiber application.
package server

import (
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/services"
	"catalog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer needs. Tokens and Limiter are
// optional: a nil Tokens leaves writes unauthenticated and a nil Limiter
// disables rate limiting.
type Deps struct {
	Logger    *zap.Logger
	Products  *services.ProductService
	Tokens    *services.TokenService
	Validator *validation.Validator
	Limiter   *middleware.RateLimiter
	Checks    map[string]handlers.Check
	// Production hides the startup banner.
	Production bool
}

// New builds the Fiber app with middleware and every route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "catalog",
		ErrorHandler:          handlers.ErrorHandler(d.Logger),
		UnescapePath:          true,
		DisableStartupMessage: d.Production,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggingMiddleware(d.Logger))

	handlers.NewHealthHandler(d.Checks).RegisterRoutes(app)

	api := app.Group("/api")
	if d.Limiter != nil {
		api.Use(d.Limiter.Handler())
	}

	var guard []fiber.Handler
	if d.Tokens != nil {
		guard = append(guard, middleware.AuthRequired(d.Tokens, d.Logger))
		handlers.NewAuthHandler(d.Tokens, d.Validator).RegisterRoutes(api)
	}
	handlers.NewProductHandler(d.Products).RegisterRoutes(api, guard...)

	return app
}
