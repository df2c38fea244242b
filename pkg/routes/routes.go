// Package routes assembles the HTTP surface: middleware and the versioned
// API groups.
package routes

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/vine/pkg/middleware"
	"github.com/Ramsey-B/vine/pkg/routes/intake"
	"github.com/Ramsey-B/vine/pkg/routes/taxonomy"
	"github.com/Ramsey-B/vine/pkg/routes/wine"
)

// Register wires middleware and all API routes onto the echo instance.
// Health endpoints are registered separately by the health checker, so they
// come up before the catalog is ready.
func Register(e *echo.Echo, serviceName string, logger ectologger.Logger) {
	e.Use(otelecho.Middleware(serviceName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.Recover())
	e.HTTPErrorHandler = middleware.Error(logger)

	api := e.Group("/api/v1")
	intake.Register(api.Group("/intake"))
	wine.Register(api.Group("/wines"))
	taxonomy.Register(api.Group("/taxonomy"))
}
