// Package router wires the middleware stack and handler routes into a gin
// engine.
package router

import (
	"github.com/docflow/backend/internal/interfaces/http/handler"
	"github.com/docflow/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds router construction dependencies
type Config struct {
	Logger        *zap.Logger
	SystemHandler *handler.SystemHandler
	Registrars    []RouteRegistrar
}

// New builds the gin engine: recovery, request IDs, request logging, tenant
// extraction, then the versioned API routes. Health stays outside the tenant
// requirement.
func New(cfg Config) *gin.Engine {
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
	)

	if cfg.SystemHandler != nil {
		engine.GET("/health", cfg.SystemHandler.Health)
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.Tenant())
	for _, registrar := range cfg.Registrars {
		registrar.RegisterRoutes(api)
	}

	return engine
}
