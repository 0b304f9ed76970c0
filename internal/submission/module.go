// Package submission provides the assessment-submission bounded context module.
// This file defines the module that encapsulates all submission setup and
// route registration.
package submission

import (
	"compass_backend/internal/events"
	apphttp "compass_backend/internal/http"
	"compass_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the submission bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
	service *Service
}

// NewModule creates and initializes the submission module with all its dependencies.
func NewModule(pool *pgxpool.Pool, resolver CategoryResolver, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, resolver, eventBus, log)
	handler := NewHandler(service)

	return &Module{
		handler: handler,
		repo:    repo,
		service: service,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "submission"
}

// Repository exposes the submission repository for cross-module readers
// (action stage-drift checks, recommender pass).
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts submission routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public webhook endpoint, rate-limited per IP.
	webhookGroup := ctx.V1.Group("/webhook")
	webhookGroup.Use(ctx.WebhookRateLimiter.RateLimit())
	webhookGroup.POST("/submissions", m.handler.HandleIngest)

	// Scored result lookup by public token.
	ctx.V1.GET("/submissions/:resultKey", m.handler.HandleGetResult)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
