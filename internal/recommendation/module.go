// Package recommendation provides the guidance-content bounded context module.
package recommendation

import (
	apphttp "compass_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the recommendation bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the recommendation module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	service := NewService(repo)
	handler := NewHandler(service)

	return &Module{handler: handler, service: service}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "recommendation"
}

// Service exposes the resolver for cross-module consumers
// (submission reads, the action recommender pass).
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts recommendation routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/recommendations")
	group.GET("/categories/:code/stages/:stage", m.handler.HandleGetCategory)
	group.GET("/questions/:code/stages/:stage", m.handler.HandleGetQuestion)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
