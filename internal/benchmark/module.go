package benchmark

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "compass_backend/internal/http"
)

// Module is the benchmark bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the benchmark module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo)

	return &Module{handler: NewHandler(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "benchmark"
}

// RegisterRoutes mounts benchmark routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/benchmark", m.handler.HandleReport)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
