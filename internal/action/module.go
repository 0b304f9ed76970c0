// Package action provides the next-steps action-tracking bounded context.
// This file defines the module that encapsulates all action setup and route
// registration.
package action

import (
	"context"

	"compass_backend/internal/action/handler"
	"compass_backend/internal/action/repository"
	"compass_backend/internal/action/service"
	"compass_backend/internal/events"
	apphttp "compass_backend/internal/http"
	"compass_backend/internal/submission"
	"compass_backend/platform/logger"
	"compass_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the action bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the action module with all its dependencies.
func NewModule(pool *pgxpool.Pool, submissions *submission.Repository, resources service.ResourceChecker, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	scores := &scoreAdapter{repo: submissions}
	svc := service.New(repo, scores, submissions, resources, eventBus, val, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "action"
}

// Service exposes the lifecycle manager for the worker-side recommender pass.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts action routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/actions")
	group.POST("", m.handler.HandleCreate)
	group.GET("", m.handler.HandleList)
	group.PUT("/reorder", m.handler.HandleReorder)
	group.DELETE("/:id", m.handler.HandleRemove)
	group.PATCH("/:id/status", m.handler.HandleSetStatus)
	group.PATCH("/:id/owner", m.handler.HandleSetOwner)
	group.PATCH("/:id/acknowledged", m.handler.HandleSetAcknowledged)
	group.PATCH("/:id/notes", m.handler.HandleSetNotes)
	group.PATCH("/:id/postpone", m.handler.HandleSetPostpone)
	group.PATCH("/:id/invites", m.handler.HandleSetInvites)
}

// scoreAdapter bridges the submission repository to the lifecycle manager's
// ScoreReader without coupling the service package to the submission module.
type scoreAdapter struct {
	repo *submission.Repository
}

func (a *scoreAdapter) LatestSnapshot(ctx context.Context, email string) (service.ScoreSnapshot, error) {
	latest, err := a.repo.LatestScores(ctx, email)
	if err != nil {
		return service.ScoreSnapshot{}, err
	}
	return service.ScoreSnapshot{
		Found:        true,
		TotalPercent: latest.TotalPercent,
		Categories:   latest.Categories,
	}, nil
}

func (a *scoreAdapter) LatestQuestionCodes(ctx context.Context, email string) ([]string, error) {
	return a.repo.LatestQuestionCodes(ctx, email)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
