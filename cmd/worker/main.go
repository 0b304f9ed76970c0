// The worker consumes background tasks from Redis: today that is the
// recommender pass, which turns fresh submission answers into suggested
// next-step actions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"compass_backend/internal/action"
	"compass_backend/internal/events"
	"compass_backend/internal/recommendation"
	"compass_backend/internal/scheduler"
	"compass_backend/internal/submission"
	"compass_backend/platform/config"
	"compass_backend/platform/db"
	"compass_backend/platform/logger"
	"compass_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	recommendationModule := recommendation.NewModule(pool)
	submissionModule := submission.NewModule(pool, recommendationModule.Service(), eventBus, log)
	actionModule := action.NewModule(pool, submissionModule.Repository(), recommendationModule.Service(), eventBus, val, log)

	worker, err := scheduler.NewWorker(cfg, actionModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	log.Info("worker listening", "queue", cfg.GetAsynqQueueName())
	worker.Run(ctx)
	log.Info("worker stopped")
}
