package scheduler

import (
	"context"
	"fmt"

	"compass_backend/platform/config"
	"compass_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// RecommenderRunner runs the system recommender pass for one user.
type RecommenderRunner interface {
	RecommenderPass(ctx context.Context, email string) (int, error)
}

type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	recommender RecommenderRunner
	log         *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, recommender RecommenderRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:      server,
		mux:         mux,
		recommender: recommender,
		log:         log,
	}

	mux.HandleFunc(TaskRecommenderPass, w.handleRecommenderPass)

	return w, nil
}

func (w *Worker) handleRecommenderPass(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRecommenderPassPayload(task)
	if err != nil {
		return err
	}
	if payload.Email == "" {
		return nil
	}

	created, err := w.recommender.RecommenderPass(ctx, payload.Email)
	if err != nil {
		return err
	}

	w.log.Info("recommender pass completed", "email", payload.Email, "created", created)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
