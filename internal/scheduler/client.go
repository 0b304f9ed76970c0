// Package scheduler enqueues and runs background tasks via asynq on Redis.
// The API process enqueues; a separate worker process consumes.
package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"compass_backend/internal/events"
	"compass_backend/platform/config"
	"compass_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRecommenderPass queues a recommender pass for the given user. A nil
// client (Redis not configured) is a no-op.
func (c *Client) EnqueueRecommenderPass(ctx context.Context, email string) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRecommenderPassTask(RecommenderPassPayload{Email: email})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// RegisterIngestDispatch subscribes the client to submission events so that
// every committed ingest queues a recommender pass for that user. Dispatch is
// best-effort; a queueing failure is logged and never reaches the webhook
// caller.
func (c *Client) RegisterIngestDispatch(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.SubmissionIngested{}.EventName(), events.HandlerFunc(
		func(ctx context.Context, event events.Event) error {
			ingested, ok := event.(events.SubmissionIngested)
			if !ok {
				return fmt.Errorf("unexpected event type %T", event)
			}
			if ingested.Email == "" {
				return nil
			}
			if err := c.EnqueueRecommenderPass(ctx, ingested.Email); err != nil {
				log.Error("recommender dispatch failed", "email", ingested.Email, "error", err)
				return err
			}
			return nil
		}))
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
