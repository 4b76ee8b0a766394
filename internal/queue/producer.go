package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// PRDJob asks the worker to generate a PRD for an approved suggestion.
type PRDJob struct {
	SuggestionID int64
	Attempt      int
}

type Producer interface {
	Enqueue(ctx context.Context, job PRDJob) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, job PRDJob) error {
	attempt := job.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"suggestion_id": job.SuggestionID,
			"attempt":       attempt,
		},
	}).Err(); err != nil {
		return fmt.Errorf("enqueue prd job: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued prd job", "suggestion_id", job.SuggestionID, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
