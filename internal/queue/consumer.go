package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"idekassen.app/intake/common/logger"
)

type ConsumerConfig struct {
	Stream      string        // Redis stream name
	Group       string        // Redis consumer group name
	Consumer    string        // Redis consumer name
	DLQStream   string        // Dead letter queue stream for failed jobs
	BatchSize   int64         // Number of jobs to process per batch
	Block       time.Duration // How long to block/poll for new jobs
	MaxAttempts int           // Maximum attempts before moving to DLQ
}

// Message is a PRD job read from the stream, with its delivery metadata.
type Message struct {
	ID           string
	SuggestionID int64
	Attempt      int
	Raw          redis.XMessage
}

type RedisConsumer struct {
	client *redis.Client
	cfg    ConsumerConfig
}

func NewRedisConsumer(client *redis.Client, cfg ConsumerConfig) (*RedisConsumer, error) {
	consumer := &RedisConsumer{
		client: client,
		cfg:    cfg,
	}

	if err := consumer.ensureGroup(context.Background()); err != nil { //nolint:contextcheck
		return nil, err
	}

	return consumer, nil
}

func (c *RedisConsumer) ensureGroup(ctx context.Context) error {
	// Starting from "0" instead of "$" means the group sees jobs already in
	// the stream, so nothing is lost across restarts.
	if err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err(); err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

func (c *RedisConsumer) Read(ctx context.Context) ([]Message, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "intake.queue.consumer",
	})

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    c.cfg.BatchSize,
		Block:    c.cfg.Block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	var messages []Message
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			parsed, parseErr := parseMessage(msg)
			if parseErr != nil {
				slog.ErrorContext(ctx, "failed to parse job",
					"error", parseErr,
					"raw_message_id", msg.ID,
					"stream", c.cfg.Stream)
				_ = c.Ack(ctx, Message{ID: msg.ID, Raw: msg})
				continue
			}
			messages = append(messages, parsed)
		}
	}

	return messages, nil
}

func (c *RedisConsumer) Ack(ctx context.Context, msg Message) error {
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
		return fmt.Errorf("xack (stream=%s): %w", c.cfg.Stream, err)
	}
	return nil
}

// Requeue acks the failed delivery and re-adds the job with attempt+1.
func (c *RedisConsumer) Requeue(ctx context.Context, msg Message, errMsg string) error {
	if err := c.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking failed job for requeue: %w", err)
	}

	values := map[string]any{
		"suggestion_id": msg.SuggestionID,
		"attempt":       msg.Attempt + 1,
	}
	if errMsg != "" {
		values["last_error"] = errMsg
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.Stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("requeueing job: %w", err)
	}

	slog.WarnContext(ctx, "job requeued",
		"suggestion_id", msg.SuggestionID,
		"attempt", msg.Attempt+1,
		"error", errMsg)
	return nil
}

// MoveToDLQ acks the job and parks it on the dead letter stream.
func (c *RedisConsumer) MoveToDLQ(ctx context.Context, msg Message, errMsg string) error {
	if err := c.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking job for dlq: %w", err)
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.DLQStream,
		Values: map[string]any{
			"suggestion_id": msg.SuggestionID,
			"attempt":       msg.Attempt,
			"last_error":    errMsg,
		},
	}).Err(); err != nil {
		return fmt.Errorf("moving job to dlq: %w", err)
	}

	slog.ErrorContext(ctx, "job moved to dlq",
		"suggestion_id", msg.SuggestionID,
		"attempts", msg.Attempt,
		"error", errMsg)
	return nil
}

func (c *RedisConsumer) MaxAttempts() int {
	if c.cfg.MaxAttempts <= 0 {
		return 2
	}
	return c.cfg.MaxAttempts
}

func parseMessage(msg redis.XMessage) (Message, error) {
	rawID, ok := msg.Values["suggestion_id"].(string)
	if !ok {
		return Message{}, fmt.Errorf("message %s missing suggestion_id", msg.ID)
	}
	suggestionID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return Message{}, fmt.Errorf("message %s has invalid suggestion_id %q", msg.ID, rawID)
	}

	attempt := 1
	if rawAttempt, ok := msg.Values["attempt"].(string); ok {
		if n, err := strconv.Atoi(rawAttempt); err == nil && n > 0 {
			attempt = n
		}
	}

	return Message{
		ID:           msg.ID,
		SuggestionID: suggestionID,
		Attempt:      attempt,
		Raw:          msg,
	}, nil
}
