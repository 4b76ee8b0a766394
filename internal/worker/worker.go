package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"idekassen.app/intake/common/logger"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/queue"
	"idekassen.app/intake/internal/service"
	"idekassen.app/intake/internal/store"
)

// Consumer is the slice of queue.RedisConsumer the worker needs.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	MoveToDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// SuggestionSource mirrors the part of store.SuggestionStore the worker uses.
type SuggestionSource interface {
	GetByID(ctx context.Context, id int64) (*model.Suggestion, error)
	SetPRD(ctx context.Context, id int64, prd string) error
}

type Config struct {
	MaxAttempts int
}

// Worker drains the PRD job stream and generates documents for approved
// suggestions. A failed job is requeued until MaxAttempts, then parked on
// the dead letter stream. The approval itself is never touched.
type Worker struct {
	consumer    Consumer
	suggestions SuggestionSource
	prds        service.PRDService
	cfg         Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, suggestions SuggestionSource, prds service.PRDService, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	return &Worker{
		consumer:    consumer,
		suggestions: suggestions,
		prds:        prds,
		cfg:         cfg,
		stopCh:      make(chan struct{}),
		stoppedCh:   make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "prd worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "prd worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "prd job failed",
				"error", err,
				"message_id", msg.ID,
				"suggestion_id", msg.SuggestionID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in prd job",
				"panic", r,
				"message_id", msg.ID,
				"suggestion_id", msg.SuggestionID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SuggestionID: logger.Ptr(msg.SuggestionID),
		JobID:        logger.Ptr(msg.ID),
		Component:    "intake.worker",
	})

	slog.InfoContext(ctx, "processing prd job", "attempt", msg.Attempt)

	sg, err := w.suggestions.GetByID(ctx, msg.SuggestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The suggestion is gone; retrying cannot help.
			slog.WarnContext(ctx, "suggestion not found, dropping job")
			return w.consumer.Ack(ctx, msg)
		}
		return fmt.Errorf("getting suggestion: %w", err)
	}

	if sg.Status != model.StatusApproved {
		// Approval was superseded after enqueue. Last decision wins.
		slog.InfoContext(ctx, "suggestion no longer approved, dropping job",
			"status", sg.Status)
		return w.consumer.Ack(ctx, msg)
	}

	doc, err := w.prds.Generate(ctx, sg)
	if err != nil {
		return fmt.Errorf("generating prd: %w", err)
	}

	if err := w.suggestions.SetPRD(ctx, sg.ID, doc); err != nil {
		return fmt.Errorf("storing prd: %w", err)
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The job is done; a redelivery would regenerate and overwrite, which
		// is safe.
		slog.WarnContext(ctx, "failed to ack prd job", "error", err)
	}

	slog.InfoContext(ctx, "prd job completed", "document_bytes", len(doc))
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"suggestion_id", msg.SuggestionID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.MoveToDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed prd job",
		"message_id", msg.ID,
		"suggestion_id", msg.SuggestionID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue prd job", "error", requeueErr)
	}
}
