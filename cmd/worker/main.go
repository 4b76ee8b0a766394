package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"idekassen.app/intake/common/id"
	"idekassen.app/intake/common/llm"
	"idekassen.app/intake/common/logger"
	"idekassen.app/intake/common/otel"
	"idekassen.app/intake/core/config"
	"idekassen.app/intake/core/db"
	"idekassen.app/intake/internal/queue"
	"idekassen.app/intake/internal/service"
	"idekassen.app/intake/internal/store"
	"idekassen.app/intake/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "intake prd worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Queue.PRDGroup,
		"consumer_name", cfg.Queue.ConsumerName)

	// Different node id than the server so snowflake ids never collide.
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.PRDStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:      cfg.Queue.PRDStream,
		Group:       cfg.Queue.PRDGroup,
		Consumer:    cfg.Queue.ConsumerName,
		DLQStream:   cfg.Queue.PRDDLQStream,
		BatchSize:   1, // One document at a time
		Block:       5 * time.Second,
		MaxAttempts: 2,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	prdClient, err := llm.NewChatClient(llm.Config{
		APIKey:    cfg.PRDLLM.APIKey,
		BaseURL:   cfg.PRDLLM.BaseURL,
		Model:     cfg.PRDLLM.Model,
		MaxTokens: cfg.PRDLLM.MaxTokens,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create prd client", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Querier())
	prds := service.NewPRDService(prdClient, cfg.PRDLLM.MaxTokens)

	w := worker.New(consumer, stores.Suggestions(), prds, worker.Config{
		MaxAttempts: 2,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}
