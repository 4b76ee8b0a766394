package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"idekassen.app/intake/common/id"
	"idekassen.app/intake/common/llm"
	"idekassen.app/intake/common/logger"
	"idekassen.app/intake/common/otel"
	"idekassen.app/intake/core/config"
	"idekassen.app/intake/core/db"
	"idekassen.app/intake/internal/http/middleware"
	httprouter "idekassen.app/intake/internal/http/router"
	"idekassen.app/intake/internal/queue"
	"idekassen.app/intake/internal/service"
	"idekassen.app/intake/internal/storage"
	"idekassen.app/intake/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "intake server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
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
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.PRDStream)

	prdProducer := queue.NewRedisProducer(redisClient, cfg.Queue.PRDStream, slog.Default())
	defer prdProducer.Close()

	chatClient, err := llm.NewChatClient(llm.Config{
		APIKey:    cfg.ChatLLM.APIKey,
		BaseURL:   cfg.ChatLLM.BaseURL,
		Model:     cfg.ChatLLM.Model,
		MaxTokens: cfg.ChatLLM.MaxTokens,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create chat client", "error", err)
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
	services := service.NewServices(stores, chatClient, prdClient, prdProducer, cfg)
	files := storage.NewClient(cfg.Storage)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, files)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, files storage.Client) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, files, httprouter.RouterConfig{
		AppURL:       cfg.AppURL,
		IsProduction: cfg.IsProduction(),
	})

	return router
}
