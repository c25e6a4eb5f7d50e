package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/samber/do"
	"github.com/shortloop/shortloop/internal/container"
	"github.com/shortloop/shortloop/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	opts := &container.Options{
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		ConsumerGroup:   getEnv("CONSUMER_GROUP", "analytics"),
		Workers:         getEnvInt("WORKERS", 4),
		WorkerRetries:   getEnvInt("WORKER_RETRIES", 5),
		StatsWindowDays: getEnvInt("STATS_WINDOW_DAYS", 30),
		TopLimit:        getEnvInt("TOP_LIMIT", 20),
		GeoCacheTTL:     getEnvInt("GEO_CACHE_TTL", 86400),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RepositoryPackage(injector)
	container.PublisherGroupPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("workers running", zap.Int("count", group.Size()))

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return defaultValue
}
