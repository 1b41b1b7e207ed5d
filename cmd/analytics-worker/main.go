package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"camerpulse-feed/internal/adapters/events"
	"camerpulse-feed/internal/adapters/repo"
	"camerpulse-feed/internal/infra/cache"
	"camerpulse-feed/internal/infra/config"
	"camerpulse-feed/internal/infra/db"
	applog "camerpulse-feed/internal/infra/log"
	"camerpulse-feed/internal/infra/metrics"
	"camerpulse-feed/internal/usecase/interactions"
	prefsusecase "camerpulse-feed/internal/usecase/prefs"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("analytics-worker: no database connection")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("analytics-worker: no broker connection")
	}
	defer conn.Close()

	consumer, err := events.NewRabbitConsumer(conn, cfg.Queues.Interactions, logger.With().Str("component", "events").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("analytics-worker: consumer setup failed")
	}
	defer consumer.Close()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), fmt.Sprintf(":%d", cfg.Port))

	prefsService := prefsusecase.NewService(repo.NewPostgres(pool), logger.With().Str("component", "prefs").Logger())
	adjuster := interactions.NewAdjuster(prefsService, cache.NewRedis(redisClient), logger.With().Str("component", "adjuster").Logger())

	logger.Info().Str("queue", cfg.Queues.Interactions).Msg("analytics-worker: consuming")
	if err := consumer.Consume(ctx, adjuster.Apply); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("analytics-worker: consume loop stopped")
	}
}
