package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"camerpulse-feed/internal/adapters/events"
	"camerpulse-feed/internal/adapters/repo"
	"camerpulse-feed/internal/adapters/scorer"
	"camerpulse-feed/internal/api"
	"camerpulse-feed/internal/domain"
	"camerpulse-feed/internal/infra/cache"
	"camerpulse-feed/internal/infra/config"
	"camerpulse-feed/internal/infra/db"
	httpinfra "camerpulse-feed/internal/infra/http"
	applog "camerpulse-feed/internal/infra/log"
	"camerpulse-feed/internal/infra/metrics"
	feedusecase "camerpulse-feed/internal/usecase/feed"
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
		logger.Fatal().Err(err).Msg("api: no database connection")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	var publisher domain.EventPublisher
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: no broker connection")
		}
		defer conn.Close()
		rabbit, err := events.NewRabbitPublisher(conn, cfg.Queues.Interactions)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: publisher setup failed")
		}
		defer rabbit.Close()
		publisher = rabbit
	} else {
		logger.Warn().Msg("api: AMQP_URL not set, interaction analytics disabled")
	}

	repoAdapter := repo.NewPostgres(pool)
	store := cache.NewRedis(redisClient)
	itemScorer := scorer.NewWeighted(cfg.Feed.RecencyWindowHours, cfg.Feed.CivicUrgencyBoost)

	feedService := feedusecase.NewService(repoAdapter, repoAdapter, store, itemScorer, feedusecase.Config{
		DefaultPageSize: cfg.Feed.DefaultPageSize,
		MaxPageSize:     cfg.Feed.MaxPageSize,
		CandidateLimit:  cfg.Feed.CandidateLimit,
		RecencyWindow:   time.Duration(cfg.Feed.RecencyWindowHours * float64(time.Hour)),
		SeenTTL:         cfg.Feed.SeenTTL,
	}, logger.With().Str("component", "feed").Logger())
	prefsService := prefsusecase.NewService(repoAdapter, logger.With().Str("component", "prefs").Logger())
	tracker := interactions.NewService(repoAdapter, publisher, logger.With().Str("component", "interactions").Logger())

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	handler := api.NewHandler(feedService, prefsService, tracker, logger.With().Str("component", "api").Logger())
	handler.Register(server.Router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api: shutdown failed")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("api: server stopped")
		}
	}
}
