package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds configuration for all feed-service binaries.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	AMQPURL string `envconfig:"AMQP_URL"`

	Feed struct {
		DefaultPageSize    int           `envconfig:"FEED_DEFAULT_PAGE_SIZE" default:"20"`
		MaxPageSize        int           `envconfig:"FEED_MAX_PAGE_SIZE" default:"50"`
		CandidateLimit     int           `envconfig:"FEED_CANDIDATE_LIMIT" default:"200"`
		RecencyWindowHours float64       `envconfig:"FEED_RECENCY_WINDOW_HOURS" default:"168"`
		SeenTTL            time.Duration `envconfig:"FEED_SEEN_TTL" default:"30m"`
		CivicUrgencyBoost  float64       `envconfig:"CIVIC_URGENCY_BOOST" default:"1.15"`
	} `envconfig:""`

	Queues struct {
		Interactions string `envconfig:"INTERACTIONS_QUEUE" default:"interaction_events"`
	} `envconfig:""`
}

// Load reads the configuration from the environment.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
