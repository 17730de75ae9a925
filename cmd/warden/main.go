package main

import (
	"database/sql"
	"log"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/campuslink/warden/adapters/events"
	"github.com/campuslink/warden/adapters/identity"
	"github.com/campuslink/warden/adapters/notifier"
	"github.com/campuslink/warden/adapters/store"
	"github.com/campuslink/warden/adapters/tokenizer"
	"github.com/campuslink/warden/config"
	"github.com/campuslink/warden/internal/metrics"
	"github.com/campuslink/warden/ports"
	"github.com/campuslink/warden/service"
	transport "github.com/campuslink/warden/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg)
	wmLogger := watermill.NewSlogLogger(logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Backing stores: redis-backed when a Redis URL is configured,
	// in-memory otherwise. The event and delivery streams follow redis.
	var (
		challengeStore ports.ChallengeStore
		publisher      message.Publisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}

		challengeStore = store.NewRedisStore(redisClient)
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		challengeStore = store.NewMemoryStore()
		logger.Warn("no redis configured, using in-memory challenge store")
	}

	var identityStore ports.IdentityStore
	if cfg.PostgresDSN != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN)))
		db := bun.NewDB(sqldb, pgdialect.New())
		identityStore = identity.NewBunStore(db)
	} else {
		identityStore = identity.NewMemoryStore()
		logger.Warn("no postgres configured, using in-memory identity store")
	}

	var external ports.Notifier
	if cfg.DeliveryTopic != "" {
		external = notifier.NewWatermillNotifier(publisher, cfg.DeliveryTopic)
	}
	dispatcher := service.NewDispatcher(
		external,
		notifier.NewConsoleNotifier(logger),
		cfg.DispatchTimeout,
		logger,
	)

	registry := prometheus.NewRegistry()

	authService, err := service.NewAuthService(
		cfg,
		identityStore,
		challengeStore,
		tokenizer.NewJWTTokenizer([]byte(cfg.SigningSecret), cfg.SessionTokenTTL),
		dispatcher,
		events.NewWatermillPublisher(publisher),
		metrics.New(registry),
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	router := transport.SetupRouter(authService, registry)

	logger.Info("warden listening", "addr", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
