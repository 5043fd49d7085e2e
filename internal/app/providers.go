// Package app assembles the mediops HTTP server from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/mediops/internal/config"
	deliveryhttp "github.com/tair/mediops/internal/delivery/http"
	"github.com/tair/mediops/internal/events"
	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/health"
	"github.com/tair/mediops/internal/operator"
	"github.com/tair/mediops/pkg/auth"
	"github.com/tair/mediops/pkg/database"
	"github.com/tair/mediops/pkg/logger"
)

// Server is the fully wired HTTP stack
type Server struct {
	Config  *config.Config
	Handler http.Handler
	Health  *health.Checker
}

// HTTPServer returns a listener-ready server with the configured timeouts
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.Config.HTTP.Port,
		Handler:      s.Handler,
		ReadTimeout:  s.Config.HTTP.ReadTimeout,
		WriteTimeout: s.Config.HTTP.WriteTimeout,
	}
}

// ProvideDatabase opens the Postgres pool. The memory driver gets a nil DB.
func ProvideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	if cfg.Storage.Driver == config.StorageMemory {
		return nil, func() {}, nil
	}

	db, err := database.NewGormConnection(cfg.Storage.Database)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close database")
		}
	}
	return db, cleanup, nil
}

// ProvideRedis connects the rate limiter backend. No address means no client.
func ProvideRedis(cfg *config.Config) (*redis.Client, func()) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, rate limiting fails open")
	} else {
		logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	return client, func() { client.Close() }
}

// ProvidePublisher connects the emergency event producer. No brokers means no publisher.
func ProvidePublisher(cfg *config.Config) (*events.Publisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, func() {}, nil
	}

	publisher, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.EmergencyTopic)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}
	return publisher, cleanup, nil
}

// ProvideNotifier adapts an optional publisher to the gateway notifier port
func ProvideNotifier(publisher *events.Publisher) gateway.EmergencyNotifier {
	if publisher == nil {
		return nil
	}
	return publisher
}

// ProvideRegistry creates the registry behind /metrics
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideHTTPMetrics registers the request collectors
func ProvideHTTPMetrics(reg *prometheus.Registry) *deliveryhttp.Metrics {
	return deliveryhttp.NewMetrics(reg)
}

// ProvideGatewayMetrics registers the gateway collectors
func ProvideGatewayMetrics(reg *prometheus.Registry) *gateway.Metrics {
	return gateway.NewMetrics(reg)
}

// ProvideGateway picks the storage driver, migrates and seeds it, then adds
// tracing and event publishing around it.
func ProvideGateway(cfg *config.Config, db *gorm.DB, metrics *gateway.Metrics, notifier gateway.EmergencyNotifier) (gateway.Gateway, error) {
	var store gateway.Seedable

	if db == nil {
		store = gateway.NewMemoryGateway()
	} else {
		g := gateway.NewGormGateway(db)
		if err := g.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		store = g
	}

	if cfg.Storage.Seed {
		if err := gateway.Seed(context.Background(), store); err != nil {
			return nil, err
		}
	}

	var gw gateway.Gateway = gateway.WithTracing(store, metrics)
	if notifier != nil {
		gw = gateway.WithNotifier(gw, notifier)
	}

	logger.Logger.Info().
		Str("driver", cfg.Storage.Driver).
		Bool("events", notifier != nil).
		Msg("Persistence gateway initialized")
	return gw, nil
}

// ProvideOperatorRepository stores operators next to the domain tables
func ProvideOperatorRepository(db *gorm.DB) (operator.Repository, error) {
	if db == nil {
		return operator.NewMemoryRepository(), nil
	}
	repo := operator.NewGormRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate operators: %w", err)
	}
	return repo, nil
}

// ProvideSessions creates the session service and the bootstrap operator.
// Development credentials are refused outside development.
func ProvideSessions(cfg *config.Config, repo operator.Repository) (*operator.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sessions := operator.NewService(repo, auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL))
	if cfg.Auth.OperatorUsername != "" {
		if err := sessions.EnsureOperator(context.Background(), cfg.Auth.OperatorUsername, cfg.Auth.OperatorPassword); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// ProvideHealth registers a probe for every configured dependency
func ProvideHealth(cfg *config.Config, db *gorm.DB, rdb *redis.Client, publisher *events.Publisher) *health.Checker {
	checker := health.NewChecker(cfg.ServiceName, 5*time.Second)

	if db != nil {
		checker.Register("database", func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if rdb != nil {
		checker.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	if publisher != nil {
		checker.Register("kafka", publisher.Ping)
	}
	return checker
}

// ProvideRateLimiter limits each client to RatePerMinute requests. Nil without Redis.
func ProvideRateLimiter(cfg *config.Config, rdb *redis.Client) *deliveryhttp.RateLimiter {
	if rdb == nil || cfg.Redis.RatePerMinute <= 0 {
		return nil
	}
	return deliveryhttp.NewRateLimiter(rdb, cfg.Redis.RatePerMinute, time.Minute)
}

// ProvideHandler builds the route handlers
func ProvideHandler(cfg *config.Config, gw gateway.Gateway, sessions *operator.Service) *deliveryhttp.Handler {
	return deliveryhttp.NewHandler(gw, sessions, deliveryhttp.HandlerConfig{
		EnforceAuth:  cfg.Auth.Enforce,
		CookieSecure: cfg.Auth.CookieSecure,
	})
}

// ProvideRouter mounts the handlers, probes and metrics behind the middleware chain
func ProvideRouter(
	cfg *config.Config,
	h *deliveryhttp.Handler,
	checker *health.Checker,
	reg *prometheus.Registry,
	metrics *deliveryhttp.Metrics,
	limiter *deliveryhttp.RateLimiter,
) http.Handler {
	mw := deliveryhttp.DefaultMiddlewareConfig()
	mw.TimeoutDuration = cfg.HTTP.RequestTimeout
	mw.CORSOptions.AllowedOrigins = cfg.CORSOrig
	mw.Metrics = metrics
	mw.RateLimiter = limiter
	mw.EnableTracing = cfg.Tracing.Enabled

	return deliveryhttp.NewRouter(h, deliveryhttp.RouterConfig{
		Middleware: mw,
		Health:     checker,
		Gatherer:   reg,
		Swagger:    true,
	})
}

// NewServer bundles the wired pieces
func NewServer(cfg *config.Config, handler http.Handler, checker *health.Checker) *Server {
	return &Server{Config: cfg, Handler: handler, Health: checker}
}
