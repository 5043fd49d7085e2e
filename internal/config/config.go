// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tair/mediops/pkg/database"
	"github.com/tair/mediops/pkg/tracing"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Development credentials. Validate rejects them in any other environment.
const (
	DevJWTSecret        = "change-me-in-production"
	DevOperatorPassword = "admin"
)

// ErrInsecureAuth means a non-development environment runs on development credentials
var ErrInsecureAuth = errors.New("insecure auth configuration")

// Config holds the server configuration
type Config struct {
	ServiceName string
	Version     string
	Environment string
	LogLevel    string

	HTTP     HTTPConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
	CORSOrig []string
}

// HTTPConfig configures the HTTP listener
type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig selects and configures the persistence gateway
type StorageConfig struct {
	Driver   string
	Seed     bool
	Database database.Config
}

// AuthConfig configures operator sessions
type AuthConfig struct {
	Enforce          bool
	JWTSecret        string
	SessionTTL       time.Duration
	OperatorUsername string
	OperatorPassword string
	CookieSecure     bool
}

// RedisConfig configures the rate limiter backend. An empty Addr disables it.
type RedisConfig struct {
	Addr          string
	Password      string
	RatePerMinute int
}

// KafkaConfig configures emergency event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers        []string
	EmergencyTopic string
	GroupID        string
}

// TracingConfig configures OpenTelemetry export
type TracingConfig struct {
	Enabled        bool
	JaegerEndpoint string
	SampleRatio    float64
}

// TracerConfig describes this process to the tracer
func (c *Config) TracerConfig(serviceName string) tracing.Config {
	return tracing.Config{
		ServiceName:    serviceName,
		Version:        c.Version,
		Environment:    c.Environment,
		JaegerEndpoint: c.Tracing.JaegerEndpoint,
		SampleRatio:    c.Tracing.SampleRatio,
	}
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate checks the settings the server refuses to start without. Outside
// development the session secret and the bootstrap operator password must
// be set explicitly.
func (c *Config) Validate() error {
	if c.IsDevelopment() {
		return nil
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == DevJWTSecret {
		return fmt.Errorf("%w: JWT_SECRET must be set when ENVIRONMENT=%s", ErrInsecureAuth, c.Environment)
	}
	if c.Auth.OperatorUsername != "" && (c.Auth.OperatorPassword == "" || c.Auth.OperatorPassword == DevOperatorPassword) {
		return fmt.Errorf("%w: OPERATOR_PASSWORD must be set when ENVIRONMENT=%s", ErrInsecureAuth, c.Environment)
	}
	return nil
}

// Load collects configuration from environment with defaults
func Load() *Config {
	env := getEnv("ENVIRONMENT", "development")

	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "mediops"),
		Version:     getEnv("SERVICE_VERSION", "1.0.0"),
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		HTTP: HTTPConfig{
			Port:            getEnv("HTTP_PORT", "8080"),
			ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			RequestTimeout:  getDuration("HTTP_REQUEST_TIMEOUT", 25*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},

		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StoragePostgres),
			Seed:   getBool("DB_SEED", true),
			Database: database.Config{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "postgres"),
				Password: getEnv("DB_PASSWORD", "postgres"),
				DBName:   getEnv("DB_NAME", "mediops"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
		},

		Auth: AuthConfig{
			Enforce:          getBool("AUTH_ENFORCE", true),
			JWTSecret:        getEnv("JWT_SECRET", DevJWTSecret),
			SessionTTL:       getDuration("SESSION_TTL", 24*time.Hour),
			OperatorUsername: getEnv("OPERATOR_USERNAME", "admin"),
			OperatorPassword: getEnv("OPERATOR_PASSWORD", DevOperatorPassword),
			CookieSecure:     getBool("COOKIE_SECURE", env != "development"),
		},

		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", ""),
			Password:      getEnv("REDIS_PASSWORD", ""),
			RatePerMinute: getInt("RATE_LIMIT_PER_MINUTE", 100),
		},

		Kafka: KafkaConfig{
			Brokers:        getList("KAFKA_BROKERS"),
			EmergencyTopic: getEnv("KAFKA_EMERGENCY_TOPIC", "emergency-events"),
			GroupID:        getEnv("KAFKA_GROUP_ID", "emergency-notifier"),
		},

		Tracing: TracingConfig{
			Enabled:        getBool("TRACING_ENABLED", false),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
			SampleRatio:    getFloat("TRACING_SAMPLE_RATIO", 1),
		},

		CORSOrig: getListDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// getDuration accepts Go duration strings ("30s", "24h")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func getList(key string) []string {
	return getListDefault(key, nil)
}

func getListDefault(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
