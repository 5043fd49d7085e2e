package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/mediops/internal/client"
	"github.com/tair/mediops/internal/config"
	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/pkg/auth"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", config.StorageMemory)
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("OPERATOR_USERNAME", "admin")
	t.Setenv("OPERATOR_PASSWORD", "secret")
	return config.Load()
}

func TestInitializeServerWithMemoryStorage(t *testing.T) {
	server, cleanup, err := InitializeServer(memoryConfig(t))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	srv := httptest.NewServer(server.Handler)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Consumers().List(ctx, nil)
	require.Error(t, err, "sessions are enforced by default")

	op, err := c.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", op.Username)

	consumers, err := c.Consumers().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, consumers, len(gateway.SeedConsumers))

	items, err := c.Inventory().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, items, len(gateway.SeedInventory))
}

func TestReadinessWithoutExternalDependencies(t *testing.T) {
	server, cleanup, err := InitializeServer(memoryConfig(t))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.Empty(t, server.Health.Names())

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "healthy", report["status"])
}

func TestSeedingCanBeDisabled(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Seed = false
	cfg.Auth.Enforce = false

	server, cleanup, err := InitializeServer(cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/consumers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHTTPServerUsesConfiguredPort(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.HTTP.Port = "9191"
	s := NewServer(cfg, http.NotFoundHandler(), nil)
	assert.Equal(t, ":9191", s.HTTPServer().Addr)
}

func TestProductionRefusesDevelopmentSecret(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Environment = "production"

	_, _, err := InitializeServer(cfg)
	require.ErrorIs(t, err, config.ErrInsecureAuth)
}

func TestProductionRejectsTokensSignedWithDevelopmentSecret(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Environment = "production"
	cfg.Auth.JWTSecret = "a-long-random-production-secret"

	server, cleanup, err := InitializeServer(cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	forged, _, err := auth.NewTokenManager(config.DevJWTSecret, time.Hour).GenerateToken(1, "admin", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/consumers", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
