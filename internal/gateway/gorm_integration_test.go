//go:build integration

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tair/mediops/internal/schema"
	"github.com/tair/mediops/pkg/database"
)

func newPostgresGateway(t *testing.T) *GormGateway {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("mediops_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := database.OpenDSN(dsn, database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := database.WrapGorm(sqlDB)
	require.NoError(t, err)

	g := NewGormGateway(db)
	require.NoError(t, g.AutoMigrate())
	return g
}

func TestGormGatewayConsumers(t *testing.T) {
	ctx := context.Background()
	g := newPostgresGateway(t)

	dob := schema.MustDate("1990-05-17")
	created, err := g.CreateConsumer(ctx, schema.InsertConsumer{
		FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "active", created.Status)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := g.GetConsumer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1990-05-17", got.DateOfBirth.String())
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	updated, err := g.UpdateConsumer(ctx, created.ID, schema.UpdateConsumer{
		LastName:    schema.Some("Dough"),
		DateOfBirth: schema.Null[schema.Date](),
	})
	require.NoError(t, err)
	assert.Equal(t, "John", updated.FirstName)
	assert.Equal(t, "Dough", updated.LastName)
	assert.Nil(t, updated.DateOfBirth)
	assert.True(t, updated.UpdatedAt.After(got.UpdatedAt))

	found, err := g.ListConsumers(ctx, ConsumerFilter{Search: "dou"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := g.ListConsumers(ctx, ConsumerFilter{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, g.DeleteConsumer(ctx, created.ID))
	assert.ErrorIs(t, g.DeleteConsumer(ctx, created.ID), ErrNotFound)

	_, err = g.GetConsumer(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormGatewayInventoryAndEmergencies(t *testing.T) {
	ctx := context.Background()
	g := newPostgresGateway(t)

	require.NoError(t, Seed(ctx, g))

	items, err := g.ListInventory(ctx, InventoryFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "LSN-010", items[0].SkuOrID)
	assert.Equal(t, "12.00", items[0].Price)
	assert.Equal(t, "2027-06-30", items[0].ExpiryDate.String())

	_, err = g.UpdateInventoryItem(ctx, 999999, schema.UpdateInventory{})
	assert.ErrorIs(t, err, ErrNotFound)

	e, err := g.CreateEmergency(ctx, schema.InsertEmergency{
		ConsumerName: "Ann", ContactInfo: "555", Location: "Ward 3", EmergencyType: "fall",
	})
	require.NoError(t, err)
	assert.Equal(t, schema.EmergencyPending, e.Status)

	e, err = g.UpdateEmergencyStatus(ctx, e.ID, schema.EmergencyInProgress)
	require.NoError(t, err)
	e, err = g.UpdateEmergencyStatus(ctx, e.ID, schema.EmergencyInProgress)
	require.NoError(t, err)
	assert.Equal(t, schema.EmergencyInProgress, e.Status)

	list, err := g.ListEmergencies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, schema.EmergencyInProgress, list[0].Status)

	analytics, err := g.ListAnalytics(ctx)
	require.NoError(t, err)
	assert.Empty(t, analytics)
}
