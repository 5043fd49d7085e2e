package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/mediops/internal/schema"
)

// frozenClock returns the same instant on every call
func frozenClock() func() time.Time {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestMemoryConsumerLifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway(WithClock(frozenClock()))

	created, err := g.CreateConsumer(ctx, schema.InsertConsumer{
		FirstName: "John", LastName: "Doe", Email: "john.doe@example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, schema.ConsumerStatusActive, created.Status)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	updated, err := g.UpdateConsumer(ctx, created.ID, schema.UpdateConsumer{
		Email: schema.Some("jd@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "John", updated.FirstName)
	assert.Equal(t, "jd@example.com", updated.Email)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updatedAt must move forward even on a frozen clock")
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	again, err := g.UpdateConsumer(ctx, created.ID, schema.UpdateConsumer{})
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.After(updated.UpdatedAt))

	require.NoError(t, g.DeleteConsumer(ctx, created.ID))
	assert.ErrorIs(t, g.DeleteConsumer(ctx, created.ID), ErrNotFound)

	_, err = g.GetConsumer(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUnknownIDs(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	_, err := g.UpdateConsumer(ctx, 999999, schema.UpdateConsumer{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = g.UpdateInventoryItem(ctx, 999999, schema.UpdateInventory{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = g.UpdateEmergencyStatus(ctx, 999999, schema.EmergencyResolved)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, g.DeleteInventoryItem(ctx, 999999), ErrNotFound)
	assert.ErrorIs(t, g.DeleteEmergency(ctx, 999999), ErrNotFound)
}

func TestMemoryListOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewMemoryGateway(WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))

	for _, in := range SeedConsumers {
		_, err := g.CreateConsumer(ctx, in)
		require.NoError(t, err)
	}
	_, err := g.CreateConsumer(ctx, schema.InsertConsumer{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Status: "inactive",
	})
	require.NoError(t, err)

	all, err := g.ListConsumers(ctx, ConsumerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ada", all[0].FirstName)
	assert.Equal(t, "John", all[2].FirstName)

	found, err := g.ListConsumers(ctx, ConsumerFilter{Search: "SMITH"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Jane", found[0].FirstName)

	active, err := g.ListConsumers(ctx, ConsumerFilter{Status: "active"})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	for _, in := range SeedInventory {
		_, err := g.CreateInventoryItem(ctx, in)
		require.NoError(t, err)
	}
	items, err := g.ListInventory(ctx, InventoryFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "LSN-010", items[0].SkuOrID)

	_, err = g.UpdateInventoryItem(ctx, items[1].ID, schema.UpdateInventory{StockQuantity: schema.Some(3)})
	require.NoError(t, err)
	items, err = g.ListInventory(ctx, InventoryFilter{Search: "amx"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].StockQuantity)
	assert.Equal(t, schema.AvailabilityInStock, items[0].AvailabilityStatus, "availability is never derived from stock")
}

func TestMemoryEmergencyStatusIsUnrestricted(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	e, err := g.CreateEmergency(ctx, schema.InsertEmergency{
		ConsumerName: "Ann", ContactInfo: "555", Location: "Ward 3", EmergencyType: "fall",
	})
	require.NoError(t, err)
	assert.Equal(t, schema.EmergencyPending, e.Status)
	assert.False(t, e.Timestamp.IsZero())

	for _, status := range []string{schema.EmergencyResolved, schema.EmergencyPending, schema.EmergencyInProgress, schema.EmergencyInProgress} {
		e, err = g.UpdateEmergencyStatus(ctx, e.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, e.Status)
	}
}

func TestMemoryAnalyticsNewestFirst(t *testing.T) {
	g := NewMemoryGateway(WithAnalytics(
		schema.AnalyticsSample{Date: schema.MustDate("2026-01-01"), Revenue: "10.00"},
		schema.AnalyticsSample{Date: schema.MustDate("2026-01-03"), Revenue: "30.00"},
		schema.AnalyticsSample{Date: schema.MustDate("2026-01-02"), Revenue: "20.00"},
	))

	samples, err := g.ListAnalytics(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, "30.00", samples[0].Revenue)
	assert.Equal(t, "10.00", samples[2].Revenue)
}

func TestMemoryConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.CreateEmergency(ctx, schema.InsertEmergency{
				ConsumerName: "x", ContactInfo: "y", Location: "z", EmergencyType: "w",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := g.ListEmergencies(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestSeedOnlyFillsEmptyTables(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	require.NoError(t, Seed(ctx, g))
	require.NoError(t, Seed(ctx, g))

	consumers, err := g.ListConsumers(ctx, ConsumerFilter{})
	require.NoError(t, err)
	assert.Len(t, consumers, len(SeedConsumers))

	items, err := g.ListInventory(ctx, InventoryFilter{})
	require.NoError(t, err)
	assert.Len(t, items, len(SeedInventory))
}

func TestSeedConsumersCarryClinicalFields(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()
	require.NoError(t, Seed(ctx, g))

	tests := []struct {
		search  string
		dob     string
		history string
	}{
		{search: "john.doe", dob: "1950-01-01", history: "Hypertension, Type 2 Diabetes"},
		{search: "jane.smith", dob: "1945-05-15", history: "Arthritis, Glaucoma"},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			list, err := g.ListConsumers(ctx, ConsumerFilter{Search: tt.search})
			require.NoError(t, err)
			require.Len(t, list, 1)
			require.NotNil(t, list[0].DateOfBirth)
			assert.Equal(t, tt.dob, list[0].DateOfBirth.String())
			require.NotNil(t, list[0].MedicalHistory)
			assert.Equal(t, tt.history, *list[0].MedicalHistory)
		})
	}
}

type recordingNotifier struct {
	kinds []string
}

func (n *recordingNotifier) Notify(_ context.Context, kind string, _ schema.Emergency) error {
	n.kinds = append(n.kinds, kind)
	return nil
}

func TestNotifierAndTracingDecorators(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	notifier := &recordingNotifier{}

	g := WithNotifier(WithTracing(NewMemoryGateway(), metrics), notifier)

	e, err := g.CreateEmergency(ctx, schema.InsertEmergency{
		ConsumerName: "Ann", ContactInfo: "555", Location: "Ward 3", EmergencyType: "fall",
	})
	require.NoError(t, err)
	_, err = g.UpdateEmergencyStatus(ctx, e.ID, schema.EmergencyResolved)
	require.NoError(t, err)
	require.NoError(t, g.DeleteEmergency(ctx, e.ID))
	assert.ErrorIs(t, g.DeleteEmergency(ctx, e.ID), ErrNotFound)

	assert.Equal(t, []string{EventEmergencyReported, EventEmergencyStatusChanged, EventEmergencyDeleted}, notifier.kinds)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("emergency", "delete", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("emergency", "delete", "not_found")))
}
