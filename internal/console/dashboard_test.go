package console

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/mediops/internal/datasource"
	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	consumers := []schema.Consumer{
		{ID: 1, Status: "active", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Status: "inactive", CreatedAt: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Status: "active", CreatedAt: time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC)},
		{ID: 4, Status: "active", CreatedAt: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	items := []schema.InventoryItem{
		{ID: 1, StockQuantity: 10, AvailabilityStatus: schema.AvailabilityInStock},
		{ID: 2, StockQuantity: 11, AvailabilityStatus: schema.AvailabilityLowStock},
		{ID: 3, StockQuantity: 0},
	}
	emergencies := []schema.Emergency{
		{ID: 1, Status: schema.EmergencyPending},
		{ID: 2, Status: schema.EmergencyResolved},
	}

	got := ComputeStats(consumers, items, emergencies, now)
	want := Stats{TotalConsumers: 4, ActiveConsumers: 3, NewThisMonth: 2, LowStockItems: 2, OpenEmergencies: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadStatsFromDemoData(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	stats, err := LoadStats(context.Background(), datasource.NewStaticDataSource(now), now)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalConsumers: 2, ActiveConsumers: 2, NewThisMonth: 2, LowStockItems: 1}, stats)
}

type failingLister struct{ datasource.DataSource }

func (failingLister) ListInventory(context.Context, gateway.InventoryFilter) ([]schema.InventoryItem, error) {
	return nil, errors.New("inventory unavailable")
}

func TestLoadStatsPropagatesErrors(t *testing.T) {
	src := failingLister{datasource.NewStaticDataSource(time.Now())}

	_, err := LoadStats(context.Background(), src, time.Now())
	assert.EqualError(t, err, "inventory unavailable")
}
