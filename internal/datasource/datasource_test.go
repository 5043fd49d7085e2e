package datasource

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/mediops/internal/client"
	deliveryhttp "github.com/tair/mediops/internal/delivery/http"
	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

var (
	_ DataSource = (*StaticDataSource)(nil)
	_ DataSource = (*RemoteDataSource)(nil)
)

func TestStaticDataSourceReads(t *testing.T) {
	ctx := context.Background()
	ds := NewStaticDataSource(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	assert.True(t, ds.ReadOnly())

	consumers, err := ds.ListConsumers(ctx, gateway.ConsumerFilter{})
	require.NoError(t, err)
	require.Len(t, consumers, 2)
	assert.Equal(t, uint(9991), consumers[0].ID)

	filtered, err := ds.ListConsumers(ctx, gateway.ConsumerFilter{Search: "DEMO2@"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, uint(9992), filtered[0].ID)

	_, err = ds.GetConsumer(ctx, 1)
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	items, err := ds.ListInventory(ctx, gateway.InventoryFilter{Search: "demo-b"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "25.00", items[0].Price)

	op, err := ds.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo_user", op.Username)
}

func TestStaticDataSourceRefusesWrites(t *testing.T) {
	ctx := context.Background()
	ds := NewStaticDataSource(time.Now())

	_, err := ds.CreateConsumer(ctx, schema.InsertConsumer{FirstName: "A", LastName: "B", Email: "c"})
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, ds.DeleteConsumer(ctx, 9991), ErrReadOnly)
	_, err = ds.UpdateInventoryItem(ctx, 8881, schema.UpdateInventory{})
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = ds.UpdateEmergencyStatus(ctx, 1, schema.EmergencyResolved)
	assert.ErrorIs(t, err, ErrReadOnly)

	consumers, err := ds.ListConsumers(ctx, gateway.ConsumerFilter{})
	require.NoError(t, err)
	assert.Len(t, consumers, 2)
}

func TestDemoRecordsMatchTheirSchemas(t *testing.T) {
	ds := NewStaticDataSource(time.Now())

	_, err := schema.Encode(schema.ConsumerSchema.List(), ds.consumers)
	assert.NoError(t, err)
	_, err = schema.Encode(schema.InventorySchema.List(), ds.inventory)
	assert.NoError(t, err)
}

func TestRemoteDataSource(t *testing.T) {
	mw := deliveryhttp.DefaultMiddlewareConfig()
	mw.Metrics = deliveryhttp.NewMetrics(prometheus.NewRegistry())
	h := deliveryhttp.NewHandler(gateway.NewMemoryGateway(), nil, deliveryhttp.HandlerConfig{})
	srv := httptest.NewServer(deliveryhttp.NewRouter(h, deliveryhttp.RouterConfig{Middleware: mw}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	ds := NewRemoteDataSource(c)
	ctx := context.Background()

	item, err := ds.CreateInventoryItem(ctx, schema.InsertInventory{
		ProductName: "Lisinopril", SkuOrID: "LSN-010", Category: "Cardio", StockQuantity: 4, Price: "8.5",
	})
	require.NoError(t, err)
	assert.Equal(t, "8.50", item.Price)

	items, err := ds.ListInventory(ctx, gateway.InventoryFilter{Search: "lsn"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	op, err := ds.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo_user", op.Username)
}
