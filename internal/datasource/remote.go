package datasource

import (
	"context"

	"github.com/tair/mediops/internal/client"
	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

// RemoteDataSource talks to a MediOps server through the typed client
type RemoteDataSource struct {
	client *client.Client
}

// NewRemoteDataSource creates a data source backed by c
func NewRemoteDataSource(c *client.Client) *RemoteDataSource {
	return &RemoteDataSource{client: c}
}

func (d *RemoteDataSource) ReadOnly() bool { return false }

func (d *RemoteDataSource) CurrentUser(ctx context.Context) (schema.Operator, error) {
	return d.client.CurrentUser(ctx)
}

func (d *RemoteDataSource) ListConsumers(ctx context.Context, filter gateway.ConsumerFilter) ([]schema.Consumer, error) {
	return d.client.Consumers().List(ctx, schema.ConsumerQuery{Search: filter.Search, Status: filter.Status})
}

func (d *RemoteDataSource) GetConsumer(ctx context.Context, id uint) (schema.Consumer, error) {
	return d.client.Consumers().Get(ctx, id)
}

func (d *RemoteDataSource) CreateConsumer(ctx context.Context, in schema.InsertConsumer) (schema.Consumer, error) {
	return d.client.Consumers().Create(ctx, in)
}

func (d *RemoteDataSource) UpdateConsumer(ctx context.Context, id uint, in schema.UpdateConsumer) (schema.Consumer, error) {
	return d.client.Consumers().Update(ctx, id, in)
}

func (d *RemoteDataSource) DeleteConsumer(ctx context.Context, id uint) error {
	return d.client.Consumers().Delete(ctx, id)
}

func (d *RemoteDataSource) ListInventory(ctx context.Context, filter gateway.InventoryFilter) ([]schema.InventoryItem, error) {
	return d.client.Inventory().List(ctx, schema.InventoryQuery{Search: filter.Search})
}

func (d *RemoteDataSource) CreateInventoryItem(ctx context.Context, in schema.InsertInventory) (schema.InventoryItem, error) {
	return d.client.Inventory().Create(ctx, in)
}

func (d *RemoteDataSource) UpdateInventoryItem(ctx context.Context, id uint, in schema.UpdateInventory) (schema.InventoryItem, error) {
	return d.client.Inventory().Update(ctx, id, in)
}

func (d *RemoteDataSource) DeleteInventoryItem(ctx context.Context, id uint) error {
	return d.client.Inventory().Delete(ctx, id)
}

func (d *RemoteDataSource) ListAnalytics(ctx context.Context) ([]schema.AnalyticsSample, error) {
	return d.client.Analytics().List(ctx, nil)
}

func (d *RemoteDataSource) ListEmergencies(ctx context.Context) ([]schema.Emergency, error) {
	return d.client.Emergencies().List(ctx, nil)
}

func (d *RemoteDataSource) CreateEmergency(ctx context.Context, in schema.InsertEmergency) (schema.Emergency, error) {
	return d.client.Emergencies().Create(ctx, in)
}

func (d *RemoteDataSource) UpdateEmergencyStatus(ctx context.Context, id uint, status string) (schema.Emergency, error) {
	return d.client.Emergencies().UpdateStatus(ctx, id, status)
}

func (d *RemoteDataSource) DeleteEmergency(ctx context.Context, id uint) error {
	return d.client.Emergencies().Delete(ctx, id)
}
