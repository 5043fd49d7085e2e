package datasource

import (
	"context"
	"strings"
	"time"

	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/operator"
	"github.com/tair/mediops/internal/schema"
)

func strPtr(s string) *string { return &s }

func datePtr(s string) *schema.Date {
	d := schema.MustDate(s)
	return &d
}

// DemoConsumers are the patients shown in demo mode
func DemoConsumers(now time.Time) []schema.Consumer {
	return []schema.Consumer{
		{
			ID: 9991, FirstName: "Demo", LastName: "Patient 1", Email: "demo1@example.com",
			PhoneNumber: strPtr("555-0001"), Address: strPtr("123 Demo St"),
			DateOfBirth: datePtr("1940-01-01"), MedicalHistory: strPtr("Sample medical history for demo."),
			Status: schema.ConsumerStatusActive, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: 9992, FirstName: "Demo", LastName: "Patient 2", Email: "demo2@example.com",
			PhoneNumber: strPtr("555-0002"), Address: strPtr("456 Demo Ave"),
			DateOfBirth: datePtr("1950-05-15"), MedicalHistory: strPtr("Another sample history."),
			Status: schema.ConsumerStatusActive, CreatedAt: now, UpdatedAt: now,
		},
	}
}

// DemoInventory is the stock shown in demo mode
func DemoInventory(now time.Time) []schema.InventoryItem {
	return []schema.InventoryItem{
		{
			ID: 8881, ProductName: "Demo Medicine A", SkuOrID: "DEMO-A", Category: "General",
			StockQuantity: 50, ExpiryDate: datePtr("2026-12-31"), Supplier: strPtr("Demo Supplier"),
			Price: "10.00", AvailabilityStatus: schema.AvailabilityInStock, UpdatedAt: now,
		},
		{
			ID: 8882, ProductName: "Demo Medicine B", SkuOrID: "DEMO-B", Category: "Special",
			StockQuantity: 5, ExpiryDate: datePtr("2025-06-30"), Supplier: strPtr("Demo Supplier"),
			Price: "25.00", AvailabilityStatus: schema.AvailabilityLowStock, UpdatedAt: now,
		},
	}
}

// StaticDataSource serves the demo records and refuses writes
type StaticDataSource struct {
	consumers []schema.Consumer
	inventory []schema.InventoryItem
}

// NewStaticDataSource creates the demo data source, stamping records with now
func NewStaticDataSource(now time.Time) *StaticDataSource {
	now = now.UTC().Truncate(time.Second)
	return &StaticDataSource{
		consumers: DemoConsumers(now),
		inventory: DemoInventory(now),
	}
}

func (d *StaticDataSource) ReadOnly() bool { return true }

func (d *StaticDataSource) CurrentUser(context.Context) (schema.Operator, error) {
	return operator.Demo, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (d *StaticDataSource) ListConsumers(_ context.Context, filter gateway.ConsumerFilter) ([]schema.Consumer, error) {
	out := make([]schema.Consumer, 0, len(d.consumers))
	for _, c := range d.consumers {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(c.FirstName, filter.Search) &&
			!containsFold(c.LastName, filter.Search) && !containsFold(c.Email, filter.Search) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *StaticDataSource) GetConsumer(_ context.Context, id uint) (schema.Consumer, error) {
	for _, c := range d.consumers {
		if c.ID == id {
			return c, nil
		}
	}
	return schema.Consumer{}, gateway.ErrNotFound
}

func (d *StaticDataSource) CreateConsumer(context.Context, schema.InsertConsumer) (schema.Consumer, error) {
	return schema.Consumer{}, ErrReadOnly
}

func (d *StaticDataSource) UpdateConsumer(context.Context, uint, schema.UpdateConsumer) (schema.Consumer, error) {
	return schema.Consumer{}, ErrReadOnly
}

func (d *StaticDataSource) DeleteConsumer(context.Context, uint) error {
	return ErrReadOnly
}

func (d *StaticDataSource) ListInventory(_ context.Context, filter gateway.InventoryFilter) ([]schema.InventoryItem, error) {
	out := make([]schema.InventoryItem, 0, len(d.inventory))
	for _, item := range d.inventory {
		if filter.Search != "" && !containsFold(item.ProductName, filter.Search) &&
			!containsFold(item.SkuOrID, filter.Search) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (d *StaticDataSource) CreateInventoryItem(context.Context, schema.InsertInventory) (schema.InventoryItem, error) {
	return schema.InventoryItem{}, ErrReadOnly
}

func (d *StaticDataSource) UpdateInventoryItem(context.Context, uint, schema.UpdateInventory) (schema.InventoryItem, error) {
	return schema.InventoryItem{}, ErrReadOnly
}

func (d *StaticDataSource) DeleteInventoryItem(context.Context, uint) error {
	return ErrReadOnly
}

func (d *StaticDataSource) ListAnalytics(context.Context) ([]schema.AnalyticsSample, error) {
	return []schema.AnalyticsSample{}, nil
}

func (d *StaticDataSource) ListEmergencies(context.Context) ([]schema.Emergency, error) {
	return []schema.Emergency{}, nil
}

func (d *StaticDataSource) CreateEmergency(context.Context, schema.InsertEmergency) (schema.Emergency, error) {
	return schema.Emergency{}, ErrReadOnly
}

func (d *StaticDataSource) UpdateEmergencyStatus(context.Context, uint, string) (schema.Emergency, error) {
	return schema.Emergency{}, ErrReadOnly
}

func (d *StaticDataSource) DeleteEmergency(context.Context, uint) error {
	return ErrReadOnly
}
