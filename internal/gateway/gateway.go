// Package gateway is the only storage interface of the service. Every method
// is one atomic read or write; lists are ordered newest first by each
// entity's recency key.
package gateway

import (
	"context"
	"errors"

	"github.com/tair/mediops/internal/schema"
)

// ErrNotFound is returned for an unknown id
var ErrNotFound = errors.New("record not found")

// ConsumerFilter narrows a consumer listing. Empty fields match everything.
type ConsumerFilter struct {
	Search string
	Status string
}

// InventoryFilter narrows an inventory listing
type InventoryFilter struct {
	Search string
}

// ConsumerStore persists consumers, ordered by createdAt desc
type ConsumerStore interface {
	ListConsumers(ctx context.Context, filter ConsumerFilter) ([]schema.Consumer, error)
	GetConsumer(ctx context.Context, id uint) (schema.Consumer, error)
	CreateConsumer(ctx context.Context, in schema.InsertConsumer) (schema.Consumer, error)
	UpdateConsumer(ctx context.Context, id uint, in schema.UpdateConsumer) (schema.Consumer, error)
	DeleteConsumer(ctx context.Context, id uint) error
}

// InventoryStore persists stock items, ordered by updatedAt desc
type InventoryStore interface {
	ListInventory(ctx context.Context, filter InventoryFilter) ([]schema.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, in schema.InsertInventory) (schema.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id uint, in schema.UpdateInventory) (schema.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id uint) error
}

// AnalyticsStore reads analytics samples, ordered by date desc
type AnalyticsStore interface {
	ListAnalytics(ctx context.Context) ([]schema.AnalyticsSample, error)
}

// EmergencyStore persists emergency requests, ordered by timestamp desc
type EmergencyStore interface {
	ListEmergencies(ctx context.Context) ([]schema.Emergency, error)
	CreateEmergency(ctx context.Context, in schema.InsertEmergency) (schema.Emergency, error)
	UpdateEmergencyStatus(ctx context.Context, id uint, status string) (schema.Emergency, error)
	DeleteEmergency(ctx context.Context, id uint) error
}

// Gateway is the full persistence surface consumed by the route handlers
type Gateway interface {
	ConsumerStore
	InventoryStore
	AnalyticsStore
	EmergencyStore
}
