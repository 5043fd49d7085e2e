// Package console computes the operator dashboard from a data source.
package console

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tair/mediops/internal/gateway"
	"github.com/tair/mediops/internal/schema"
)

// LowStockThreshold is the stock level at or below which an item counts as
// low on the dashboard. It does not read availabilityStatus.
const LowStockThreshold = 10

// Stats are the dashboard counters
type Stats struct {
	TotalConsumers  int `json:"totalConsumers" yaml:"totalConsumers"`
	ActiveConsumers int `json:"activeConsumers" yaml:"activeConsumers"`
	NewThisMonth    int `json:"newThisMonth" yaml:"newThisMonth"`
	LowStockItems   int `json:"lowStockItems" yaml:"lowStockItems"`
	OpenEmergencies int `json:"openEmergencies" yaml:"openEmergencies"`
}

// ComputeStats derives the counters. A consumer is new when it was created in
// the calendar month of now.
func ComputeStats(consumers []schema.Consumer, items []schema.InventoryItem, emergencies []schema.Emergency, now time.Time) Stats {
	stats := Stats{TotalConsumers: len(consumers)}

	year, month, _ := now.Date()
	for _, c := range consumers {
		if c.Status == schema.ConsumerStatusActive {
			stats.ActiveConsumers++
		}
		created := c.CreatedAt.In(now.Location())
		if created.Year() == year && created.Month() == month {
			stats.NewThisMonth++
		}
	}

	for _, item := range items {
		if item.StockQuantity <= LowStockThreshold {
			stats.LowStockItems++
		}
	}

	for _, e := range emergencies {
		if e.Status != schema.EmergencyResolved {
			stats.OpenEmergencies++
		}
	}

	return stats
}

// Lister is the read side of a data source the dashboard needs
type Lister interface {
	ListConsumers(ctx context.Context, filter gateway.ConsumerFilter) ([]schema.Consumer, error)
	ListInventory(ctx context.Context, filter gateway.InventoryFilter) ([]schema.InventoryItem, error)
	ListEmergencies(ctx context.Context) ([]schema.Emergency, error)
}

// LoadStats fetches the three listings concurrently and computes the counters
func LoadStats(ctx context.Context, src Lister, now time.Time) (Stats, error) {
	var (
		consumers   []schema.Consumer
		items       []schema.InventoryItem
		emergencies []schema.Emergency
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		consumers, err = src.ListConsumers(gctx, gateway.ConsumerFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		items, err = src.ListInventory(gctx, gateway.InventoryFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		emergencies, err = src.ListEmergencies(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	return ComputeStats(consumers, items, emergencies, now), nil
}
