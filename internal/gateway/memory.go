package gateway

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tair/mediops/internal/schema"
)

// MemoryGateway implements Gateway in process memory. It backs the memory
// storage driver and the handler tests.
type MemoryGateway struct {
	mu  sync.RWMutex
	now func() time.Time

	nextID      uint
	consumers   map[uint]schema.Consumer
	inventory   map[uint]schema.InventoryItem
	analytics   []schema.AnalyticsSample
	emergencies map[uint]schema.Emergency
}

// MemoryOption configures a MemoryGateway
type MemoryOption func(*MemoryGateway)

// WithAnalytics preloads the read-only analytics samples
func WithAnalytics(samples ...schema.AnalyticsSample) MemoryOption {
	return func(g *MemoryGateway) {
		for _, s := range samples {
			if s.ID == 0 {
				g.nextID++
				s.ID = g.nextID
			}
			g.analytics = append(g.analytics, s)
		}
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) MemoryOption {
	return func(g *MemoryGateway) { g.now = now }
}

// NewMemoryGateway creates an empty in-memory gateway
func NewMemoryGateway(opts ...MemoryOption) *MemoryGateway {
	g := &MemoryGateway{
		now:         time.Now,
		consumers:   map[uint]schema.Consumer{},
		inventory:   map[uint]schema.InventoryItem{},
		emergencies: map[uint]schema.Emergency{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *MemoryGateway) id() uint {
	g.nextID++
	return g.nextID
}

func (g *MemoryGateway) timestamp() time.Time {
	return g.now().UTC().Truncate(time.Microsecond)
}

func (g *MemoryGateway) touch(prev time.Time) time.Time {
	next := g.timestamp()
	if !next.After(prev) {
		next = prev.Add(time.Microsecond)
	}
	return next
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// newestFirst orders by key desc, then id desc
func newestFirst[T any](items []T, key func(T) time.Time, id func(T) uint) {
	slices.SortFunc(items, func(a, b T) int {
		if c := key(b).Compare(key(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(b), id(a))
	})
}

func (g *MemoryGateway) ListConsumers(_ context.Context, filter ConsumerFilter) ([]schema.Consumer, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := []schema.Consumer{}
	for _, c := range g.consumers {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!containsFold(c.FirstName, filter.Search) &&
			!containsFold(c.LastName, filter.Search) &&
			!containsFold(c.Email, filter.Search) {
			continue
		}
		out = append(out, c)
	}
	newestFirst(out,
		func(c schema.Consumer) time.Time { return c.CreatedAt },
		func(c schema.Consumer) uint { return c.ID })
	return out, nil
}

func (g *MemoryGateway) GetConsumer(_ context.Context, id uint) (schema.Consumer, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, ok := g.consumers[id]
	if !ok {
		return schema.Consumer{}, ErrNotFound
	}
	return c, nil
}

func (g *MemoryGateway) CreateConsumer(_ context.Context, in schema.InsertConsumer) (schema.Consumer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := in.Consumer()
	c.ID = g.id()
	c.CreatedAt = g.timestamp()
	c.UpdatedAt = c.CreatedAt
	g.consumers[c.ID] = c
	return c, nil
}

func (g *MemoryGateway) UpdateConsumer(_ context.Context, id uint, in schema.UpdateConsumer) (schema.Consumer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.consumers[id]
	if !ok {
		return schema.Consumer{}, ErrNotFound
	}
	in.Apply(&c)
	c.UpdatedAt = g.touch(c.UpdatedAt)
	g.consumers[id] = c
	return c, nil
}

func (g *MemoryGateway) DeleteConsumer(_ context.Context, id uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.consumers[id]; !ok {
		return ErrNotFound
	}
	delete(g.consumers, id)
	return nil
}

func (g *MemoryGateway) ListInventory(_ context.Context, filter InventoryFilter) ([]schema.InventoryItem, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := []schema.InventoryItem{}
	for _, item := range g.inventory {
		if filter.Search != "" &&
			!containsFold(item.ProductName, filter.Search) &&
			!containsFold(item.SkuOrID, filter.Search) {
			continue
		}
		out = append(out, item)
	}
	newestFirst(out,
		func(i schema.InventoryItem) time.Time { return i.UpdatedAt },
		func(i schema.InventoryItem) uint { return i.ID })
	return out, nil
}

func (g *MemoryGateway) CreateInventoryItem(_ context.Context, in schema.InsertInventory) (schema.InventoryItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	item := in.Item()
	item.ID = g.id()
	item.UpdatedAt = g.timestamp()
	g.inventory[item.ID] = item
	return item, nil
}

func (g *MemoryGateway) UpdateInventoryItem(_ context.Context, id uint, in schema.UpdateInventory) (schema.InventoryItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	item, ok := g.inventory[id]
	if !ok {
		return schema.InventoryItem{}, ErrNotFound
	}
	in.Apply(&item)
	item.UpdatedAt = g.touch(item.UpdatedAt)
	g.inventory[id] = item
	return item, nil
}

func (g *MemoryGateway) DeleteInventoryItem(_ context.Context, id uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.inventory[id]; !ok {
		return ErrNotFound
	}
	delete(g.inventory, id)
	return nil
}

func (g *MemoryGateway) ListAnalytics(_ context.Context) ([]schema.AnalyticsSample, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := slices.Clone(g.analytics)
	if out == nil {
		out = []schema.AnalyticsSample{}
	}
	newestFirst(out,
		func(s schema.AnalyticsSample) time.Time { return s.Date.Time() },
		func(s schema.AnalyticsSample) uint { return s.ID })
	return out, nil
}

func (g *MemoryGateway) ListEmergencies(_ context.Context) ([]schema.Emergency, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := []schema.Emergency{}
	for _, e := range g.emergencies {
		out = append(out, e)
	}
	newestFirst(out,
		func(e schema.Emergency) time.Time { return e.Timestamp },
		func(e schema.Emergency) uint { return e.ID })
	return out, nil
}

func (g *MemoryGateway) CreateEmergency(_ context.Context, in schema.InsertEmergency) (schema.Emergency, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e := in.Emergency()
	e.ID = g.id()
	e.Timestamp = g.timestamp()
	g.emergencies[e.ID] = e
	return e, nil
}

func (g *MemoryGateway) UpdateEmergencyStatus(_ context.Context, id uint, status string) (schema.Emergency, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.emergencies[id]
	if !ok {
		return schema.Emergency{}, ErrNotFound
	}
	e.Status = status
	g.emergencies[id] = e
	return e, nil
}

func (g *MemoryGateway) DeleteEmergency(_ context.Context, id uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.emergencies[id]; !ok {
		return ErrNotFound
	}
	delete(g.emergencies, id)
	return nil
}

func (g *MemoryGateway) CountConsumers(_ context.Context) (int64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return int64(len(g.consumers)), nil
}

func (g *MemoryGateway) CountInventory(_ context.Context) (int64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return int64(len(g.inventory)), nil
}

// Ping always succeeds
func (g *MemoryGateway) Ping(context.Context) error { return nil }
