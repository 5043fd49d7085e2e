package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tair/mediops/internal/schema"
)

// GormGateway implements Gateway on a relational database through GORM
type GormGateway struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormGateway creates a new GORM gateway
func NewGormGateway(db *gorm.DB) *GormGateway {
	return &GormGateway{db: db, now: time.Now}
}

// AutoMigrate creates or updates the entity tables
func (g *GormGateway) AutoMigrate() error {
	return g.db.AutoMigrate(
		&schema.Consumer{},
		&schema.InventoryItem{},
		&schema.AnalyticsSample{},
		&schema.Emergency{},
	)
}

// Ping checks database connectivity
func (g *GormGateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// timestamp returns the current instant at database precision
func (g *GormGateway) timestamp() time.Time {
	return g.now().UTC().Truncate(time.Microsecond)
}

// touch returns an update timestamp strictly after prev
func (g *GormGateway) touch(prev time.Time) time.Time {
	next := g.timestamp()
	if !next.After(prev) {
		next = prev.Add(time.Microsecond)
	}
	return next
}

func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)
	return "%" + escaped + "%"
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ListConsumers retrieves consumers, newest first
func (g *GormGateway) ListConsumers(ctx context.Context, filter ConsumerFilter) ([]schema.Consumer, error) {
	query := g.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")

	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", p, p, p)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	consumers := []schema.Consumer{}
	if err := query.Find(&consumers).Error; err != nil {
		return nil, fmt.Errorf("failed to list consumers: %w", err)
	}
	return consumers, nil
}

// GetConsumer retrieves a consumer by ID
func (g *GormGateway) GetConsumer(ctx context.Context, id uint) (schema.Consumer, error) {
	var c schema.Consumer
	if err := g.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return schema.Consumer{}, fmt.Errorf("failed to find consumer %d: %w", id, notFound(err))
	}
	return c, nil
}

// CreateConsumer inserts a consumer; createdAt and updatedAt are the same instant
func (g *GormGateway) CreateConsumer(ctx context.Context, in schema.InsertConsumer) (schema.Consumer, error) {
	c := in.Consumer()
	c.CreatedAt = g.timestamp()
	c.UpdatedAt = c.CreatedAt

	if err := g.db.WithContext(ctx).Create(&c).Error; err != nil {
		return schema.Consumer{}, fmt.Errorf("failed to create consumer: %w", err)
	}
	return c, nil
}

// UpdateConsumer merges the set fields onto the stored row
func (g *GormGateway) UpdateConsumer(ctx context.Context, id uint, in schema.UpdateConsumer) (schema.Consumer, error) {
	var c schema.Consumer
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err)
		}
		in.Apply(&c)
		c.UpdatedAt = g.touch(c.UpdatedAt)
		return tx.Save(&c).Error
	})
	if err != nil {
		return schema.Consumer{}, fmt.Errorf("failed to update consumer %d: %w", id, err)
	}
	return c, nil
}

// DeleteConsumer hard deletes a consumer
func (g *GormGateway) DeleteConsumer(ctx context.Context, id uint) error {
	return g.delete(ctx, &schema.Consumer{}, "consumer", id)
}

// ListInventory retrieves stock items, most recently updated first
func (g *GormGateway) ListInventory(ctx context.Context, filter InventoryFilter) ([]schema.InventoryItem, error) {
	query := g.db.WithContext(ctx).Order("updated_at DESC").Order("id DESC")

	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("product_name ILIKE ? OR sku_or_id ILIKE ?", p, p)
	}

	items := []schema.InventoryItem{}
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// CreateInventoryItem inserts a stock item
func (g *GormGateway) CreateInventoryItem(ctx context.Context, in schema.InsertInventory) (schema.InventoryItem, error) {
	item := in.Item()
	item.UpdatedAt = g.timestamp()

	if err := g.db.WithContext(ctx).Create(&item).Error; err != nil {
		return schema.InventoryItem{}, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return item, nil
}

// UpdateInventoryItem merges the set fields onto the stored row
func (g *GormGateway) UpdateInventoryItem(ctx context.Context, id uint, in schema.UpdateInventory) (schema.InventoryItem, error) {
	var item schema.InventoryItem
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			return notFound(err)
		}
		in.Apply(&item)
		item.UpdatedAt = g.touch(item.UpdatedAt)
		return tx.Save(&item).Error
	})
	if err != nil {
		return schema.InventoryItem{}, fmt.Errorf("failed to update inventory item %d: %w", id, err)
	}
	return item, nil
}

// DeleteInventoryItem hard deletes a stock item
func (g *GormGateway) DeleteInventoryItem(ctx context.Context, id uint) error {
	return g.delete(ctx, &schema.InventoryItem{}, "inventory item", id)
}

// ListAnalytics retrieves samples, newest date first
func (g *GormGateway) ListAnalytics(ctx context.Context) ([]schema.AnalyticsSample, error) {
	samples := []schema.AnalyticsSample{}
	if err := g.db.WithContext(ctx).Order("date DESC").Order("id DESC").Find(&samples).Error; err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}
	return samples, nil
}

// ListEmergencies retrieves emergency requests, newest first
func (g *GormGateway) ListEmergencies(ctx context.Context) ([]schema.Emergency, error) {
	emergencies := []schema.Emergency{}
	if err := g.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").Find(&emergencies).Error; err != nil {
		return nil, fmt.Errorf("failed to list emergencies: %w", err)
	}
	return emergencies, nil
}

// CreateEmergency inserts an emergency request stamped with the current time
func (g *GormGateway) CreateEmergency(ctx context.Context, in schema.InsertEmergency) (schema.Emergency, error) {
	e := in.Emergency()
	e.Timestamp = g.timestamp()

	if err := g.db.WithContext(ctx).Create(&e).Error; err != nil {
		return schema.Emergency{}, fmt.Errorf("failed to create emergency: %w", err)
	}
	return e, nil
}

// UpdateEmergencyStatus overwrites the status from any previous value
func (g *GormGateway) UpdateEmergencyStatus(ctx context.Context, id uint, status string) (schema.Emergency, error) {
	var e schema.Emergency
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, id).Error; err != nil {
			return notFound(err)
		}
		e.Status = status
		return tx.Model(&e).Update("status", status).Error
	})
	if err != nil {
		return schema.Emergency{}, fmt.Errorf("failed to update emergency %d: %w", id, err)
	}
	return e, nil
}

// DeleteEmergency hard deletes an emergency request
func (g *GormGateway) DeleteEmergency(ctx context.Context, id uint) error {
	return g.delete(ctx, &schema.Emergency{}, "emergency", id)
}

func (g *GormGateway) delete(ctx context.Context, model any, entity string, id uint) error {
	result := g.db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s %d: %w", entity, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete %s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}

// CountConsumers returns the number of stored consumers
func (g *GormGateway) CountConsumers(ctx context.Context) (int64, error) {
	var n int64
	if err := g.db.WithContext(ctx).Model(&schema.Consumer{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count consumers: %w", err)
	}
	return n, nil
}

// CountInventory returns the number of stored stock items
func (g *GormGateway) CountInventory(ctx context.Context) (int64, error) {
	var n int64
	if err := g.db.WithContext(ctx).Model(&schema.InventoryItem{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return n, nil
}
