package operator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM operator repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// AutoMigrate creates or updates the operators table
func (r *GormRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&Operator{})
}

// Create inserts a new operator into the database
func (r *GormRepository) Create(ctx context.Context, op *Operator) error {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

// FindByID retrieves an operator by ID
func (r *GormRepository) FindByID(ctx context.Context, id uint) (*Operator, error) {
	var op Operator
	if err := r.db.WithContext(ctx).First(&op, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find operator: %w", err)
	}
	return &op, nil
}

// FindByUsername retrieves an operator by username
func (r *GormRepository) FindByUsername(ctx context.Context, username string) (*Operator, error) {
	var op Operator
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find operator: %w", err)
	}
	return &op, nil
}

// MemoryRepository implements Repository in process memory
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]Operator
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[uint]Operator{}}
}

func (r *MemoryRepository) Create(_ context.Context, op *Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Username == op.Username {
			return fmt.Errorf("failed to create operator: username %q already exists", op.Username)
		}
	}
	r.nextID++
	op.ID = r.nextID
	r.byID[op.ID] = *op
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id uint) (*Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &op, nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, op := range r.byID {
		if op.Username == username {
			return &op, nil
		}
	}
	return nil, ErrNotFound
}
