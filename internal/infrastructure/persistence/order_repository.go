package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/as-ga/saleor/internal/domain/order"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var ord order.Order
	if err := r.db.WithContext(ctx).First(&ord, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

// FindByNumber finds an order by its order number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var ord order.Order
	if err := r.db.WithContext(ctx).First(&ord, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

// Save creates or updates an order. Updates carry an optimistic version
// check: a write against a stale version touches zero rows and returns
// shared.ErrConcurrencyConflict.
func (r *GormOrderRepository) Save(ctx context.Context, ord *order.Order) error {
	var existing int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", ord.ID).
		Count(&existing).Error; err != nil {
		return err
	}

	if existing == 0 {
		return r.db.WithContext(ctx).Create(ord).Error
	}

	currentVersion := ord.Version
	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND version = ?", ord.ID, currentVersion).
		Updates(map[string]interface{}{
			"number":                  ord.Number,
			"currency":                ord.Currency,
			"total_authorized_amount": ord.TotalAuthorizedAmount,
			"total_charged_amount":    ord.TotalChargedAmount,
			"version":                 currentVersion + 1,
			"modified_at":             time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	ord.Version = currentVersion + 1
	return nil
}

// Ensure GormOrderRepository implements the domain interface
var _ order.OrderRepository = (*GormOrderRepository)(nil)

// GormOrderEventRepository implements order.EventRepository using GORM.
// Narrative entries are append-only.
type GormOrderEventRepository struct {
	db *gorm.DB
}

// NewGormOrderEventRepository creates a new GormOrderEventRepository
func NewGormOrderEventRepository(db *gorm.DB) *GormOrderEventRepository {
	return &GormOrderEventRepository{db: db}
}

// Create appends a narrative entry to an order
func (r *GormOrderEventRepository) Create(ctx context.Context, event *order.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByOrderID finds all narrative entries of an order, newest-first
func (r *GormOrderEventRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*order.Event, error) {
	var events []*order.Event
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Ensure GormOrderEventRepository implements the domain interface
var _ order.EventRepository = (*GormOrderEventRepository)(nil)
