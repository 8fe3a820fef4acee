package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds products by their ids, in batches driven by the caller
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// FindSearchIndexDirty finds up to limit products flagged for
	// search reindexing, oldest modification first
	FindSearchIndexDirty(ctx context.Context, limit int) ([]*Product, error)

	// Save creates or updates a product with optimistic locking
	Save(ctx context.Context, product *Product) error

	// SaveAll persists a batch of products
	SaveAll(ctx context.Context, products []*Product) error
}

// PromotionRepository defines the interface for promotion persistence
type PromotionRepository interface {
	// FindByID finds a promotion by ID with its rules loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)

	// FindActiveForProduct finds promotions in effect at the given time
	// whose rules target the product
	FindActiveForProduct(ctx context.Context, productID uuid.UUID, at time.Time) ([]*Promotion, error)

	// Save creates or updates a promotion with its rules
	Save(ctx context.Context, promotion *Promotion) error
}
