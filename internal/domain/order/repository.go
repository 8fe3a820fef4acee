package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNumber finds an order by its order number
	FindByNumber(ctx context.Context, number string) (*Order, error)

	// Save creates or updates an order with optimistic locking
	Save(ctx context.Context, order *Order) error
}

// EventRepository defines the interface for order narrative entries
type EventRepository interface {
	// Create appends a narrative entry to an order
	Create(ctx context.Context, event *Event) error

	// FindByOrderID finds all narrative entries of an order, newest-first
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Event, error)
}
