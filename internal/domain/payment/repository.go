package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderTotals aggregates the sums needed to recompute an order's
// authorized and charged amounts from its transaction ledger.
type OrderTotals struct {
	Authorized decimal.Decimal
	Charged    decimal.Decimal
}

// TransactionRepository defines the interface for transaction item persistence
type TransactionRepository interface {
	// FindByID finds a transaction item by ID, events loaded newest-first
	FindByID(ctx context.Context, id uuid.UUID) (*TransactionItem, error)

	// FindByOrderID finds all transaction items belonging to an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*TransactionItem, error)

	// Save creates or updates a transaction item with optimistic locking.
	// Returns ErrDuplicatePSPReference when the psp reference is already
	// taken by another transaction.
	Save(ctx context.Context, transaction *TransactionItem) error

	// PSPReferenceExists reports whether any transaction other than
	// excludeID already carries the given psp reference
	PSPReferenceExists(ctx context.Context, pspReference string, excludeID uuid.UUID) (bool, error)

	// SumAmountsByOrder sums authorized and charged amounts across all
	// transactions of an order
	SumAmountsByOrder(ctx context.Context, orderID uuid.UUID) (OrderTotals, error)

	// Delete removes a transaction item
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionEventRepository defines the interface for transaction event persistence
type TransactionEventRepository interface {
	// Create persists a new transaction event. Returns
	// ErrDuplicateEventPSPReference when the psp reference is already
	// used by another event.
	Create(ctx context.Context, event *TransactionEvent) error

	// FindByTransactionID finds all events of a transaction, newest-first
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*TransactionEvent, error)

	// PSPReferenceExists reports whether any event already carries the
	// given psp reference
	PSPReferenceExists(ctx context.Context, pspReference string) (bool, error)

	// CountByTransactionID counts the events recorded for a transaction
	CountByTransactionID(ctx context.Context, transactionID uuid.UUID) (int64, error)
}
