package payment

import (
	"context"

	"github.com/as-ga/saleor/internal/domain/order"
	"github.com/as-ga/saleor/internal/domain/payment"
)

// TransactionScope provides transactional access to the repositories a
// transaction mutation touches. When a function is executed within a
// transaction scope, all repository operations will be part of the same
// database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a mutation
// writes within one transaction. All repositories returned share the same
// underlying database transaction.
//
// Aggregate boundary notes:
//   - TransactionRepo: repository for the TransactionItem aggregate root.
//   - EventRepo: append-only storage for transaction events. Events are
//     children of TransactionItem but have separate storage so the global
//     psp-reference unique constraint can live on their own table.
//   - OrderRepo / OrderEventRepo: the owning order's totals and narrative
//     log are written in the same unit of work so no observer can see a
//     ledger change without its order-side projections.
type TransactionalRepositories interface {
	// TransactionRepo returns the transaction repository scoped to the current transaction
	TransactionRepo() payment.TransactionRepository
	// EventRepo returns the transaction event repository scoped to the current transaction
	EventRepo() payment.TransactionEventRepository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
	// OrderEventRepo returns the order narrative repository scoped to the current transaction
	OrderEventRepo() order.EventRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	transactionRepo payment.TransactionRepository
	eventRepo       payment.TransactionEventRepository
	orderRepo       order.OrderRepository
	orderEventRepo  order.EventRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transactionRepo payment.TransactionRepository,
	eventRepo payment.TransactionEventRepository,
	orderRepo order.OrderRepository,
	orderEventRepo order.EventRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transactionRepo: transactionRepo,
		eventRepo:       eventRepo,
		orderRepo:       orderRepo,
		orderEventRepo:  orderEventRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransactionRepo returns the transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() payment.TransactionRepository {
	return s.transactionRepo
}

// EventRepo returns the transaction event repository.
func (s *NoOpTransactionScope) EventRepo() payment.TransactionEventRepository {
	return s.eventRepo
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// OrderEventRepo returns the order narrative repository.
func (s *NoOpTransactionScope) OrderEventRepo() order.EventRepository {
	return s.orderEventRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
