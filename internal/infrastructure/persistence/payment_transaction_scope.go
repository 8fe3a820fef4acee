package persistence

import (
	"context"

	apppayment "github.com/as-ga/saleor/internal/application/payment"
	"github.com/as-ga/saleor/internal/domain/order"
	"github.com/as-ga/saleor/internal/domain/payment"
	"gorm.io/gorm"
)

// GormPaymentTransactionScope implements the payment TransactionScope using
// GORM transactions. It provides atomic execution of the ledger update, the
// event append, the order note and the totals recompute.
type GormPaymentTransactionScope struct {
	db *gorm.DB
}

// NewGormPaymentTransactionScope creates a new GormPaymentTransactionScope.
func NewGormPaymentTransactionScope(db *gorm.DB) *GormPaymentTransactionScope {
	return &GormPaymentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormPaymentTransactionScope) Execute(ctx context.Context, fn func(repos apppayment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormPaymentRepositories{tx: tx}
		return fn(repos)
	})
}

// gormPaymentRepositories provides access to all repositories within a transaction.
type gormPaymentRepositories struct {
	tx *gorm.DB
}

// TransactionRepo returns the transaction repository scoped to the current transaction.
func (r *gormPaymentRepositories) TransactionRepo() payment.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// EventRepo returns the transaction event repository scoped to the current transaction.
func (r *gormPaymentRepositories) EventRepo() payment.TransactionEventRepository {
	return NewGormTransactionEventRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormPaymentRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// OrderEventRepo returns the order narrative repository scoped to the current transaction.
func (r *gormPaymentRepositories) OrderEventRepo() order.EventRepository {
	return NewGormOrderEventRepository(r.tx)
}

// Ensure GormPaymentTransactionScope implements TransactionScope
var _ apppayment.TransactionScope = (*GormPaymentTransactionScope)(nil)

// Ensure gormPaymentRepositories implements TransactionalRepositories
var _ apppayment.TransactionalRepositories = (*gormPaymentRepositories)(nil)
