package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/as-ga/saleor/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements payment.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID with events loaded newest-first
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.TransactionItem, error) {
	var model models.TransactionItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	transaction := model.ToDomain()
	events, err := r.loadEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	transaction.Events = events
	return transaction, nil
}

// FindByOrderID finds all transactions belonging to an order
func (r *GormTransactionRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*payment.TransactionItem, error) {
	var rows []models.TransactionItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	transactions := make([]*payment.TransactionItem, 0, len(rows))
	for i := range rows {
		transaction := rows[i].ToDomain()
		events, err := r.loadEvents(ctx, transaction.ID)
		if err != nil {
			return nil, err
		}
		transaction.Events = events
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}

// Save creates or updates a transaction. Updates carry an optimistic
// version check: a write against a stale version touches zero rows and
// returns shared.ErrConcurrencyConflict. A unique-index violation on the
// psp reference column surfaces as payment.ErrDuplicatePSPReference.
func (r *GormTransactionRepository) Save(ctx context.Context, transaction *payment.TransactionItem) error {
	var model models.TransactionItemModel
	model.FromDomain(transaction)

	var existing int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionItemModel{}).
		Where("id = ?", transaction.ID).
		Count(&existing).Error; err != nil {
		return err
	}

	if existing == 0 {
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				return payment.ErrDuplicatePSPReference
			}
			return err
		}
		return nil
	}

	currentVersion := transaction.Version
	result := r.db.WithContext(ctx).
		Model(&models.TransactionItemModel{}).
		Where("id = ? AND version = ?", transaction.ID, currentVersion).
		Updates(map[string]interface{}{
			"app_id":            model.AppID,
			"user_id":           model.UserID,
			"psp_reference":     model.PSPReference,
			"status":            model.Status,
			"type":              model.Type,
			"currency":          model.Currency,
			"authorized_value":  model.AuthorizedValue,
			"charged_value":     model.ChargedValue,
			"voided_value":      model.VoidedValue,
			"refunded_value":    model.RefundedValue,
			"available_actions": model.AvailableActions,
			"external_url":      model.ExternalURL,
			"metadata":          model.Metadata,
			"private_metadata":  model.PrivateMetadata,
			"version":           currentVersion + 1,
			"modified_at":       time.Now(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return payment.ErrDuplicatePSPReference
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	transaction.Version = currentVersion + 1
	return nil
}

// PSPReferenceExists reports whether another transaction already carries
// the reference
func (r *GormTransactionRepository) PSPReferenceExists(ctx context.Context, pspReference string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionItemModel{}).
		Where("psp_reference = ? AND id <> ?", pspReference, excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumAmountsByOrder sums authorized and charged amounts across all
// transactions of an order
func (r *GormTransactionRepository) SumAmountsByOrder(ctx context.Context, orderID uuid.UUID) (payment.OrderTotals, error) {
	var row struct {
		Authorized decimal.Decimal
		Charged    decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.TransactionItemModel{}).
		Select("COALESCE(SUM(authorized_value), 0) AS authorized, COALESCE(SUM(charged_value), 0) AS charged").
		Where("order_id = ?", orderID).
		Scan(&row).Error
	if err != nil {
		return payment.OrderTotals{}, err
	}
	return payment.OrderTotals{Authorized: row.Authorized, Charged: row.Charged}, nil
}

// Delete removes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// loadEvents loads a transaction's events most-recent-first
func (r *GormTransactionRepository) loadEvents(ctx context.Context, transactionID uuid.UUID) ([]*payment.TransactionEvent, error) {
	var rows []models.TransactionEventModel
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]*payment.TransactionEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].ToDomain())
	}
	return events, nil
}

// isUniqueViolation detects unique-constraint failures across the drivers
// used in production (postgres) and tests (sqlite)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// Ensure GormTransactionRepository implements the domain interface
var _ payment.TransactionRepository = (*GormTransactionRepository)(nil)
