package persistence

import (
	"context"

	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionEventRepository implements payment.TransactionEventRepository
// using GORM. Events are append-only; there is no update or delete path.
type GormTransactionEventRepository struct {
	db *gorm.DB
}

// NewGormTransactionEventRepository creates a new GormTransactionEventRepository
func NewGormTransactionEventRepository(db *gorm.DB) *GormTransactionEventRepository {
	return &GormTransactionEventRepository{db: db}
}

// Create persists a new event. A unique-index violation on the psp
// reference column surfaces as payment.ErrDuplicateEventPSPReference.
func (r *GormTransactionEventRepository) Create(ctx context.Context, event *payment.TransactionEvent) error {
	var model models.TransactionEventModel
	model.FromDomain(event)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return payment.ErrDuplicateEventPSPReference
		}
		return err
	}
	return nil
}

// FindByTransactionID finds all events of a transaction, newest-first
func (r *GormTransactionEventRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*payment.TransactionEvent, error) {
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

// PSPReferenceExists reports whether any event already carries the reference
func (r *GormTransactionEventRepository) PSPReferenceExists(ctx context.Context, pspReference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionEventModel{}).
		Where("psp_reference = ?", pspReference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByTransactionID counts the events recorded for a transaction
func (r *GormTransactionEventRepository) CountByTransactionID(ctx context.Context, transactionID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionEventModel{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormTransactionEventRepository implements the domain interface
var _ payment.TransactionEventRepository = (*GormTransactionEventRepository)(nil)
