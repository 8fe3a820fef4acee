package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/as-ga/saleor/internal/domain/catalog"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPromotionRepository implements catalog.PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByID finds a promotion by its ID with rules loaded
func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Promotion, error) {
	var promotion catalog.Promotion
	if err := r.db.WithContext(ctx).
		Preload("Rules").
		First(&promotion, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &promotion, nil
}

// FindActiveForProduct finds promotions in effect at the given time whose
// rules target the product. The product-id predicate lives in a jsonb
// column, so candidate rows are narrowed by the time window in SQL and the
// predicate is applied in memory.
func (r *GormPromotionRepository) FindActiveForProduct(ctx context.Context, productID uuid.UUID, at time.Time) ([]*catalog.Promotion, error) {
	var candidates []*catalog.Promotion
	if err := r.db.WithContext(ctx).
		Preload("Rules").
		Where("start_date <= ? AND (end_date IS NULL OR end_date >= ?)", at, at).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	var result []*catalog.Promotion
	for _, promotion := range candidates {
		for _, rule := range promotion.Rules {
			if rule.AppliesTo(productID) {
				result = append(result, promotion)
				break
			}
		}
	}
	return result, nil
}

// Save creates or updates a promotion together with its rules
func (r *GormPromotionRepository) Save(ctx context.Context, promotion *catalog.Promotion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Rules").Save(promotion).Error; err != nil {
			return err
		}
		for _, rule := range promotion.Rules {
			if err := tx.Save(rule).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormPromotionRepository implements the domain interface
var _ catalog.PromotionRepository = (*GormPromotionRepository)(nil)
