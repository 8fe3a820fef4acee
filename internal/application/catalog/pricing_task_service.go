package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/as-ga/saleor/internal/domain/catalog"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DiscountedProductBatch caps how many products one pricing pass loads at
// a time when a promotion touches a large catalogue.
const DiscountedProductBatch = 100

// PricingTaskService recomputes stored discounted prices from active
// promotions. It backs the background pricing tasks; a missing product or
// promotion is logged and skipped rather than failed, since the referenced
// row may have been deleted between enqueue and run.
type PricingTaskService struct {
	productRepo   catalog.ProductRepository
	promotionRepo catalog.PromotionRepository
	logger        *zap.Logger
}

// NewPricingTaskService creates a new PricingTaskService
func NewPricingTaskService(
	productRepo catalog.ProductRepository,
	promotionRepo catalog.PromotionRepository,
	logger *zap.Logger,
) *PricingTaskService {
	return &PricingTaskService{
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		logger:        logger,
	}
}

// UpdateProductDiscountedPrice recomputes one product's discounted price
func (s *PricingTaskService) UpdateProductDiscountedPrice(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn(fmt.Sprintf("Cannot find product with id: %s", productID))
			return nil
		}
		return fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	return s.updateDiscountedPrices(ctx, []*catalog.Product{product})
}

// UpdateDiscountedPricesOfPromotion recomputes discounted prices for every
// product targeted by the promotion's rules, in batches of
// DiscountedProductBatch.
func (s *PricingTaskService) UpdateDiscountedPricesOfPromotion(ctx context.Context, promotionID uuid.UUID) error {
	promotion, err := s.promotionRepo.FindByID(ctx, promotionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn(fmt.Sprintf("Cannot find promotion with id: %s", promotionID))
			return nil
		}
		return fmt.Errorf("failed to load promotion %s: %w", promotionID, err)
	}

	ids := promotion.ProductIDs()
	for start := 0; start < len(ids); start += DiscountedProductBatch {
		end := start + DiscountedProductBatch
		if end > len(ids) {
			end = len(ids)
		}
		products, err := s.productRepo.FindByIDs(ctx, ids[start:end])
		if err != nil {
			return fmt.Errorf("failed to load products for promotion %s: %w", promotionID, err)
		}
		if err := s.updateDiscountedPrices(ctx, products); err != nil {
			return err
		}
	}
	return nil
}

// updateDiscountedPrices recomputes and stores discounted prices for the
// given products, writing only the ones whose price actually changed
func (s *PricingTaskService) updateDiscountedPrices(ctx context.Context, products []*catalog.Product) error {
	now := time.Now()
	var changed []*catalog.Product

	for _, product := range products {
		promotions, err := s.promotionRepo.FindActiveForProduct(ctx, product.ID, now)
		if err != nil {
			return fmt.Errorf("failed to load promotions for product %s: %w", product.ID, err)
		}

		price := product.BasePrice
		for _, promotion := range promotions {
			discounted := product.BasePrice.Sub(promotion.BestDiscount(product.ID, product.BasePrice))
			if discounted.LessThan(price) {
				price = discounted
			}
		}

		updated, err := product.ApplyDiscountedPrice(price)
		if err != nil {
			return err
		}
		if updated {
			changed = append(changed, product)
		}
	}

	if len(changed) == 0 {
		return nil
	}
	if err := s.productRepo.SaveAll(ctx, changed); err != nil {
		return fmt.Errorf("failed to save discounted prices: %w", err)
	}

	s.logger.Info("discounted prices updated",
		zap.Int("products", len(changed)),
	)
	return nil
}
