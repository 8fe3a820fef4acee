package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/as-ga/saleor/internal/domain/catalog"
	"go.uber.org/zap"
)

// ProductsBatchSize caps how many dirty products one indexing pass rebuilds
const ProductsBatchSize = 300

// SearchTaskService rebuilds product search documents. Products flag
// themselves dirty on every content change; the periodic task drains the
// dirty set in batches and clears the flag as each document is stored.
type SearchTaskService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewSearchTaskService creates a new SearchTaskService
func NewSearchTaskService(productRepo catalog.ProductRepository, logger *zap.Logger) *SearchTaskService {
	return &SearchTaskService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// UpdateProductsSearchVector rebuilds search documents for every product
// currently flagged dirty, one batch at a time
func (s *SearchTaskService) UpdateProductsSearchVector(ctx context.Context) error {
	var total int
	for {
		products, err := s.productRepo.FindSearchIndexDirty(ctx, ProductsBatchSize)
		if err != nil {
			return fmt.Errorf("failed to load dirty products: %w", err)
		}
		if len(products) == 0 {
			break
		}

		for _, product := range products {
			product.SetSearchVector(buildSearchDocument(product))
		}
		if err := s.productRepo.SaveAll(ctx, products); err != nil {
			return fmt.Errorf("failed to save search vectors: %w", err)
		}
		total += len(products)

		if len(products) < ProductsBatchSize {
			break
		}
	}

	if total > 0 {
		s.logger.Info("product search vectors updated",
			zap.Int("products", total),
		)
	}
	return nil
}

// buildSearchDocument flattens the searchable product fields into one
// lowercased document
func buildSearchDocument(product *catalog.Product) string {
	parts := []string{product.Slug, product.Name}
	if product.Description != "" {
		parts = append(parts, product.Description)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
