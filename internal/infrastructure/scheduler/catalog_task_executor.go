package scheduler

import (
	"context"

	appcatalog "github.com/as-ga/saleor/internal/application/catalog"
)

// CatalogTaskExecutor executes catalog background tasks against the
// application services
type CatalogTaskExecutor struct {
	pricing *appcatalog.PricingTaskService
	search  *appcatalog.SearchTaskService
}

// NewCatalogTaskExecutor creates a new catalog task executor
func NewCatalogTaskExecutor(pricing *appcatalog.PricingTaskService, search *appcatalog.SearchTaskService) *CatalogTaskExecutor {
	return &CatalogTaskExecutor{
		pricing: pricing,
		search:  search,
	}
}

// Execute dispatches the task to the matching application service
func (e *CatalogTaskExecutor) Execute(ctx context.Context, task *Task) error {
	switch task.Type {
	case TaskTypeProductDiscountedPrice:
		if task.ProductID == nil {
			return ErrMissingTaskTarget
		}
		return e.pricing.UpdateProductDiscountedPrice(ctx, *task.ProductID)
	case TaskTypePromotionDiscountedPrices:
		if task.PromotionID == nil {
			return ErrMissingTaskTarget
		}
		return e.pricing.UpdateDiscountedPricesOfPromotion(ctx, *task.PromotionID)
	case TaskTypeProductsSearchVector:
		return e.search.UpdateProductsSearchVector(ctx)
	default:
		return ErrInvalidTaskType
	}
}

// Ensure CatalogTaskExecutor implements TaskExecutor
var _ TaskExecutor = (*CatalogTaskExecutor)(nil)
