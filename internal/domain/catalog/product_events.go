package catalog

import (
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the catalog domain
const (
	ProductCreatedEventType                = "ProductCreated"
	ProductDiscountedPriceChangedEventType = "ProductDiscountedPriceChanged"
)

// ProductCreatedEvent is raised when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Slug     string
	Name     string
	Currency string
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ProductCreatedEventType, "Product", product.ID),
		Slug:            product.Slug,
		Name:            product.Name,
		Currency:        product.Currency,
	}
}

// ProductDiscountedPriceChangedEvent is raised when the pricing task
// stores a new discounted price for a product
type ProductDiscountedPriceChangedEvent struct {
	shared.BaseDomainEvent
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
	Currency string
}

// NewProductDiscountedPriceChangedEvent creates a new ProductDiscountedPriceChangedEvent
func NewProductDiscountedPriceChangedEvent(product *Product, oldPrice decimal.Decimal) *ProductDiscountedPriceChangedEvent {
	return &ProductDiscountedPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ProductDiscountedPriceChangedEventType, "Product", product.ID),
		OldPrice:        oldPrice,
		NewPrice:        product.DiscountedPrice,
		Currency:        product.Currency,
	}
}
