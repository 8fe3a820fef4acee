package catalog

import (
	"strings"
	"time"

	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a sellable product in the catalog
// It is the aggregate root for pricing and search indexing operations
type Product struct {
	shared.BaseAggregateRoot
	Slug             string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name             string          `gorm:"type:varchar(250);not null"`
	Description      string          `gorm:"type:text"`
	Currency         string          `gorm:"type:varchar(3);not null"`
	BasePrice        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"` // Undiscounted price
	DiscountedPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"` // Price after promotions
	SearchVector     string          `gorm:"type:text"`
	SearchIndexDirty bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product. The discounted price starts equal to
// the base price and the search index is marked dirty for the next
// indexing run.
func NewProduct(slug, name, currency string, basePrice decimal.Decimal) (*Product, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if basePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              strings.ToLower(slug),
		Name:              name,
		Currency:          currency,
		BasePrice:         basePrice,
		DiscountedPrice:   basePrice,
		SearchIndexDirty:  true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information and flags the search
// index for rebuilding
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.SearchIndexDirty = true
	p.ModifiedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetBasePrice updates the undiscounted price. The discounted price is
// left untouched; the pricing task recomputes it from active promotions.
func (p *Product) SetBasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}

	p.BasePrice = price
	p.ModifiedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ApplyDiscountedPrice stores a freshly computed discounted price.
// Returns true if the stored value actually changed, so callers can
// skip writes for unchanged products.
func (p *Product) ApplyDiscountedPrice(price decimal.Decimal) (bool, error) {
	if price.IsNegative() {
		return false, shared.NewDomainError("INVALID_PRICE", "Discounted price cannot be negative")
	}
	if p.DiscountedPrice.Equal(price) {
		return false, nil
	}

	old := p.DiscountedPrice
	p.DiscountedPrice = price
	p.ModifiedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductDiscountedPriceChangedEvent(p, old))

	return true, nil
}

// MarkSearchIndexDirty flags the product for the next search indexing run
func (p *Product) MarkSearchIndexDirty() {
	p.SearchIndexDirty = true
	p.ModifiedAt = time.Now()
}

// SetSearchVector stores the rebuilt search document and clears the
// dirty flag
func (p *Product) SetSearchVector(vector string) {
	p.SearchVector = vector
	p.SearchIndexDirty = false
	p.ModifiedAt = time.Now()
}

// validateSlug validates the product slug
func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot be empty")
	}
	if len(slug) > 255 {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot exceed 255 characters")
	}
	for _, r := range slug {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SLUG", "Product slug can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 250 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 250 characters")
	}
	return nil
}
