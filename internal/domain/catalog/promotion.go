package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RewardValueType determines how a promotion rule's reward value is
// applied to a product's base price
type RewardValueType string

const (
	RewardValueTypePercentage RewardValueType = "percentage"
	RewardValueTypeFixed      RewardValueType = "fixed"
)

// IsValid checks if the value is a valid RewardValueType
func (t RewardValueType) IsValid() bool {
	return t == RewardValueTypePercentage || t == RewardValueTypeFixed
}

// ProductIDList is a jsonb-stored list of product ids targeted by a
// promotion rule's catalogue predicate
type ProductIDList []uuid.UUID

// Value implements driver.Valuer for jsonb storage
func (l ProductIDList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for jsonb storage
func (l *ProductIDList) Scan(value interface{}) error {
	if value == nil {
		*l = ProductIDList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into ProductIDList", value)
		}
	}
	if len(bytes) == 0 {
		*l = ProductIDList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// PromotionRule targets a set of products and carries the reward
// applied to their base price
type PromotionRule struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PromotionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name        string          `gorm:"type:varchar(255)"`
	RewardType  RewardValueType `gorm:"type:varchar(20);not null"`
	RewardValue decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	ProductIDs  ProductIDList   `gorm:"type:jsonb"`
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// TableName returns the table name for GORM
func (PromotionRule) TableName() string {
	return "promotion_rules"
}

// AppliesTo reports whether the rule targets the given product
func (r *PromotionRule) AppliesTo(productID uuid.UUID) bool {
	for _, id := range r.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Discount returns the amount to subtract from the given base price.
// The result is clamped so the discounted price never goes negative.
func (r *PromotionRule) Discount(basePrice decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch r.RewardType {
	case RewardValueTypePercentage:
		discount = basePrice.Mul(r.RewardValue).Div(decimal.NewFromInt(100))
	case RewardValueTypeFixed:
		discount = r.RewardValue
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(basePrice) {
		return basePrice
	}
	return discount
}

// Promotion groups rules that discount catalogue products for a time window
type Promotion struct {
	shared.BaseAggregateRoot
	Name      string           `gorm:"type:varchar(255);not null"`
	StartDate time.Time        `gorm:"not null"`
	EndDate   *time.Time       `gorm:"index"`
	Rules     []*PromotionRule `gorm:"foreignKey:PromotionID"`
}

// TableName returns the table name for GORM
func (Promotion) TableName() string {
	return "promotions"
}

// NewPromotion creates a new promotion starting at the given time
func NewPromotion(name string, startDate time.Time) (*Promotion, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Promotion name cannot be empty")
	}
	return &Promotion{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		StartDate:         startDate,
	}, nil
}

// AddRule attaches a rule to the promotion
func (p *Promotion) AddRule(name string, rewardType RewardValueType, rewardValue decimal.Decimal, productIDs []uuid.UUID) (*PromotionRule, error) {
	if !rewardType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REWARD_TYPE", "Reward type must be percentage or fixed")
	}
	if rewardValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_REWARD_VALUE", "Reward value cannot be negative")
	}

	now := time.Now()
	rule := &PromotionRule{
		ID:          uuid.New(),
		PromotionID: p.ID,
		Name:        name,
		RewardType:  rewardType,
		RewardValue: rewardValue,
		ProductIDs:  productIDs,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	p.Rules = append(p.Rules, rule)
	p.ModifiedAt = now
	p.IncrementVersion()

	return rule, nil
}

// IsActiveAt reports whether the promotion is in effect at the given time
func (p *Promotion) IsActiveAt(at time.Time) bool {
	if at.Before(p.StartDate) {
		return false
	}
	if p.EndDate != nil && at.After(*p.EndDate) {
		return false
	}
	return true
}

// ProductIDs returns the union of product ids targeted by the
// promotion's rules, deduplicated in rule order
func (p *Promotion) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, rule := range p.Rules {
		for _, id := range rule.ProductIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// BestDiscount returns the largest discount any rule grants for the
// given product and base price
func (p *Promotion) BestDiscount(productID uuid.UUID, basePrice decimal.Decimal) decimal.Decimal {
	best := decimal.Zero
	for _, rule := range p.Rules {
		if !rule.AppliesTo(productID) {
			continue
		}
		if d := rule.Discount(basePrice); d.GreaterThan(best) {
			best = d
		}
	}
	return best
}
