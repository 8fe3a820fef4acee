package order

import (
	"strings"

	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the payment-facing view of an order. The totals are
// projections over the order's transaction ledger and are always
// recomputed by full re-summation, never patched by deltas.
type Order struct {
	shared.BaseAggregateRoot
	Number                string          `gorm:"uniqueIndex;not null"`
	Currency              string          `gorm:"size:3;not null"`
	TotalAuthorizedAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	TotalChargedAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
}

// NewOrder creates a new order shell with zero totals
func NewOrder(number, currency string) (*Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "order number cannot be empty")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "currency must be a 3-letter ISO code")
	}
	return &Order{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		Number:                number,
		Currency:              currency,
		TotalAuthorizedAmount: decimal.Zero,
		TotalChargedAmount:    decimal.Zero,
	}, nil
}

// SetTotalAuthorized replaces the authorized total with a freshly
// summed value
func (o *Order) SetTotalAuthorized(total decimal.Decimal) {
	o.TotalAuthorizedAmount = total
}

// SetTotalCharged replaces the charged total with a freshly summed value
func (o *Order) SetTotalCharged(total decimal.Decimal) {
	o.TotalChargedAmount = total
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

var _ shared.AggregateRoot = (*Order)(nil)

// EventTypeTransactionEvent marks narrative entries produced when a
// transaction event is recorded against the order.
const EventTypeTransactionEvent = "TRANSACTION_EVENT"

// Event is a narrative log entry attached to an order. Entries are
// append-only and attributed to the acting app or user.
type Event struct {
	shared.BaseEntity
	OrderID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type       string          `gorm:"size:64;not null"`
	Parameters EventParameters `gorm:"type:jsonb"`
	AppID      *uuid.UUID      `gorm:"type:uuid;index"`
	UserID     *uuid.UUID      `gorm:"type:uuid;index"`
}

// NewTransactionEventNote creates a TRANSACTION_EVENT narrative entry.
// The status stored in the parameters is already lowercased by the
// producing domain event.
func NewTransactionEventNote(orderID uuid.UUID, message, reference, status string, appID, userID *uuid.UUID) *Event {
	params := EventParameters{}
	if message != "" {
		params["message"] = message
	}
	if reference != "" {
		params["reference"] = reference
	}
	if status != "" {
		params["status"] = status
	}
	return &Event{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Type:       EventTypeTransactionEvent,
		Parameters: params,
		AppID:      appID,
		UserID:     userID,
	}
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "order_events"
}
