package payment

import (
	"strings"

	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionEventRecordedEventType is the type name of the event raised
// when a transaction event is appended.
const TransactionEventRecordedEventType = "TransactionEventRecorded"

// TransactionEventRecordedEvent is raised when an event is appended to a
// transaction's history. Both the transaction's own event list and the
// owning order's narrative log are projections of this single fact.
type TransactionEventRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID       `json:"order_id"`
	TransactionID   uuid.UUID       `json:"transaction_id"`
	RecordedEventID uuid.UUID       `json:"event_id"`
	Name            string          `json:"name"`
	PSPReference    string          `json:"psp_reference"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	RequestorKind   RequestorKind   `json:"requestor_kind"`
	AppID           *uuid.UUID      `json:"app_id,omitempty"`
	UserID          *uuid.UUID      `json:"user_id,omitempty"`
}

// EventType returns the event type name
func (e *TransactionEventRecordedEvent) EventType() string {
	return TransactionEventRecordedEventType
}

// NewTransactionEventRecordedEvent creates a new TransactionEventRecordedEvent.
// The status is lowercased here so every projection renders it the same way.
func NewTransactionEventRecordedEvent(t *TransactionItem, event *TransactionEvent, requestor Requestor) *TransactionEventRecordedEvent {
	e := &TransactionEventRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TransactionEventRecordedEventType, "TransactionItem", t.ID),
		OrderID:         t.OrderID,
		TransactionID:   t.ID,
		RecordedEventID: event.ID,
		Name:            event.Name,
		Status:          strings.ToLower(event.Status.String()),
		Amount:          event.AmountValue,
		Currency:        event.Currency,
		RequestorKind:   requestor.Kind,
	}
	if event.PSPReference != nil {
		e.PSPReference = *event.PSPReference
	}
	switch requestor.Kind {
	case RequestorKindApp:
		appID := requestor.AppID
		e.AppID = &appID
	case RequestorKindUser:
		userID := requestor.UserID
		e.UserID = &userID
	}
	return e
}

// Ensure TransactionEventRecordedEvent implements shared.DomainEvent
var _ shared.DomainEvent = (*TransactionEventRecordedEvent)(nil)
