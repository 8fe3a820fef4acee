package payment

import (
	"fmt"
	"strings"

	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionEventStatus represents the status a transaction event documents
type TransactionEventStatus string

const (
	TransactionEventStatusPending TransactionEventStatus = "PENDING"
	TransactionEventStatusSuccess TransactionEventStatus = "SUCCESS"
	TransactionEventStatusFailure TransactionEventStatus = "FAILURE"
	TransactionEventStatusRequest TransactionEventStatus = "REQUEST"
)

// IsValid checks if the status is a valid TransactionEventStatus
func (s TransactionEventStatus) IsValid() bool {
	switch s {
	case TransactionEventStatusPending, TransactionEventStatusSuccess,
		TransactionEventStatusFailure, TransactionEventStatusRequest:
		return true
	}
	return false
}

// String returns the string representation of TransactionEventStatus
func (s TransactionEventStatus) String() string {
	return string(s)
}

// ParseTransactionEventStatus converts an API enum name to a status
func ParseTransactionEventStatus(name string) (TransactionEventStatus, error) {
	status := TransactionEventStatus(strings.ToUpper(name))
	if !status.IsValid() {
		return "", fmt.Errorf("unknown transaction event status: %s", name)
	}
	return status, nil
}

// TransactionEventActionType describes the provider action an event
// documents. Values are stored lowercase.
type TransactionEventActionType string

const (
	TransactionEventActionAuthorize TransactionEventActionType = "authorize"
	TransactionEventActionCharge    TransactionEventActionType = "charge"
	TransactionEventActionVoid      TransactionEventActionType = "void"
	TransactionEventActionRefund    TransactionEventActionType = "refund"
)

// IsValid checks if the action type is valid
func (t TransactionEventActionType) IsValid() bool {
	switch t {
	case TransactionEventActionAuthorize, TransactionEventActionCharge,
		TransactionEventActionVoid, TransactionEventActionRefund:
		return true
	}
	return false
}

// String returns the string representation of TransactionEventActionType
func (t TransactionEventActionType) String() string {
	return string(t)
}

// ParseTransactionEventActionType converts an API enum name (e.g.
// "AUTHORIZE") to an action type
func ParseTransactionEventActionType(name string) (TransactionEventActionType, error) {
	actionType := TransactionEventActionType(strings.ToLower(name))
	if !actionType.IsValid() {
		return "", fmt.Errorf("unknown transaction event type: %s", name)
	}
	return actionType, nil
}

// TransactionEvent is an immutable fact appended to a transaction's history.
// Events are never updated or removed once recorded.
type TransactionEvent struct {
	shared.BaseEntity

	TransactionID uuid.UUID

	Status TransactionEventStatus

	// PSPReference is nullable; once set it is unique across ALL events,
	// not just within the parent transaction.
	PSPReference *string

	Name        string
	ExternalURL string

	// AmountValue defaults to zero; Currency is inherited from the parent
	// transaction.
	AmountValue decimal.Decimal
	Currency    string

	Type TransactionEventActionType
}

// RecordEventInput carries the caller-supplied fields for a new event
type RecordEventInput struct {
	Status       TransactionEventStatus
	PSPReference *string
	Name         string
	ExternalURL  string
	Amount       decimal.Decimal
	Type         TransactionEventActionType
}

// newTransactionEvent creates an event bound to its parent transaction,
// inheriting the parent's currency.
func newTransactionEvent(t *TransactionItem, input RecordEventInput) *TransactionEvent {
	return &TransactionEvent{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: t.ID,
		Status:        input.Status,
		PSPReference:  input.PSPReference,
		Name:          input.Name,
		ExternalURL:   input.ExternalURL,
		AmountValue:   input.Amount,
		Currency:      t.Currency,
		Type:          input.Type,
	}
}
