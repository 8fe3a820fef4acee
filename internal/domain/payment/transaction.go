package payment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionAction represents an action a payment provider can still
// perform on a transaction. Values are stored lowercase.
type TransactionAction string

const (
	TransactionActionCharge TransactionAction = "charge"
	TransactionActionRefund TransactionAction = "refund"
	TransactionActionVoid   TransactionAction = "void"
	TransactionActionCancel TransactionAction = "cancel"
)

// IsValid checks if the action is a valid TransactionAction
func (a TransactionAction) IsValid() bool {
	switch a {
	case TransactionActionCharge, TransactionActionRefund,
		TransactionActionVoid, TransactionActionCancel:
		return true
	}
	return false
}

// String returns the string representation of TransactionAction
func (a TransactionAction) String() string {
	return string(a)
}

// ParseTransactionAction converts an API enum name (e.g. "REFUND") to a
// TransactionAction
func ParseTransactionAction(name string) (TransactionAction, error) {
	action := TransactionAction(strings.ToLower(name))
	if !action.IsValid() {
		return "", fmt.Errorf("unknown transaction action: %s", name)
	}
	return action, nil
}

// AmountField identifies one of the four running monetary totals on a
// transaction. The value is the API-facing input field name.
type AmountField string

const (
	AmountAuthorized AmountField = "amountAuthorized"
	AmountCharged    AmountField = "amountCharged"
	AmountVoided     AmountField = "amountVoided"
	AmountRefunded   AmountField = "amountRefunded"
)

// String returns the API field name
func (f AmountField) String() string {
	return string(f)
}

// AmountFields lists the four amount fields in their canonical order
func AmountFields() []AmountField {
	return []AmountField{AmountAuthorized, AmountCharged, AmountVoided, AmountRefunded}
}

// RequestorKind distinguishes app-token callers from user/staff callers
type RequestorKind string

const (
	RequestorKindApp  RequestorKind = "APP"
	RequestorKindUser RequestorKind = "USER"
)

// Requestor identifies the authenticated caller acting on a transaction.
// Exactly one of AppID or UserID is meaningful, selected by Kind.
type Requestor struct {
	Kind   RequestorKind
	AppID  uuid.UUID
	UserID uuid.UUID
}

// AppRequestor creates a requestor for an app-token caller
func AppRequestor(appID uuid.UUID) Requestor {
	return Requestor{Kind: RequestorKindApp, AppID: appID}
}

// UserRequestor creates a requestor for a user/staff caller
func UserRequestor(userID uuid.UUID) Requestor {
	return Requestor{Kind: RequestorKindUser, UserID: userID}
}

// CanModify reports whether this requestor may mutate the given transaction.
// App callers are identity-scoped: they may only touch transactions their
// own app created. User callers are permission-scoped (the permission gate
// lives in the API middleware), but may not touch app-owned transactions.
// The two predicates are deliberately separate rules, not one unified check.
func (r Requestor) CanModify(t *TransactionItem) bool {
	switch r.Kind {
	case RequestorKindApp:
		return t.AppID != nil && *t.AppID == r.AppID
	case RequestorKindUser:
		return t.AppID == nil
	}
	return false
}

// TransactionItem represents one payment-provider transaction bound to an
// order. It carries four cumulative monetary totals in a single fixed
// currency chosen at creation, plus provider metadata.
type TransactionItem struct {
	shared.BaseAggregateRoot

	OrderID uuid.UUID

	// Requestor provenance: exactly one of AppID/UserID is set.
	AppID  *uuid.UUID
	UserID *uuid.UUID

	// PSPReference is the payment provider's reference. Nullable; once set
	// it is unique across all transactions (database unique index).
	PSPReference *string

	Status string
	Type   string

	// Currency is fixed at creation and immutable afterwards.
	Currency string

	AuthorizedValue decimal.Decimal
	ChargedValue    decimal.Decimal
	VoidedValue     decimal.Decimal
	RefundedValue   decimal.Decimal

	AvailableActions []TransactionAction
	ExternalURL      string

	Metadata        Metadata
	PrivateMetadata Metadata

	// Events holds the transaction's event history, most recent first.
	Events []*TransactionEvent
}

// NewTransactionItem creates a new transaction for an order. The currency is
// fixed for the lifetime of the transaction.
func NewTransactionItem(orderID uuid.UUID, currency string, requestor Requestor) (*TransactionItem, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	t := &TransactionItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Currency:          currency,
		AuthorizedValue:   decimal.Zero,
		ChargedValue:      decimal.Zero,
		VoidedValue:       decimal.Zero,
		RefundedValue:     decimal.Zero,
		Metadata:          Metadata{},
		PrivateMetadata:   Metadata{},
	}

	switch requestor.Kind {
	case RequestorKindApp:
		appID := requestor.AppID
		t.AppID = &appID
	case RequestorKindUser:
		userID := requestor.UserID
		t.UserID = &userID
	default:
		return nil, shared.NewDomainError("INVALID_REQUESTOR", "Transaction requestor must be an app or a user")
	}

	return t, nil
}

// Amount returns the current value of the given amount field
func (t *TransactionItem) Amount(field AmountField) decimal.Decimal {
	switch field {
	case AmountAuthorized:
		return t.AuthorizedValue
	case AmountCharged:
		return t.ChargedValue
	case AmountVoided:
		return t.VoidedValue
	case AmountRefunded:
		return t.RefundedValue
	}
	return decimal.Zero
}

// SetAmount sets one of the four running totals. The submitted currency must
// match the transaction's fixed currency and the amount must not be negative.
func (t *TransactionItem) SetAmount(field AmountField, amount decimal.Decimal, currency string) *TransactionError {
	if currency != t.Currency {
		return NewTransactionError(
			field.String(),
			TransactionErrorIncorrectCurrency,
			fmt.Sprintf("Currency %s does not match the transaction currency %s", currency, t.Currency),
		)
	}
	if amount.IsNegative() {
		return NewTransactionError(
			field.String(),
			TransactionErrorInvalid,
			"Amount cannot be negative",
		)
	}

	switch field {
	case AmountAuthorized:
		t.AuthorizedValue = amount
	case AmountCharged:
		t.ChargedValue = amount
	case AmountVoided:
		t.VoidedValue = amount
	case AmountRefunded:
		t.RefundedValue = amount
	default:
		return NewTransactionError(field.String(), TransactionErrorInvalid, "Unknown amount field")
	}
	return nil
}

// SetStatus sets the free-text status label
func (t *TransactionItem) SetStatus(status string) {
	t.Status = status
}

// SetType sets the free-text type label
func (t *TransactionItem) SetType(transactionType string) {
	t.Type = transactionType
}

// SetAvailableActions replaces the set of actions the provider still allows
func (t *TransactionItem) SetAvailableActions(actions []TransactionAction) *TransactionError {
	for _, action := range actions {
		if !action.IsValid() {
			return NewTransactionError(
				"availableActions",
				TransactionErrorInvalid,
				fmt.Sprintf("Unknown transaction action: %s", action),
			)
		}
	}
	t.AvailableActions = actions
	return nil
}

// SetMetadataEntry stores a public metadata entry. Keys must be non-empty.
func (t *TransactionItem) SetMetadataEntry(key, value string) *TransactionError {
	if key == "" {
		return NewTransactionError(
			"metadata",
			TransactionErrorMetadataKeyRequired,
			"Metadata key cannot be empty",
		)
	}
	t.Metadata.Set(key, value)
	return nil
}

// SetPrivateMetadataEntry stores a private metadata entry. Keys must be
// non-empty.
func (t *TransactionItem) SetPrivateMetadataEntry(key, value string) *TransactionError {
	if key == "" {
		return NewTransactionError(
			"privateMetadata",
			TransactionErrorMetadataKeyRequired,
			"Private metadata key cannot be empty",
		)
	}
	t.PrivateMetadata.Set(key, value)
	return nil
}

// SetExternalURL sets the provider dashboard URL. Must be a well-formed
// absolute URL or empty.
func (t *TransactionItem) SetExternalURL(externalURL string) *TransactionError {
	if externalURL == "" {
		t.ExternalURL = ""
		return nil
	}
	parsed, err := url.Parse(externalURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return NewTransactionError(
			"externalUrl",
			TransactionErrorInvalid,
			fmt.Sprintf("Invalid external URL: %s", externalURL),
		)
	}
	t.ExternalURL = externalURL
	return nil
}

// SetPSPReference sets the provider reference. Global uniqueness is enforced
// by the repository layer with a database unique constraint; a violation
// surfaces as a UNIQUE error on field "transaction".
func (t *TransactionItem) SetPSPReference(reference string) {
	t.PSPReference = &reference
}

// RecordEvent appends an immutable event to the transaction's history and
// raises a TransactionEventRecorded domain event carrying the data both
// projections (the transaction's own list and the order's narrative log)
// are built from.
func (t *TransactionItem) RecordEvent(input RecordEventInput, requestor Requestor) *TransactionEvent {
	event := newTransactionEvent(t, input)
	t.Events = append([]*TransactionEvent{event}, t.Events...)
	t.AddDomainEvent(NewTransactionEventRecordedEvent(t, event, requestor))
	return event
}

// IsOwnedByApp reports whether the transaction was created by an app
func (t *TransactionItem) IsOwnedByApp() bool {
	return t.AppID != nil
}
