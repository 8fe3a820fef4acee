package payment

import (
	"time"

	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyInput carries an amount together with its currency. The currency
// must match the transaction's fixed currency.
type MoneyInput struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required,len=3"`
}

// MetadataInput is one key/value pair submitted for a metadata collection
type MetadataInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TransactionUpdateInput is the partial-update payload for a transaction.
// Every field is optional; absent fields are left untouched.
type TransactionUpdateInput struct {
	Status           *string          `json:"status"`
	Type             *string          `json:"type"`
	PSPReference     *string          `json:"pspReference"`
	AvailableActions *[]string        `json:"availableActions"`
	AmountAuthorized *MoneyInput      `json:"amountAuthorized"`
	AmountCharged    *MoneyInput      `json:"amountCharged"`
	AmountVoided     *MoneyInput      `json:"amountVoided"`
	AmountRefunded   *MoneyInput      `json:"amountRefunded"`
	Metadata         *[]MetadataInput `json:"metadata"`
	PrivateMetadata  *[]MetadataInput `json:"privateMetadata"`
	ExternalURL      *string          `json:"externalUrl"`
}

// Amount returns the submitted money input for the given amount field,
// or nil when the field is absent
func (in *TransactionUpdateInput) Amount(field payment.AmountField) *MoneyInput {
	switch field {
	case payment.AmountAuthorized:
		return in.AmountAuthorized
	case payment.AmountCharged:
		return in.AmountCharged
	case payment.AmountVoided:
		return in.AmountVoided
	case payment.AmountRefunded:
		return in.AmountRefunded
	}
	return nil
}

// TransactionEventInput is the create payload for a transaction event
type TransactionEventInput struct {
	Status       string          `json:"status" binding:"required"`
	PSPReference *string         `json:"pspReference"`
	Name         string          `json:"name"`
	ExternalURL  string          `json:"externalUrl"`
	Amount       decimal.Decimal `json:"amount"`
	Type         *string         `json:"type"`
}

// TransactionEventResponse represents a transaction event in API responses
type TransactionEventResponse struct {
	ID           uuid.UUID       `json:"id"`
	Status       string          `json:"status"`
	PSPReference *string         `json:"pspReference"`
	Name         string          `json:"name"`
	ExternalURL  string          `json:"externalUrl"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Type         string          `json:"type"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TransactionResponse is the snapshot of a transaction returned on success,
// with its events most-recent-first
type TransactionResponse struct {
	ID               uuid.UUID                  `json:"id"`
	OrderID          uuid.UUID                  `json:"orderId"`
	Status           string                     `json:"status"`
	Type             string                     `json:"type"`
	PSPReference     *string                    `json:"pspReference"`
	Currency         string                     `json:"currency"`
	AuthorizedAmount decimal.Decimal            `json:"authorizedAmount"`
	ChargedAmount    decimal.Decimal            `json:"chargedAmount"`
	VoidedAmount     decimal.Decimal            `json:"voidedAmount"`
	RefundedAmount   decimal.Decimal            `json:"refundedAmount"`
	AvailableActions []string                   `json:"availableActions"`
	ExternalURL      string                     `json:"externalUrl"`
	Metadata         []MetadataInput            `json:"metadata"`
	PrivateMetadata  []MetadataInput            `json:"privateMetadata"`
	Events           []TransactionEventResponse `json:"events"`
	CreatedAt        time.Time                  `json:"createdAt"`
	ModifiedAt       time.Time                  `json:"modifiedAt"`
}

// TransactionUpdateResult is the mutation outcome: exactly one of
// Transaction and Errors is populated, never both.
type TransactionUpdateResult struct {
	Transaction *TransactionResponse        `json:"transaction"`
	Errors      []*payment.TransactionError `json:"errors"`
}

// failure builds an all-or-nothing error result
func failure(errs ...*payment.TransactionError) *TransactionUpdateResult {
	return &TransactionUpdateResult{Errors: errs}
}

// NewTransactionResponse maps a transaction aggregate to its API snapshot
func NewTransactionResponse(t *payment.TransactionItem) *TransactionResponse {
	actions := make([]string, 0, len(t.AvailableActions))
	for _, action := range t.AvailableActions {
		actions = append(actions, action.String())
	}

	events := make([]TransactionEventResponse, 0, len(t.Events))
	for _, event := range t.Events {
		events = append(events, TransactionEventResponse{
			ID:           event.ID,
			Status:       event.Status.String(),
			PSPReference: event.PSPReference,
			Name:         event.Name,
			ExternalURL:  event.ExternalURL,
			Amount:       event.AmountValue,
			Currency:     event.Currency,
			Type:         event.Type.String(),
			CreatedAt:    event.CreatedAt,
		})
	}

	return &TransactionResponse{
		ID:               t.ID,
		OrderID:          t.OrderID,
		Status:           t.Status,
		Type:             t.Type,
		PSPReference:     t.PSPReference,
		Currency:         t.Currency,
		AuthorizedAmount: t.AuthorizedValue,
		ChargedAmount:    t.ChargedValue,
		VoidedAmount:     t.VoidedValue,
		RefundedAmount:   t.RefundedValue,
		AvailableActions: actions,
		ExternalURL:      t.ExternalURL,
		Metadata:         metadataToInputs(t.Metadata),
		PrivateMetadata:  metadataToInputs(t.PrivateMetadata),
		Events:           events,
		CreatedAt:        t.CreatedAt,
		ModifiedAt:       t.ModifiedAt,
	}
}

func metadataToInputs(m payment.Metadata) []MetadataInput {
	out := make([]MetadataInput, 0, len(m))
	for _, entry := range m {
		out = append(out, MetadataInput{Key: entry.Key, Value: entry.Value})
	}
	return out
}
