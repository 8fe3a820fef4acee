package models

import (
	"strings"
	"time"

	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionItemModel is the persistence model for payment.TransactionItem
type TransactionItemModel struct {
	AggregateModel
	OrderID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	AppID            *uuid.UUID       `gorm:"type:uuid;index"`
	UserID           *uuid.UUID       `gorm:"type:uuid;index"`
	PSPReference     *string          `gorm:"type:varchar(512);uniqueIndex:idx_transaction_psp_reference"`
	Status           string           `gorm:"type:varchar(512)"`
	Type             string           `gorm:"type:varchar(512)"`
	Currency         string           `gorm:"type:varchar(3);not null"`
	AuthorizedValue  decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	ChargedValue     decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	VoidedValue      decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	RefundedValue    decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	AvailableActions string           `gorm:"type:text;not null;default:''"`
	ExternalURL      string           `gorm:"type:text"`
	Metadata         payment.Metadata `gorm:"type:jsonb"`
	PrivateMetadata  payment.Metadata `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (TransactionItemModel) TableName() string {
	return "transaction_items"
}

// FromDomain populates the model from a domain transaction
func (m *TransactionItemModel) FromDomain(t *payment.TransactionItem) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.OrderID = t.OrderID
	m.AppID = t.AppID
	m.UserID = t.UserID
	m.PSPReference = t.PSPReference
	m.Status = t.Status
	m.Type = t.Type
	m.Currency = t.Currency
	m.AuthorizedValue = t.AuthorizedValue
	m.ChargedValue = t.ChargedValue
	m.VoidedValue = t.VoidedValue
	m.RefundedValue = t.RefundedValue
	m.AvailableActions = joinActions(t.AvailableActions)
	m.ExternalURL = t.ExternalURL
	m.Metadata = t.Metadata
	m.PrivateMetadata = t.PrivateMetadata
}

// ToDomain converts the model to a domain transaction. Events are attached
// separately by the repository.
func (m *TransactionItemModel) ToDomain() *payment.TransactionItem {
	return &payment.TransactionItem{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		OrderID:          m.OrderID,
		AppID:            m.AppID,
		UserID:           m.UserID,
		PSPReference:     m.PSPReference,
		Status:           m.Status,
		Type:             m.Type,
		Currency:         m.Currency,
		AuthorizedValue:  m.AuthorizedValue,
		ChargedValue:     m.ChargedValue,
		VoidedValue:      m.VoidedValue,
		RefundedValue:    m.RefundedValue,
		AvailableActions: splitActions(m.AvailableActions),
		ExternalURL:      m.ExternalURL,
		Metadata:         m.Metadata,
		PrivateMetadata:  m.PrivateMetadata,
	}
}

// TransactionEventModel is the persistence model for payment.TransactionEvent
type TransactionEventModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status        string          `gorm:"type:varchar(128);not null"`
	PSPReference  *string         `gorm:"type:varchar(512);uniqueIndex:idx_transaction_event_psp_reference"`
	Name          string          `gorm:"type:varchar(512)"`
	ExternalURL   string          `gorm:"type:text"`
	AmountValue   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	Type          string          `gorm:"type:varchar(128)"`
	CreatedAt     time.Time       `gorm:"not null;index"`
	ModifiedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionEventModel) TableName() string {
	return "transaction_events"
}

// FromDomain populates the model from a domain event
func (m *TransactionEventModel) FromDomain(e *payment.TransactionEvent) {
	m.ID = e.ID
	m.TransactionID = e.TransactionID
	m.Status = e.Status.String()
	m.PSPReference = e.PSPReference
	m.Name = e.Name
	m.ExternalURL = e.ExternalURL
	m.AmountValue = e.AmountValue
	m.Currency = e.Currency
	m.Type = e.Type.String()
	m.CreatedAt = e.CreatedAt
	m.ModifiedAt = e.ModifiedAt
}

// ToDomain converts the model to a domain event
func (m *TransactionEventModel) ToDomain() *payment.TransactionEvent {
	return &payment.TransactionEvent{
		BaseEntity: shared.BaseEntity{
			ID:         m.ID,
			CreatedAt:  m.CreatedAt,
			ModifiedAt: m.ModifiedAt,
		},
		TransactionID: m.TransactionID,
		Status:        payment.TransactionEventStatus(m.Status),
		PSPReference:  m.PSPReference,
		Name:          m.Name,
		ExternalURL:   m.ExternalURL,
		AmountValue:   m.AmountValue,
		Currency:      m.Currency,
		Type:          payment.TransactionEventActionType(m.Type),
	}
}

// joinActions flattens the action set into comma-separated storage
func joinActions(actions []payment.TransactionAction) string {
	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		parts = append(parts, action.String())
	}
	return strings.Join(parts, ",")
}

// splitActions parses comma-separated storage back into the action set
func splitActions(stored string) []payment.TransactionAction {
	if stored == "" {
		return nil
	}
	parts := strings.Split(stored, ",")
	actions := make([]payment.TransactionAction, 0, len(parts))
	for _, part := range parts {
		actions = append(actions, payment.TransactionAction(part))
	}
	return actions
}
