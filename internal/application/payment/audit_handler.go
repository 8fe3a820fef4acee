package payment

import (
	"context"
	"fmt"

	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/domain/shared"
	"go.uber.org/zap"
)

// TransactionAuditHandler writes an audit line for every committed
// transaction event. It runs post-commit on the event bus, so audit
// entries only ever describe state that actually persisted.
type TransactionAuditHandler struct {
	logger *zap.Logger
}

// NewTransactionAuditHandler creates an audit handler writing through the
// given logger
func NewTransactionAuditHandler(logger *zap.Logger) *TransactionAuditHandler {
	return &TransactionAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *TransactionAuditHandler) EventTypes() []string {
	return []string{payment.TransactionEventRecordedEventType}
}

// Handle records the committed transaction event in the audit log
func (h *TransactionAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*payment.TransactionEventRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			payment.TransactionEventRecordedEventType, event.EventType())
	}

	fields := []zap.Field{
		zap.String("order_id", recorded.OrderID.String()),
		zap.String("transaction_id", recorded.TransactionID.String()),
		zap.String("event_id", recorded.RecordedEventID.String()),
		zap.String("status", recorded.Status),
		zap.String("amount", recorded.Amount.String()),
		zap.String("currency", recorded.Currency),
		zap.String("requestor_kind", string(recorded.RequestorKind)),
	}
	if recorded.PSPReference != "" {
		fields = append(fields, zap.String("psp_reference", recorded.PSPReference))
	}
	if recorded.AppID != nil {
		fields = append(fields, zap.String("app_id", recorded.AppID.String()))
	}
	if recorded.UserID != nil {
		fields = append(fields, zap.String("user_id", recorded.UserID.String()))
	}

	h.logger.Info("transaction event committed", fields...)
	return nil
}

// Ensure TransactionAuditHandler implements shared.EventHandler
var _ shared.EventHandler = (*TransactionAuditHandler)(nil)
