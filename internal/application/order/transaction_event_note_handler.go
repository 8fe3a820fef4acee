package order

import (
	"context"
	"fmt"

	"github.com/as-ga/saleor/internal/domain/order"
	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/domain/shared"
	"go.uber.org/zap"
)

// TransactionEventNoteHandler projects TransactionEventRecorded events into
// the owning order's narrative log. The transaction's own event list and
// this note are two projections of the same domain event, so they can never
// drift apart.
//
// The reconciliation service runs the projection synchronously inside its
// unit of work, binding the handler to transaction-scoped repositories;
// it is therefore NOT also subscribed on the event bus, which would write
// the note twice.
type TransactionEventNoteHandler struct {
	eventRepo order.EventRepository
	logger    *zap.Logger
}

// NewTransactionEventNoteHandler creates a handler writing notes through
// the given repository
func NewTransactionEventNoteHandler(eventRepo order.EventRepository, logger *zap.Logger) *TransactionEventNoteHandler {
	return &TransactionEventNoteHandler{
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *TransactionEventNoteHandler) EventTypes() []string {
	return []string{payment.TransactionEventRecordedEventType}
}

// Handle appends a TRANSACTION_EVENT note to the order named by the event
func (h *TransactionEventNoteHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*payment.TransactionEventRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			payment.TransactionEventRecordedEventType, event.EventType())
	}

	note := order.NewTransactionEventNote(
		recorded.OrderID,
		recorded.Name,
		recorded.PSPReference,
		recorded.Status,
		recorded.AppID,
		recorded.UserID,
	)

	if err := h.eventRepo.Create(ctx, note); err != nil {
		return fmt.Errorf("failed to append order note for order %s: %w", recorded.OrderID, err)
	}

	if h.logger != nil {
		h.logger.Debug("order note appended for transaction event",
			zap.String("order_id", recorded.OrderID.String()),
			zap.String("transaction_id", recorded.TransactionID.String()),
			zap.String("status", recorded.Status),
		)
	}

	return nil
}

// Ensure TransactionEventNoteHandler implements shared.EventHandler
var _ shared.EventHandler = (*TransactionEventNoteHandler)(nil)
