package payment

import (
	"context"
	"errors"
	"fmt"

	apporder "github.com/as-ga/saleor/internal/application/order"
	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransactionUpdateService applies partial updates to a payment transaction
// and optionally appends one event, as a single atomic unit of work. It
// keeps the transaction's monetary ledger, its event log, the owning
// order's totals and the order's narrative log consistent: either all of
// them commit or none do.
//
// Authorization happens before this service runs; it receives
// pre-authorized calls and only uses the requestor for event attribution.
type TransactionUpdateService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTransactionUpdateService creates a new TransactionUpdateService
func NewTransactionUpdateService(scope TransactionScope, logger *zap.Logger) *TransactionUpdateService {
	return &TransactionUpdateService{
		scope:  scope,
		logger: logger,
	}
}

// SetEventPublisher sets the publisher used to fan out domain events after
// a successful commit
func (s *TransactionUpdateService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// stagedChanges collects validation outcomes before anything is persisted.
// The whole payload is validated against the loaded transaction first; the
// first failing field aborts the mutation with the database untouched.
type stagedChanges struct {
	authorizedChanged bool
	chargedChanged    bool
}

// Update performs the transaction mutation. The returned result carries
// either a transaction snapshot or a non-empty error list, never both.
// The error return is reserved for infrastructure failures.
func (s *TransactionUpdateService) Update(
	ctx context.Context,
	requestor payment.Requestor,
	id uuid.UUID,
	input *TransactionUpdateInput,
	eventInput *TransactionEventInput,
) (*TransactionUpdateResult, error) {
	var (
		result       *TransactionUpdateResult
		domainEvents []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transaction, err := repos.TransactionRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				result = failure(payment.NewTransactionError(
					"id",
					payment.TransactionErrorGraphQLError,
					fmt.Sprintf("Couldn't resolve to a transaction: %s", id),
				))
				return errAbort
			}
			return fmt.Errorf("failed to load transaction %s: %w", id, err)
		}

		var staged stagedChanges

		if input != nil {
			if terr := s.applyUpdate(ctx, repos, transaction, input, &staged); terr != nil {
				result = failure(terr)
				return errAbort
			}
		}

		if eventInput != nil {
			if terr := s.appendEvent(ctx, repos, transaction, eventInput, requestor); terr != nil {
				result = failure(terr)
				return errAbort
			}
		}

		if err := repos.TransactionRepo().Save(ctx, transaction); err != nil {
			if terr := mapDuplicateError(err); terr != nil {
				result = failure(terr)
				return errAbort
			}
			return fmt.Errorf("failed to save transaction %s: %w", id, err)
		}

		// Project each newly recorded event into the order narrative log
		// within the same unit of work.
		noteHandler := apporder.NewTransactionEventNoteHandler(repos.OrderEventRepo(), s.logger)
		for _, domainEvent := range transaction.GetDomainEvents() {
			recorded, ok := domainEvent.(*payment.TransactionEventRecordedEvent)
			if !ok {
				continue
			}
			if err := s.persistEvent(ctx, repos, transaction, recorded.RecordedEventID); err != nil {
				if terr := mapDuplicateError(err); terr != nil {
					result = failure(terr)
					return errAbort
				}
				return err
			}
			if err := noteHandler.Handle(ctx, recorded); err != nil {
				return err
			}
		}

		// Recompute the owning order's totals for exactly the fields that
		// changed, summing at commit time so concurrent mutations converge.
		if staged.authorizedChanged || staged.chargedChanged {
			totals := apporder.NewTotalsService(repos.OrderRepo(), repos.TransactionRepo())
			if err := totals.Recompute(ctx, transaction.OrderID, staged.authorizedChanged, staged.chargedChanged); err != nil {
				return err
			}
		}

		domainEvents = transaction.GetDomainEvents()
		transaction.ClearDomainEvents()
		result = &TransactionUpdateResult{Transaction: NewTransactionResponse(transaction)}
		return nil
	})

	if err != nil && !errors.Is(err, errAbort) {
		s.logger.Error("transaction update failed",
			zap.String("transaction_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if result != nil && result.Transaction != nil && s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, domainEvents...); err != nil {
			s.logger.Error("failed to publish transaction domain events",
				zap.String("transaction_id", id.String()),
				zap.Error(err),
			)
		}
	}

	return result, nil
}

// errAbort rolls back the unit of work when the mutation fails with a
// user-facing error already captured in the result.
var errAbort = errors.New("transaction update aborted")

// applyUpdate validates and applies the partial-update payload. Amounts are
// checked first, in canonical field order, so the surfaced error names the
// first offending amount field.
func (s *TransactionUpdateService) applyUpdate(
	ctx context.Context,
	repos TransactionalRepositories,
	transaction *payment.TransactionItem,
	input *TransactionUpdateInput,
	staged *stagedChanges,
) *payment.TransactionError {
	for _, field := range payment.AmountFields() {
		money := input.Amount(field)
		if money == nil {
			continue
		}
		before := transaction.Amount(field)
		if terr := transaction.SetAmount(field, money.Amount, money.Currency); terr != nil {
			return terr
		}
		if !before.Equal(money.Amount) {
			switch field {
			case payment.AmountAuthorized:
				staged.authorizedChanged = true
			case payment.AmountCharged:
				staged.chargedChanged = true
			}
		}
	}

	if input.Status != nil {
		transaction.SetStatus(*input.Status)
	}
	if input.Type != nil {
		transaction.SetType(*input.Type)
	}

	if input.AvailableActions != nil {
		actions := make([]payment.TransactionAction, 0, len(*input.AvailableActions))
		for _, name := range *input.AvailableActions {
			action, err := payment.ParseTransactionAction(name)
			if err != nil {
				return payment.NewTransactionError("availableActions", payment.TransactionErrorInvalid, err.Error())
			}
			actions = append(actions, action)
		}
		if terr := transaction.SetAvailableActions(actions); terr != nil {
			return terr
		}
	}

	if input.Metadata != nil {
		for _, entry := range *input.Metadata {
			if terr := transaction.SetMetadataEntry(entry.Key, entry.Value); terr != nil {
				return terr
			}
		}
	}
	if input.PrivateMetadata != nil {
		for _, entry := range *input.PrivateMetadata {
			if terr := transaction.SetPrivateMetadataEntry(entry.Key, entry.Value); terr != nil {
				return terr
			}
		}
	}

	if input.ExternalURL != nil {
		if terr := transaction.SetExternalURL(*input.ExternalURL); terr != nil {
			return terr
		}
	}

	if input.PSPReference != nil {
		taken, err := repos.TransactionRepo().PSPReferenceExists(ctx, *input.PSPReference, transaction.ID)
		if err != nil {
			s.logger.Error("psp reference lookup failed", zap.Error(err))
			return payment.NewTransactionError("transaction", payment.TransactionErrorGraphQLError, "Failed to verify psp reference uniqueness")
		}
		if taken {
			return payment.NewTransactionError(
				"transaction",
				payment.TransactionErrorUnique,
				"Transaction with provided pspReference already exists.",
			)
		}
		transaction.SetPSPReference(*input.PSPReference)
	}

	return nil
}

// appendEvent validates the event payload and records it on the aggregate.
// The event row itself is persisted later, alongside its order note.
func (s *TransactionUpdateService) appendEvent(
	ctx context.Context,
	repos TransactionalRepositories,
	transaction *payment.TransactionItem,
	input *TransactionEventInput,
	requestor payment.Requestor,
) *payment.TransactionError {
	status, err := payment.ParseTransactionEventStatus(input.Status)
	if err != nil {
		return payment.NewTransactionError("transactionEvent", payment.TransactionErrorInvalid, err.Error())
	}

	var actionType payment.TransactionEventActionType
	if input.Type != nil {
		actionType, err = payment.ParseTransactionEventActionType(*input.Type)
		if err != nil {
			return payment.NewTransactionError("transactionEvent", payment.TransactionErrorInvalid, err.Error())
		}
	}

	if input.Amount.IsNegative() {
		return payment.NewTransactionError("transactionEvent", payment.TransactionErrorInvalid, "Event amount cannot be negative")
	}

	if input.PSPReference != nil {
		taken, lookupErr := repos.EventRepo().PSPReferenceExists(ctx, *input.PSPReference)
		if lookupErr != nil {
			s.logger.Error("event psp reference lookup failed", zap.Error(lookupErr))
			return payment.NewTransactionError("transactionEvent", payment.TransactionErrorGraphQLError, "Failed to verify psp reference uniqueness")
		}
		if taken {
			return payment.NewTransactionError(
				"transactionEvent",
				payment.TransactionErrorUnique,
				"Transaction event with provided pspReference already exists.",
			)
		}
	}

	transaction.RecordEvent(payment.RecordEventInput{
		Status:       status,
		PSPReference: input.PSPReference,
		Name:         input.Name,
		ExternalURL:  input.ExternalURL,
		Amount:       input.Amount,
		Type:         actionType,
	}, requestor)

	return nil
}

// persistEvent writes the event row recorded on the aggregate
func (s *TransactionUpdateService) persistEvent(
	ctx context.Context,
	repos TransactionalRepositories,
	transaction *payment.TransactionItem,
	eventID uuid.UUID,
) error {
	for _, event := range transaction.Events {
		if event.ID == eventID {
			if err := repos.EventRepo().Create(ctx, event); err != nil {
				return fmt.Errorf("failed to persist transaction event %s: %w", eventID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("recorded event %s not found on transaction %s", eventID, transaction.ID)
}

// mapDuplicateError translates repository uniqueness sentinels into the
// user-facing UNIQUE error with the proper field attribution
func mapDuplicateError(err error) *payment.TransactionError {
	switch {
	case errors.Is(err, payment.ErrDuplicatePSPReference):
		return payment.NewTransactionError(
			"transaction",
			payment.TransactionErrorUnique,
			"Transaction with provided pspReference already exists.",
		)
	case errors.Is(err, payment.ErrDuplicateEventPSPReference):
		return payment.NewTransactionError(
			"transactionEvent",
			payment.TransactionErrorUnique,
			"Transaction event with provided pspReference already exists.",
		)
	}
	return nil
}
