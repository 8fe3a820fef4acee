package order

import (
	"context"
	"fmt"

	"github.com/as-ga/saleor/internal/domain/order"
	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/google/uuid"
)

// TransactionSummer sums the monetary fields over all transactions of an
// order. payment.TransactionRepository satisfies it.
type TransactionSummer interface {
	SumAmountsByOrder(ctx context.Context, orderID uuid.UUID) (payment.OrderTotals, error)
}

// TotalsService recomputes an order's authorized and charged totals from
// its transaction ledger. Totals are always full re-summations read from
// the store at call time, never incrementally patched, so repeated calls
// with no intervening ledger change are idempotent.
type TotalsService struct {
	orderRepo order.OrderRepository
	ledger    TransactionSummer
}

// NewTotalsService creates a new TotalsService
func NewTotalsService(orderRepo order.OrderRepository, ledger TransactionSummer) *TotalsService {
	return &TotalsService{
		orderRepo: orderRepo,
		ledger:    ledger,
	}
}

// RecomputeAuthorized sets the order's authorized total to the sum of
// authorized values across all its transactions
func (s *TotalsService) RecomputeAuthorized(ctx context.Context, orderID uuid.UUID) error {
	return s.recompute(ctx, orderID, true, false)
}

// RecomputeCharged sets the order's charged total to the sum of charged
// values across all its transactions
func (s *TotalsService) RecomputeCharged(ctx context.Context, orderID uuid.UUID) error {
	return s.recompute(ctx, orderID, false, true)
}

// Recompute refreshes the selected totals in one pass. At least one of
// authorized/charged must be requested.
func (s *TotalsService) Recompute(ctx context.Context, orderID uuid.UUID, authorized, charged bool) error {
	return s.recompute(ctx, orderID, authorized, charged)
}

func (s *TotalsService) recompute(ctx context.Context, orderID uuid.UUID, authorized, charged bool) error {
	if !authorized && !charged {
		return nil
	}

	totals, err := s.ledger.SumAmountsByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to sum transaction amounts for order %s: %w", orderID, err)
	}

	ord, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	if authorized {
		ord.SetTotalAuthorized(totals.Authorized)
	}
	if charged {
		ord.SetTotalCharged(totals.Charged)
	}

	if err := s.orderRepo.Save(ctx, ord); err != nil {
		return fmt.Errorf("failed to save order %s: %w", orderID, err)
	}
	return nil
}
