package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

// RequestRefund returns the funds to the buyer: funded -> refunded. The
// request and the refund are two chained events of one transaction.
func (uc *DefaultEscrowUsecase) RequestRefund(ctx context.Context, escrowID, buyerID, reason string) (*domain.Escrow, error) {
	reason = strings.TrimSpace(reason)

	return uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  escrowID,
		Operation: "refund",
		ActorID:   buyerID,
		Guard: func(e *domain.Escrow, _ time.Time) error {
			if err := checkStatus(e, domain.EscrowFunded, "refund"); err != nil {
				return err
			}
			if err := checkBuyer(e, buyerID); err != nil {
				return err
			}
			if e.DeliveryConfirmedAt != nil {
				return fmt.Errorf("%w: escrow %s", domain.ErrAlreadyConfirmed, e.ID)
			}
			return nil
		},
		Apply: func(e *domain.Escrow, now time.Time) []domain.EventDraft {
			e.Status = domain.EscrowRefunded
			e.RefundedAt = &now
			return []domain.EventDraft{
				{
					Type:    domain.EventRefundRequested,
					ActorID: buyerID,
					Detail:  "refund requested: " + reason,
					Data:    map[string]any{"reason": reason},
					At:      now,
				},
				{
					Type:    domain.EventRefunded,
					ActorID: buyerID,
					Detail:  "funds returned to buyer",
					Data: map[string]any{
						"buyer_id":     e.BuyerID,
						"total_amount": e.Money.TotalAmount,
						"currency":     e.Money.Currency,
					},
					At: now,
				},
			}
		},
	})
}
