package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

// ConfirmDelivery is the buyer's attestation of receipt. Status stays funded.
func (uc *DefaultEscrowUsecase) ConfirmDelivery(ctx context.Context, escrowID, buyerID string) (*domain.Escrow, error) {
	return uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  escrowID,
		Operation: "confirm_delivery",
		ActorID:   buyerID,
		Guard: func(e *domain.Escrow, _ time.Time) error {
			if err := checkBuyer(e, buyerID); err != nil {
				return err
			}
			if err := checkStatus(e, domain.EscrowFunded, "confirm delivery of"); err != nil {
				return err
			}
			if e.DeliveryConfirmedAt != nil {
				return fmt.Errorf("%w: delivery of escrow %s already confirmed", domain.ErrInvalidState, e.ID)
			}
			return nil
		},
		Apply: func(e *domain.Escrow, now time.Time) []domain.EventDraft {
			e.DeliveryConfirmedAt = &now
			return []domain.EventDraft{{
				Type:    domain.EventDeliveryConfirmed,
				ActorID: buyerID,
				Detail:  "buyer confirmed delivery",
				At:      now,
			}}
		},
	})
}
