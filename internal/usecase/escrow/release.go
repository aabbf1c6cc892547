package usecase

import (
	"context"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

// Release pays the seller: funded -> released. See ReleaseEligibility for
// who may call it and when.
func (uc *DefaultEscrowUsecase) Release(ctx context.Context, escrowID, actorID string) (*domain.Escrow, error) {
	// Set by the guard; its last run is against the locked row Apply mutates.
	var autoRelease bool
	return uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  escrowID,
		Operation: "release",
		ActorID:   actorID,
		Guard: func(e *domain.Escrow, now time.Time) error {
			var err error
			autoRelease, err = ReleaseEligibility(e, actorID, now)
			return err
		},
		Apply: func(e *domain.Escrow, now time.Time) []domain.EventDraft {
			detail := "funds released to seller"
			if autoRelease {
				detail = "funds auto-released to seller after the release period"
			}
			e.Status = domain.EscrowReleased
			e.ReleasedAt = &now
			return []domain.EventDraft{{
				Type:    domain.EventReleased,
				ActorID: actorID,
				Detail:  detail,
				Data: map[string]any{
					"auto_release":       autoRelease,
					"delivery_confirmed": e.DeliveryConfirmedAt != nil,
					"seller_id":          e.SellerID,
					"total_amount":       e.Money.TotalAmount,
					"currency":           e.Money.Currency,
				},
				At: now,
			}}
		},
	})
}
