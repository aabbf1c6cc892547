package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

// Dispute freezes a funded contract: funded -> disputed. Resolution happens
// outside the engine.
func (uc *DefaultEscrowUsecase) Dispute(ctx context.Context, escrowID, actorID, reason string) (*domain.Escrow, error) {
	reason = strings.TrimSpace(reason)

	return uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  escrowID,
		Operation: "dispute",
		ActorID:   actorID,
		Guard: func(e *domain.Escrow, now time.Time) error {
			if err := checkStatus(e, domain.EscrowFunded, "dispute"); err != nil {
				return err
			}
			if err := checkParty(e, actorID); err != nil {
				return err
			}
			if !WithinDisputeWindow(e, now) {
				return fmt.Errorf("%w: dispute window of %d days is closed", domain.ErrNotEligible, e.Policy.DisputeWindowDays)
			}
			return nil
		},
		Apply: func(e *domain.Escrow, now time.Time) []domain.EventDraft {
			e.Status = domain.EscrowDisputed
			e.DisputedAt = &now
			return []domain.EventDraft{{
				Type:    domain.EventDisputed,
				ActorID: actorID,
				Detail:  "dispute opened: " + reason,
				Data:    map[string]any{"reason": reason},
				At:      now,
			}}
		},
	})
}
