package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

// Fund records the captured payment: created -> funded.
func (uc *DefaultEscrowUsecase) Fund(ctx context.Context, escrowID, paymentReference string) (*domain.Escrow, error) {
	ref := strings.TrimSpace(paymentReference)
	if ref == "" {
		uc.recordErrorMetrics("fund", domain.ErrInvalidArgument)
		return nil, fmt.Errorf("%w: payment reference is required", domain.ErrInvalidArgument)
	}

	return uc.ProcessEscrowOperation(ctx, &EscrowOperation{
		EscrowID:  escrowID,
		Operation: "fund",
		ActorID:   domain.PaymentGatewayActorID,
		Guard: func(e *domain.Escrow, _ time.Time) error {
			return checkStatus(e, domain.EscrowCreated, "fund")
		},
		Apply: func(e *domain.Escrow, now time.Time) []domain.EventDraft {
			releaseAt := AutoReleaseAt(e, now)
			e.Status = domain.EscrowFunded
			e.PaymentReference = ref
			e.FundedAt = &now
			e.AutoReleaseAt = &releaseAt
			return []domain.EventDraft{{
				Type:    domain.EventFunded,
				ActorID: domain.PaymentGatewayActorID,
				Detail:  fmt.Sprintf("payment %s captured", ref),
				Data: map[string]any{
					"payment_reference": ref,
					"total_amount":      e.Money.TotalAmount,
					"currency":          e.Money.Currency,
					"auto_release_at":   releaseAt.Format(time.RFC3339Nano),
				},
				At: now,
			}}
		},
	})
}
