package usecase

import (
	"context"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/metrics"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
)

// EscrowReleaser is the part of the escrow engine settlement drives.
type EscrowReleaser interface {
	Release(ctx context.Context, escrowID, actorID string) (*domain.Escrow, error)
	DueForRelease(ctx context.Context, limit int) ([]*domain.Escrow, error)
}

type SettlementUsecase interface {
	Release(ctx context.Context, escrowID, actorID string) (*escrowdto.SettlementOutput, error)
	ReleaseDue(ctx context.Context, limit int) (*escrowdto.SweepOutput, error)
}

type DefaultSettlementUsecase struct {
	escrow   EscrowReleaser
	listings domain.ListingNotifier
	metrics  *metrics.EscrowMetrics
}

// NewDefaultSettlementUsecase wires the orchestrator; a nil listings notifier
// disables listing signaling.
func NewDefaultSettlementUsecase(escrow EscrowReleaser, listings domain.ListingNotifier, m *metrics.EscrowMetrics) *DefaultSettlementUsecase {
	return &DefaultSettlementUsecase{
		escrow:   escrow,
		listings: listings,
		metrics:  m,
	}
}
