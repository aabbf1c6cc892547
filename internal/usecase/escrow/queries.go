package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

func (uc *DefaultEscrowUsecase) Get(ctx context.Context, escrowID string) (*domain.Escrow, error) {
	return uc.EscrowRepo.GetByID(ctx, escrowID)
}

// ListForUser returns the contracts where userID is buyer or seller, newest
// first.
func (uc *DefaultEscrowUsecase) ListForUser(ctx context.Context, userID string) ([]*domain.Escrow, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	return uc.EscrowRepo.ListByUser(ctx, userID)
}

func (uc *DefaultEscrowUsecase) History(ctx context.Context, escrowID string) ([]*domain.EscrowEvent, error) {
	if _, err := uc.EscrowRepo.GetByID(ctx, escrowID); err != nil {
		return nil, err
	}
	return uc.EscrowRepo.ListEvents(ctx, escrowID)
}

// VerifyHistory recomputes the genesis and event fingerprints of a contract.
// A broken chain is reported, not returned as an error.
func (uc *DefaultEscrowUsecase) VerifyHistory(ctx context.Context, escrowID string) (*domain.VerificationReport, error) {
	escrow, err := uc.EscrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	events, err := uc.EscrowRepo.ListEvents(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	report := uc.Chain.Verify(escrow, events)
	if uc.Metrics != nil {
		uc.Metrics.RecordVerification(report.Valid)
	}
	if !report.Valid {
		slog.Warn("escrow event chain broken", "escrow_id", escrowID, "broken_at", report.BrokenAt, "reason", report.Reason)
	}
	return &report, nil
}

// DueForRelease lists funded contracts the sweep should try to release now.
func (uc *DefaultEscrowUsecase) DueForRelease(ctx context.Context, limit int) ([]*domain.Escrow, error) {
	return uc.EscrowRepo.FindAutoReleaseCandidates(ctx, uc.clock(), limit)
}
