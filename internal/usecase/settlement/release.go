package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	escrowdto "github.com/LavaJover/agro-escrow-service/internal/usecase/dto/escrow"
)

// Release settles the escrow and then signals the listing store. A failed
// signal is reported in the output; the release is already final.
func (s *DefaultSettlementUsecase) Release(ctx context.Context, escrowID, actorID string) (*escrowdto.SettlementOutput, error) {
	escrow, err := s.escrow.Release(ctx, escrowID, actorID)
	if err != nil {
		return nil, err
	}

	out := &escrowdto.SettlementOutput{Escrow: escrow}
	if s.listings == nil {
		return out, nil
	}

	var warnings []string
	if err := s.listings.MarkListingSold(ctx, escrow.ListingID, escrow.ID); err != nil {
		s.metrics.RecordListingSignal("listing_sold", "failed")
		slog.Error("failed to mark listing sold", "escrow_id", escrow.ID, "listing_id", escrow.ListingID, "error", err.Error())
		warnings = append(warnings, fmt.Sprintf("listing %s: %v", escrow.ListingID, err))
	} else {
		s.metrics.RecordListingSignal("listing_sold", "ok")
	}

	if escrow.OfferID != nil {
		if err := s.listings.MarkOfferCompleted(ctx, *escrow.OfferID, escrow.ID); err != nil {
			s.metrics.RecordListingSignal("offer_completed", "failed")
			slog.Error("failed to mark offer completed", "escrow_id", escrow.ID, "offer_id", *escrow.OfferID, "error", err.Error())
			warnings = append(warnings, fmt.Sprintf("offer %s: %v", *escrow.OfferID, err))
		} else {
			s.metrics.RecordListingSignal("offer_completed", "ok")
		}
	}

	out.ListingSignal = len(warnings) == 0
	out.ListingWarning = strings.Join(warnings, "; ")
	return out, nil
}

// ReleaseDue is the auto-release sweep. Contracts that lost a race or are no
// longer eligible are skipped; other failures are counted and logged.
func (s *DefaultSettlementUsecase) ReleaseDue(ctx context.Context, limit int) (*escrowdto.SweepOutput, error) {
	candidates, err := s.escrow.DueForRelease(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load auto-release candidates: %w", err)
	}

	out := &escrowdto.SweepOutput{Candidates: len(candidates)}
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		_, err := s.Release(ctx, candidate.ID, domain.SystemActorID)
		switch {
		case err == nil:
			out.Released++
			s.metrics.RecordSweep("released")
		case errors.Is(err, domain.ErrConflict),
			errors.Is(err, domain.ErrInvalidState),
			errors.Is(err, domain.ErrNotEligible):
			out.Skipped++
			s.metrics.RecordSweep("skipped")
			slog.Info("auto-release skipped", "escrow_id", candidate.ID, "reason", err.Error())
		default:
			out.Failed++
			s.metrics.RecordSweep("failed")
			slog.Error("auto-release failed", "escrow_id", candidate.ID, "error", err.Error())
		}
	}

	if out.Candidates > 0 {
		slog.Info("auto-release sweep finished",
			"candidates", out.Candidates,
			"released", out.Released,
			"skipped", out.Skipped,
			"failed", out.Failed,
		)
	}
	return out, nil
}
