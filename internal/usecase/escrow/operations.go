package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
)

// EscrowOperation describes one guarded state change of a contract.
type EscrowOperation struct {
	EscrowID  string
	Operation string // "fund", "confirm_delivery", "release", "refund", "dispute"
	ActorID   string

	// Guard runs against the read snapshot and again against the locked row.
	Guard func(e *domain.Escrow, now time.Time) error
	// Apply mutates the locked copy and returns the events documenting it.
	Apply func(e *domain.Escrow, now time.Time) []domain.EventDraft
}

// ProcessEscrowOperation is the shared path of every mutating operation:
// one clock read, guard checks, the transactional state change with its
// events, then publishing and metrics once the change is committed.
func (uc *DefaultEscrowUsecase) ProcessEscrowOperation(ctx context.Context, op *EscrowOperation) (*domain.Escrow, error) {
	started := time.Now()
	now := uc.clock()

	// 1. Critical: guarded change and event append in one transaction
	snapshot, err := uc.EscrowRepo.GetByID(ctx, op.EscrowID)
	if err != nil {
		uc.recordErrorMetrics(op.Operation, err)
		return nil, err
	}
	if err := op.Guard(snapshot, now); err != nil {
		uc.recordErrorMetrics(op.Operation, err)
		return nil, err
	}

	updated, events, err := uc.EscrowRepo.Transition(ctx, op.EscrowID, snapshot.Status, snapshot.Version,
		func(e *domain.Escrow) ([]domain.EventDraft, error) {
			if err := op.Guard(e, now); err != nil {
				return nil, err
			}
			e.UpdatedAt = now
			return op.Apply(e, now), nil
		})
	if err != nil {
		uc.recordErrorMetrics(op.Operation, err)
		slog.Warn("escrow operation failed", "operation", op.Operation, "escrow_id", op.EscrowID, "actor_id", op.ActorID, "error", err)
		return nil, err
	}

	// 2. Non-critical: the change is final whatever happens below
	uc.recordTransitionMetrics(op.Operation, snapshot, updated, time.Since(started))
	uc.publishEvents(ctx, updated, events)

	slog.Info("escrow operation committed",
		"operation", op.Operation,
		"escrow_id", updated.ID,
		"actor_id", op.ActorID,
		"status", updated.Status,
		"version", updated.Version,
	)
	return updated, nil
}

func (uc *DefaultEscrowUsecase) publishEvents(ctx context.Context, escrow *domain.Escrow, events []*domain.EscrowEvent) {
	if uc.Publisher == nil || len(events) == 0 {
		return
	}
	if err := uc.Publisher.PublishEscrowEvents(context.WithoutCancel(ctx), escrow, events); err != nil {
		slog.Error("failed to publish escrow events", "escrow_id", escrow.ID, "events", len(events), "error", err.Error())
	}
}
